package codec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// pgEncodings maps the server's client_encoding name (as sent in the
// ParameterStatus negotiated during startup) to the golang.org/x/text
// encoding.Encoding that can transcode it to and from UTF-8. Encodings with
// no listed entry are assumed to already be UTF-8 compatible (SQL_ASCII,
// UTF8 itself) and pass through unchanged.
var pgEncodings = map[string]encoding.Encoding{
	"LATIN1":   charmap.ISO8859_1,
	"LATIN2":   charmap.ISO8859_2,
	"LATIN9":   charmap.ISO8859_15,
	"WIN1250":  charmap.Windows1250,
	"WIN1251":  charmap.Windows1251,
	"WIN1252":  charmap.Windows1252,
	"WIN1253":  charmap.Windows1253,
	"WIN1254":  charmap.Windows1254,
	"KOI8R":    charmap.KOI8R,
	"KOI8U":    charmap.KOI8U,
	"EUC_JP":   japanese.EUCJP,
	"SJIS":     japanese.ShiftJIS,
	"EUC_KR":   korean.EUCKR,
	"EUC_CN":   simplifiedchinese.GBK,
	"GBK":      simplifiedchinese.GBK,
	"GB18030":  simplifiedchinese.GB18030,
	"BIG5":     traditionalchinese.Big5,
	"EUC_TW":   traditionalchinese.Big5,
}

// lookupEncoding resolves a client_encoding name to its transcoder, ok=false
// when the name is unknown and should be treated as a pass-through (UTF8,
// SQL_ASCII, or anything this table does not carry).
func lookupEncoding(name string) (encoding.Encoding, bool) {
	enc, ok := pgEncodings[name]
	return enc, ok
}
