package codec

import (
	"strings"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
)

// TextCodec transcodes host strings to and from the connection's negotiated
// client_encoding. A connection using UTF8 or SQL_ASCII uses passthroughText,
// every other client_encoding the server may negotiate is backed by a
// golang.org/x/text encoding.Encoding.
type TextCodec interface {
	Encode(s string) ([]byte, error)
	Decode(b []byte) (string, error)
}

type passthroughText struct{}

func (passthroughText) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (passthroughText) Decode(b []byte) (string, error) { return string(b), nil }

type transcodingText struct {
	enc encoding.Encoding
}

func (t transcodingText) Encode(s string) ([]byte, error) {
	out, err := t.enc.NewEncoder().String(s)
	if err != nil {
		return nil, pgerror.NewDataError(codeInvalidValue, "text: encode to client_encoding: %w", err)
	}
	return []byte(out), nil
}

func (t transcodingText) Decode(b []byte) (string, error) {
	out, err := t.enc.NewDecoder().String(string(b))
	if err != nil {
		return "", pgerror.NewDataError(codeInvalidValue, "text: decode from client_encoding: %w", err)
	}
	return out, nil
}

// NewTextCodec resolves the ParameterStatus-negotiated client_encoding name
// to a TextCodec. Unrecognized names (including UTF8 and SQL_ASCII) pass
// bytes through unchanged.
func NewTextCodec(clientEncoding string) TextCodec {
	enc, ok := lookupEncoding(clientEncoding)
	if !ok {
		return passthroughText{}
	}
	return transcodingText{enc: enc}
}

func textCodec(tc TextCodec) Codec {
	if tc == nil {
		tc = passthroughText{}
	}
	return Codec{
		OID:    OIDText,
		Format: wire.TextFormat,
		Encode: func(v any) ([]byte, error) {
			s, ok := v.(string)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "text: expected string, got %T", v)
			}
			return tc.Encode(s)
		},
		Decode: func(buf []byte) (any, error) {
			return tc.Decode(buf)
		},
	}
}

func byteaCodec() Codec {
	return Codec{
		OID:    OIDBytea,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			b, ok := v.(Bytea)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "bytea: expected Bytea, got %T", v)
			}
			return []byte(b), nil
		},
		Decode: func(buf []byte) (any, error) {
			out := make([]byte, len(buf))
			copy(out, buf)
			return Bytea(out), nil
		},
	}
}

func oidCodec() Codec {
	return Codec{
		OID:    OIDOID,
		Format: wire.TextFormat,
		Encode: func(v any) ([]byte, error) {
			id, ok := v.(OID)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "oid: expected OID, got %T", v)
			}
			return []byte(itoa(uint32(id))), nil
		},
		Decode: func(buf []byte) (any, error) {
			s := string(buf)
			if strings.Contains(s, ".") {
				d, err := decimal.NewFromString(s)
				if err != nil {
					return nil, pgerror.NewDataError(codeInvalidValue, "oid: invalid textual value %q", s)
				}
				return d, nil
			}
			return parseOIDText(s)
		},
	}
}

func itoa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var digits [10]byte
	i := len(digits)
	for u > 0 {
		i--
		digits[i] = byte('0' + u%10)
		u /= 10
	}
	return string(digits[i:])
}

// parseOIDText decodes an oid column's integer textual representation. A
// value containing '.' never reaches it: oidCodec decodes that as a
// decimal.Decimal instead.
func parseOIDText(s string) (OID, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, pgerror.NewDataError(codeInvalidValue, "oid: invalid textual value %q", s)
		}
		n = n*10 + uint64(c-'0')
	}
	return OID(n), nil
}
