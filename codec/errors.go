package codec

import "github.com/go-pgwire/pgwire/codes"

// codeInvalidValue tags a decode-side failure: the wire bytes for a given
// OID do not have the shape that type's binary or text format requires.
const codeInvalidValue = codes.DataException
