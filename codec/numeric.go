package codec

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/shopspring/decimal"
)

const (
	numericPositive = 0x0000
	numericNegative = 0x4000
	numericNaN      = 0xC000
)

func decimalZero() decimal.Decimal { return decimal.Decimal{} }

// numericCodec implements PostgreSQL's base-10000 "NBASE" digit-group
// binary format for the numeric type, backed by shopspring/decimal as the
// host representation so callers keep exact decimal arithmetic end to end.
func numericCodec() Codec {
	return Codec{
		OID:    OIDNumeric,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			d, ok := v.(decimal.Decimal)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "numeric: expected decimal.Decimal, got %T", v)
			}
			return numericEncode(d), nil
		},
		Decode: func(buf []byte) (any, error) {
			return numericDecode(buf)
		},
	}
}

func numericEncode(d decimal.Decimal) []byte {
	neg := d.Sign() < 0
	coeff := new(big.Int).Abs(d.Coefficient())
	exp := d.Exponent()

	dscale := 0
	if exp < 0 {
		dscale = int(-exp)
	}

	scaled := new(big.Int).Set(coeff)
	if exp > 0 {
		scaled.Mul(scaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	}

	sign := uint16(numericPositive)
	if neg && scaled.Sign() != 0 {
		sign = numericNegative
	}

	if scaled.Sign() == 0 {
		return encodeNumericHeader(0, 0, sign, dscale, nil)
	}

	s := scaled.String()
	intDigits := len(s) - dscale
	if intDigits < 0 {
		s = strings.Repeat("0", -intDigits) + s
		intDigits = 0
	}

	if pad := (4 - intDigits%4) % 4; pad != 0 {
		s = strings.Repeat("0", pad) + s
		intDigits += pad
	}
	if pad := (4 - dscale%4) % 4; pad != 0 {
		s += strings.Repeat("0", pad)
	}

	weight := intDigits/4 - 1
	ndigits := len(s) / 4

	digits := make([]int16, ndigits)
	for i := 0; i < ndigits; i++ {
		group, _ := strconv.Atoi(s[i*4 : i*4+4])
		digits[i] = int16(group)
	}

	return encodeNumericHeader(ndigits, weight, sign, dscale, digits)
}

func encodeNumericHeader(ndigits, weight int, sign uint16, dscale int, digits []int16) []byte {
	buf := make([]byte, 8+2*len(digits))
	binary.BigEndian.PutUint16(buf[0:2], uint16(ndigits))
	binary.BigEndian.PutUint16(buf[2:4], uint16(int16(weight)))
	binary.BigEndian.PutUint16(buf[4:6], sign)
	binary.BigEndian.PutUint16(buf[6:8], uint16(dscale))
	for i, dg := range digits {
		binary.BigEndian.PutUint16(buf[8+2*i:10+2*i], uint16(dg))
	}
	return buf
}

func numericDecode(buf []byte) (decimal.Decimal, error) {
	if len(buf) < 8 {
		return decimal.Decimal{}, pgerror.NewDataError(codeInvalidValue, "numeric: header truncated")
	}

	ndigits := int(binary.BigEndian.Uint16(buf[0:2]))
	weight := int(int16(binary.BigEndian.Uint16(buf[2:4])))
	sign := binary.BigEndian.Uint16(buf[4:6])
	dscale := int(binary.BigEndian.Uint16(buf[6:8]))

	if sign == numericNaN {
		return decimal.Decimal{}, pgerror.NewDataError(codeInvalidValue, "numeric: NaN is not representable")
	}
	if len(buf) < 8+2*ndigits {
		return decimal.Decimal{}, pgerror.NewDataError(codeInvalidValue, "numeric: digit array truncated")
	}

	acc := new(big.Int)
	ten := big.NewInt(10)
	for i := 0; i < ndigits; i++ {
		digit := int64(binary.BigEndian.Uint16(buf[8+2*i : 10+2*i]))
		groupExp := 4*(weight-i) + dscale
		term := big.NewInt(digit)
		switch {
		case groupExp >= 0:
			term.Mul(term, new(big.Int).Exp(ten, big.NewInt(int64(groupExp)), nil))
		default:
			div := new(big.Int).Exp(ten, big.NewInt(int64(-groupExp)), nil)
			term.Div(term, div)
		}
		acc.Add(acc, term)
	}

	if sign == numericNegative {
		acc.Neg(acc)
	}

	return decimal.NewFromBigInt(acc, -int32(dscale)), nil
}
