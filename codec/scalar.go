package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
)

func boolCodec() Codec {
	return Codec{
		OID:    OIDBool,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected bool, got %T", v)
			}
			if b {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 1 {
				return nil, pgerror.NewDataError(codeInvalidValue, "bool: expected 1 byte, got %d", len(buf))
			}
			return buf[0] != 0, nil
		},
	}
}

func int2Codec() Codec {
	return Codec{
		OID:    OIDInt2,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			i, ok := asInt64(v)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected integer, got %T", v)
			}
			buf := make([]byte, 2)
			binary.BigEndian.PutUint16(buf, uint16(int16(i)))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 2 {
				return nil, pgerror.NewDataError(codeInvalidValue, "int2: expected 2 bytes, got %d", len(buf))
			}
			return int16(binary.BigEndian.Uint16(buf)), nil
		},
	}
}

func int4Codec() Codec {
	return Codec{
		OID:    OIDInt4,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			i, ok := asInt64(v)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected integer, got %T", v)
			}
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, uint32(int32(i)))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 4 {
				return nil, pgerror.NewDataError(codeInvalidValue, "int4: expected 4 bytes, got %d", len(buf))
			}
			return int32(binary.BigEndian.Uint32(buf)), nil
		},
	}
}

func int8Codec() Codec {
	return Codec{
		OID:    OIDInt8,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			i, ok := asInt64(v)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected integer, got %T", v)
			}
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(i))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 8 {
				return nil, pgerror.NewDataError(codeInvalidValue, "int8: expected 8 bytes, got %d", len(buf))
			}
			return int64(binary.BigEndian.Uint64(buf)), nil
		},
	}
}

// intCodec routes a plain Go int to the smallest wire integer type that can
// hold it, mirroring inspect_int picking int2/int4/int8 by magnitude. The
// returned codec's OID always matches the width Encode emits for i, so a
// caller that inspects before encoding never ends up with a mismatched pair.
func intCodec(i int64) Codec {
	switch {
	case i >= math.MinInt16 && i <= math.MaxInt16:
		return int2Codec()
	case i >= math.MinInt32 && i <= math.MaxInt32:
		return int4Codec()
	default:
		return int8Codec()
	}
}

func float4Codec() Codec {
	return Codec{
		OID:    OIDFloat4,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			f, ok := v.(float32)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected float32, got %T", v)
			}
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, math.Float32bits(f))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 4 {
				return nil, pgerror.NewDataError(codeInvalidValue, "float4: expected 4 bytes, got %d", len(buf))
			}
			return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
		},
	}
}

func float8Codec() Codec {
	return Codec{
		OID:    OIDFloat8,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("pgwire: expected float64, got %T", v)
			}
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, math.Float64bits(f))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 8 {
				return nil, pgerror.NewDataError(codeInvalidValue, "float8: expected 8 bytes, got %d", len(buf))
			}
			return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
		},
	}
}

func asInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int:
		return int64(i), true
	case int16:
		return int64(i), true
	case int32:
		return int64(i), true
	case int64:
		return i, true
	default:
		return 0, false
	}
}
