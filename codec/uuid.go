package codec

import (
	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/google/uuid"
)

func uuidZero() uuid.UUID { return uuid.UUID{} }

func uuidCodec() Codec {
	return Codec{
		OID:    OIDUUID,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			id, ok := v.(uuid.UUID)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "uuid: expected uuid.UUID, got %T", v)
			}
			out := make([]byte, 16)
			copy(out, id[:])
			return out, nil
		},
		Decode: func(buf []byte) (any, error) {
			id, err := uuid.FromBytes(buf)
			if err != nil {
				return nil, pgerror.NewDataError(codeInvalidValue, "uuid: %s", err)
			}
			return id, nil
		},
	}
}
