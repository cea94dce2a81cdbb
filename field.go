package pgwire

import (
	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/wire"
)

// FieldDescription describes one result column, as reported by a statement
// or portal Describe.
type FieldDescription struct {
	Name         string
	TableOID     codec.OID
	ColumnAttr   int16
	TypeOID      codec.OID
	TypeSize     int16
	TypeModifier int32
	Format       wire.FormatCode
}

// readRowDescription parses a RowDescription message body into its field
// list.
func (s *Session) readRowDescription() ([]FieldDescription, error) {
	n, err := s.reader.GetUint16()
	if err != nil {
		return nil, err
	}

	fields := make([]FieldDescription, n)
	for i := range fields {
		name, err := s.reader.GetString()
		if err != nil {
			return nil, err
		}
		tableOID, _ := s.reader.GetUint32()
		attr, _ := s.reader.GetUint16()
		typeOID, _ := s.reader.GetUint32()
		typeSize, _ := s.reader.GetUint16()
		typeMod, _ := s.reader.GetInt32()
		format, _ := s.reader.GetUint16()

		fields[i] = FieldDescription{
			Name:         name,
			TableOID:     codec.OID(tableOID),
			ColumnAttr:   int16(attr),
			TypeOID:      codec.OID(typeOID),
			TypeSize:     int16(typeSize),
			TypeModifier: typeMod,
			Format:       wire.FormatCode(int16(format)),
		}
	}
	return fields, nil
}

// readParameterDescription parses a ParameterDescription message body into
// its OID list.
func (s *Session) readParameterDescription() ([]codec.OID, error) {
	n, err := s.reader.GetUint16()
	if err != nil {
		return nil, err
	}
	oids := make([]codec.OID, n)
	for i := range oids {
		v, err := s.reader.GetUint32()
		if err != nil {
			return nil, err
		}
		oids[i] = codec.OID(v)
	}
	return oids, nil
}

// resultFormatsFor picks the wire format this client wants each field sent
// back in, based on the codec registered for its type OID, defaulting to
// text for an OID this client has no codec for (readDataRow then decodes
// that column as text in the connection's client_encoding).
func (s *Session) resultFormatsFor(fields []FieldDescription) []wire.FormatCode {
	formats := make([]wire.FormatCode, len(fields))
	for i, f := range fields {
		if c, ok := s.registry.Lookup(f.TypeOID); ok {
			formats[i] = c.Format
		} else {
			formats[i] = wire.TextFormat
		}
	}
	return formats
}
