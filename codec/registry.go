package codec

import (
	"fmt"
	"reflect"

	"github.com/go-pgwire/pgwire/wire"
)

// Encoder turns a host value into its wire representation.
type Encoder func(v any) ([]byte, error)

// Decoder turns a wire representation back into a host value.
type Decoder func(buf []byte) (any, error)

// Codec pairs the OID and wire format a type is carried with alongside the
// functions that move between host and wire representations.
type Codec struct {
	OID    OID
	Format wire.FormatCode
	Encode Encoder
	Decode Decoder
}

// Registry is the OID-keyed pair of lookup tables the specification calls
// py_types (host type -> OID/format/encoder) and pg_types (OID ->
// format/decoder). A Registry has no mutable state once built; Inspect and
// Lookup are safe for concurrent use.
type Registry struct {
	byGoType map[reflect.Type]Codec
	byOID    map[OID]Codec
}

// NewRegistry builds the registry wiring every scalar, textual, temporal and
// binary codec this client supports. integerDatetimes mirrors the
// server-negotiated integer_datetimes ParameterStatus: true selects the
// int64-microseconds wire representation for timestamp/timestamptz, false
// the legacy float8-seconds representation.
func NewRegistry(enc TextCodec, integerDatetimes bool) *Registry {
	r := &Registry{
		byGoType: make(map[reflect.Type]Codec),
		byOID:    make(map[OID]Codec),
	}

	r.register(reflect.TypeOf(false), boolCodec())
	r.register(reflect.TypeOf(int16(0)), int2Codec())
	r.register(reflect.TypeOf(int32(0)), int4Codec())
	r.register(reflect.TypeOf(int64(0)), int8Codec())
	r.register(reflect.TypeOf(float32(0)), float4Codec())
	r.register(reflect.TypeOf(float64(0)), float8Codec())
	r.register(reflect.TypeOf(decimalZero()), numericCodec())
	r.register(reflect.TypeOf(""), textCodec(enc))
	r.register(reflect.TypeOf(Bytea(nil)), byteaCodec())
	r.register(reflect.TypeOf(OID(0)), oidCodec())
	r.register(reflect.TypeOf(Date{}), dateCodec())
	r.register(reflect.TypeOf(TimeOfDay{}), timeCodec())
	r.register(reflect.TypeOf(Timestamp{}), timestampCodec(integerDatetimes))
	r.register(reflect.TypeOf(timeTimeZero()), timestamptzCodec(integerDatetimes))
	r.register(reflect.TypeOf(Interval{}), intervalCodec())
	r.register(reflect.TypeOf(uuidZero()), uuidCodec())

	// pg_types: every OID this client can decode gets an entry even when no
	// single Go type maps back onto it uniquely (e.g. both int2 and int4
	// decode to Go int, but only one of them owns that reflect.Type as its
	// encode-side host type).
	for _, c := range []Codec{
		boolCodec(), int2Codec(), int4Codec(), int8Codec(),
		float4Codec(), float8Codec(), numericCodec(),
		textCodec(enc), byteaCodec(), oidCodec(),
		dateCodec(), timeCodec(), timestampCodec(integerDatetimes), timestamptzCodec(integerDatetimes),
		intervalCodec(), uuidCodec(),
	} {
		r.byOID[c.OID] = c
	}

	registerArrayCodecs(r)

	return r
}

func (r *Registry) register(t reflect.Type, c Codec) {
	r.byGoType[t] = c
	r.byOID[c.OID] = c
}

// Lookup returns the codec registered for a wire OID.
func (r *Registry) Lookup(id OID) (Codec, bool) {
	c, ok := r.byOID[id]
	return c, ok
}

// Inspect determines the OID, wire format and encoder to use for a host
// value ahead of a Parse/Bind message, mirroring make_params' per-argument
// type inspection.
func (r *Registry) Inspect(v any) (Codec, error) {
	if v == nil {
		return Codec{OID: UnknownOID, Format: wire.TextFormat}, nil
	}

	if i, ok := v.(int); ok {
		return intCodec(int64(i)), nil
	}
	if arr, ok := v.(Array); ok {
		return r.inspectArray(arr.Elements)
	}
	if reflect.TypeOf(v).Kind() == reflect.Slice && reflect.TypeOf(v) != reflect.TypeOf(Bytea(nil)) && reflect.TypeOf(v) != reflect.TypeOf("") {
		if elems, ok := toAnySlice(v); ok {
			return r.inspectArray(elems)
		}
	}

	c, ok := r.byGoType[reflect.TypeOf(v)]
	if !ok {
		return Codec{}, fmt.Errorf("pgwire: unsupported host type %T", v)
	}
	return c, nil
}

// toAnySlice reflects over an arbitrary slice value, returning its elements
// boxed as []any, or ok=false if v is not a slice.
func toAnySlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
