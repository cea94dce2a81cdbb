package codec

import (
	"encoding/binary"
	"reflect"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
)

// arrayHasNullFlag marks a binary array header as carrying at least one NULL
// element.
const arrayHasNullFlag = 1

// registerArrayCodecs wires an encode/decode entry for every array OID this
// registry knows the element type of. Array values are never inspected
// through byGoType (no single Go type means "array" — Inspect recognizes
// them structurally instead), but a DataRow column carrying an array OID
// still needs a Lookup entry to decode through.
func registerArrayCodecs(r *Registry) {
	for _, arrOID := range []OID{
		OIDBoolArray, OIDInt2Array, OIDInt4Array, OIDInt8Array,
		OIDFloat4Array, OIDFloat8Array, OIDNumericArray,
		OIDTextArray, OIDVarcharArray, OIDCharArray, OIDCStringArray,
	} {
		r.byOID[arrOID] = Codec{
			OID:    arrOID,
			Format: wire.BinaryFormat,
			Encode: func(v any) ([]byte, error) { return encodeArrayValue(r, v) },
			Decode: func(buf []byte) (any, error) { return decodeArray(r, buf) },
		}
	}
}

// inspectArray analyzes a host array's shape and element type, mirroring
// array_inspect: it walks the nested-slice structure to determine
// dimensionality, confirms every dimension's sublists agree on length,
// confirms every non-nil leaf shares one Go type, and resolves that type to
// its element codec.
func (r *Registry) inspectArray(elements []any) (Codec, error) {
	dims, leaves, elemType, err := analyzeArray(elements)
	if err != nil {
		return Codec{}, err
	}
	_ = dims

	if elemType == nil {
		return Codec{}, pgerror.ErrArrayContentEmpty
	}

	var leafCodec Codec
	if elemType == reflect.TypeOf(int(0)) {
		leafCodec = intCodec(widestInt(leaves))
	} else {
		c, ok := r.byGoType[elemType]
		if !ok {
			return Codec{}, pgerror.ErrArrayContentNotSupported
		}
		leafCodec = c
	}

	arrOID := elementOID(leafCodec.OID)
	if arrOID == 0 {
		return Codec{}, pgerror.ErrArrayContentNotSupported
	}

	return Codec{
		OID:    arrOID,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) { return encodeArrayWith(leafCodec, v) },
		Decode: func(buf []byte) (any, error) { return decodeArray(r, buf) },
	}, nil
}

// analyzeArray walks elements (which may itself contain nested []any or
// Array values) depth-first, returning the per-dimension lengths, the
// flattened leaves in row-major order, and the Go type shared by every
// non-nil leaf (nil if every leaf is nil or there are no leaves at all).
func analyzeArray(elements []any) (dims []int32, leaves []any, elemType reflect.Type, err error) {
	dims = append(dims, int32(len(elements)))

	isNested := false
	for _, e := range elements {
		if _, ok := asSlice(e); ok {
			isNested = true
			break
		}
	}

	if !isNested {
		for _, e := range elements {
			leaves = append(leaves, e)
			if e == nil {
				continue
			}
			t := reflect.TypeOf(e)
			switch {
			case elemType == nil:
				elemType = t
			case elemType != t:
				return nil, nil, nil, pgerror.ErrArrayContentNotHomogenous
			}
		}
		return dims, leaves, elemType, nil
	}

	var subDims []int32
	for i, e := range elements {
		sub, ok := asSlice(e)
		if !ok {
			return nil, nil, nil, pgerror.ErrArrayDimensionsNotConsistent
		}
		childDims, childLeaves, childType, cerr := analyzeArray(sub)
		if cerr != nil {
			return nil, nil, nil, cerr
		}
		if i == 0 {
			subDims = childDims
		} else if !equalDims(subDims, childDims) {
			return nil, nil, nil, pgerror.ErrArrayDimensionsNotConsistent
		}
		leaves = append(leaves, childLeaves...)
		if childType != nil {
			if elemType == nil {
				elemType = childType
			} else if elemType != childType {
				return nil, nil, nil, pgerror.ErrArrayContentNotHomogenous
			}
		}
	}

	dims = append(dims, subDims...)
	return dims, leaves, elemType, nil
}

// widestInt scans a []int array's flattened leaves (which may include nil
// for NULL elements) and returns whichever element has the largest
// magnitude, so intCodec picks one wire width wide enough for every element
// rather than one sized to just the first.
func widestInt(leaves []any) int64 {
	var widest int64
	var widestAbs uint64
	for _, leaf := range leaves {
		i, ok := leaf.(int)
		if !ok {
			continue
		}
		a := uint64(i)
		if i < 0 {
			a = uint64(-i)
		}
		if a > widestAbs || (a == widestAbs && i > 0) {
			widestAbs = a
			widest = int64(i)
		}
	}
	return widest
}

func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if arr, ok := v.(Array); ok {
		return arr.Elements, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type() == reflect.TypeOf(Bytea(nil)) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func equalDims(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func encodeArrayValue(r *Registry, v any) ([]byte, error) {
	elements, ok := asSlice(v)
	if !ok {
		if arr, ok2 := v.(Array); ok2 {
			elements = arr.Elements
		} else {
			return nil, pgerror.NewDataError(codeInvalidValue, "array: expected slice, got %T", v)
		}
	}
	_, leaves, elemType, err := analyzeArray(elements)
	if err != nil {
		return nil, err
	}
	if elemType == nil {
		return nil, pgerror.ErrArrayContentEmpty
	}

	var leafCodec Codec
	if elemType == reflect.TypeOf(int(0)) {
		leafCodec = intCodec(widestInt(leaves))
	} else {
		c, ok := r.byGoType[elemType]
		if !ok {
			return nil, pgerror.ErrArrayContentNotSupported
		}
		leafCodec = c
	}
	return encodeArrayWith(leafCodec, v)
}

// encodeArrayWith builds the binary array wire format: ndim, a has-null
// flag, the element OID, then per-dimension (length, lower-bound) pairs,
// followed by every leaf value length-prefixed (-1 marking NULL) in
// row-major order.
func encodeArrayWith(leafCodec Codec, v any) ([]byte, error) {
	elements, ok := asSlice(v)
	if !ok {
		if arr, ok2 := v.(Array); ok2 {
			elements = arr.Elements
		} else {
			return nil, pgerror.NewDataError(codeInvalidValue, "array: expected slice, got %T", v)
		}
	}

	dims, leaves, _, err := analyzeArray(elements)
	if err != nil {
		return nil, err
	}

	hasNull := int32(0)
	encoded := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		if leaf == nil {
			hasNull = arrayHasNullFlag
			continue
		}
		b, err := leafCodec.Encode(leaf)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
	}

	buf := make([]byte, 0, 12+8*len(dims)+4*len(leaves))
	var hdr [4]byte

	binary.BigEndian.PutUint32(hdr[:], uint32(len(dims)))
	buf = append(buf, hdr[:]...)
	binary.BigEndian.PutUint32(hdr[:], uint32(hasNull))
	buf = append(buf, hdr[:]...)
	binary.BigEndian.PutUint32(hdr[:], uint32(leafCodec.OID))
	buf = append(buf, hdr[:]...)

	for _, d := range dims {
		binary.BigEndian.PutUint32(hdr[:], uint32(d))
		buf = append(buf, hdr[:]...)
		binary.BigEndian.PutUint32(hdr[:], 1) // lower bound
		buf = append(buf, hdr[:]...)
	}

	for _, b := range encoded {
		if b == nil {
			binary.BigEndian.PutUint32(hdr[:], uint32(int32(-1)))
			buf = append(buf, hdr[:]...)
			continue
		}
		binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, b...)
	}

	return buf, nil
}

func decodeArray(r *Registry, buf []byte) (any, error) {
	if len(buf) < 12 {
		return nil, pgerror.NewDataError(codeInvalidValue, "array: header truncated")
	}
	ndim := int(int32(binary.BigEndian.Uint32(buf[0:4])))
	_ = binary.BigEndian.Uint32(buf[4:8]) // has-null flag, informational only
	elemOID := OID(binary.BigEndian.Uint32(buf[8:12]))
	pos := 12

	if ndim == 0 {
		return []any{}, nil
	}

	dims := make([]int32, ndim)
	for i := 0; i < ndim; i++ {
		if len(buf) < pos+8 {
			return nil, pgerror.NewDataError(codeInvalidValue, "array: dimension header truncated")
		}
		dims[i] = int32(binary.BigEndian.Uint32(buf[pos : pos+4]))
		pos += 8 // skip the lower-bound field
	}

	elemCodec, ok := r.Lookup(elemOID)
	if !ok {
		return nil, pgerror.ErrArrayContentNotSupported
	}

	total := 1
	for _, d := range dims {
		total *= int(d)
	}

	leaves := make([]any, total)
	for i := 0; i < total; i++ {
		if len(buf) < pos+4 {
			return nil, pgerror.NewDataError(codeInvalidValue, "array: element length truncated")
		}
		n := int32(binary.BigEndian.Uint32(buf[pos : pos+4]))
		pos += 4
		if n < 0 {
			leaves[i] = nil
			continue
		}
		if len(buf) < pos+int(n) {
			return nil, pgerror.NewDataError(codeInvalidValue, "array: element body truncated")
		}
		v, err := elemCodec.Decode(buf[pos : pos+int(n)])
		if err != nil {
			return nil, err
		}
		leaves[i] = v
		pos += int(n)
	}

	return nestArray(leaves, dims), nil
}

// nestArray rebuilds the row-major leaf list into Go's natural nested-slice
// representation: []any for ndim==1, [][]any for ndim==2, and so on.
func nestArray(leaves []any, dims []int32) any {
	if len(dims) == 1 {
		return leaves
	}
	stride := 1
	for _, d := range dims[1:] {
		stride *= int(d)
	}
	out := make([]any, dims[0])
	for i := range out {
		out[i] = nestArray(leaves[i*stride:(i+1)*stride], dims[1:])
	}
	return out
}
