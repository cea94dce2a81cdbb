package codec

import "github.com/lib/pq/oid"

// OID is the PostgreSQL object identifier used to tag a column or parameter
// type on the wire. It is a thin alias over lib/pq's generated OID table so
// that callers can pass either oid.Oid constants or raw uint32 values
// without a conversion dance.
type OID = oid.Oid

// UnknownOID is sent for a parameter whose host type could not be inspected
// ahead of Parse; the server infers the real type from context.
const UnknownOID OID = 705

// Scalar OIDs named by the specification.
const (
	OIDBool        OID = oid.T_bool
	OIDBytea       OID = oid.T_bytea
	OIDInt8        OID = oid.T_int8
	OIDInt2        OID = oid.T_int2
	OIDInt4        OID = oid.T_int4
	OIDText        OID = oid.T_text
	OIDOID         OID = oid.T_oid
	OIDName        OID = oid.T_name
	OIDFloat4      OID = oid.T_float4
	OIDFloat8      OID = oid.T_float8
	OIDUnknown     OID = oid.T_unknown
	OIDCharacter   OID = oid.T_bpchar
	OIDVarchar     OID = oid.T_varchar
	OIDDate        OID = oid.T_date
	OIDTime        OID = oid.T_time
	OIDTimestamp   OID = oid.T_timestamp
	OIDTimestamptz OID = oid.T_timestamptz
	OIDInterval    OID = oid.T_interval
	OIDNumeric     OID = oid.T_numeric
	OIDUUID        OID = oid.T_uuid
	OIDCString     OID = oid.T_cstring
)

// Array OIDs named by the specification: 1000, 1005, 1007, 1009, 1014, 1015,
// 1016, 1021, 1022, 1231, 1263.
const (
	OIDBoolArray    OID = oid.T__bool
	OIDInt2Array    OID = oid.T__int2
	OIDInt4Array    OID = oid.T__int4
	OIDTextArray    OID = oid.T__text
	OIDCharArray    OID = oid.T__bpchar
	OIDVarcharArray OID = oid.T__varchar
	OIDInt8Array    OID = oid.T__int8
	OIDFloat4Array  OID = oid.T__float4
	OIDFloat8Array  OID = oid.T__float8
	OIDNumericArray OID = oid.T__numeric
	OIDCStringArray OID = oid.T__cstring
)

// elementOID returns the array OID that carries elements of base, or 0 if
// base has no known array counterpart in this codec.
func elementOID(base OID) OID {
	switch base {
	case OIDBool:
		return OIDBoolArray
	case OIDInt2:
		return OIDInt2Array
	case OIDInt4:
		return OIDInt4Array
	case OIDInt8:
		return OIDInt8Array
	case OIDFloat4:
		return OIDFloat4Array
	case OIDFloat8:
		return OIDFloat8Array
	case OIDNumeric:
		return OIDNumericArray
	case OIDText:
		return OIDTextArray
	case OIDVarchar:
		return OIDVarcharArray
	case OIDCharacter:
		return OIDCharArray
	case OIDCString:
		return OIDCStringArray
	default:
		return 0
	}
}

// baseOID is the inverse of elementOID: the element type carried by an array OID.
func baseOID(array OID) (OID, bool) {
	switch array {
	case OIDBoolArray:
		return OIDBool, true
	case OIDInt2Array:
		return OIDInt2, true
	case OIDInt4Array:
		return OIDInt4, true
	case OIDInt8Array:
		return OIDInt8, true
	case OIDFloat4Array:
		return OIDFloat4, true
	case OIDFloat8Array:
		return OIDFloat8, true
	case OIDNumericArray:
		return OIDNumeric, true
	case OIDTextArray:
		return OIDText, true
	case OIDVarcharArray:
		return OIDVarchar, true
	case OIDCharArray:
		return OIDCharacter, true
	case OIDCStringArray:
		return OIDCString, true
	default:
		return 0, false
	}
}
