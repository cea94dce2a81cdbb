package codec

import "time"

// Bytea marks a byte slice as opaque binary data (OID 17). A plain []byte
// argument is not sent as bytea: Inspect treats it as an array of uint8,
// which has no element codec, and rejects it.
type Bytea []byte

// Date is a calendar date with no time-of-day or zone component, encoded as
// PostgreSQL's date type (OID 1082) using its ISO-8601 textual form.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateFromTicks constructs a Date from a Unix timestamp, following the
// ticks-since-epoch constructors of the database API this client mirrors.
func DateFromTicks(ticks int64) Date {
	t := time.Unix(ticks, 0).UTC()
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// TimeOfDay is a time-of-day value with no associated calendar date or zone,
// encoded as PostgreSQL's time type (OID 1083) using its ISO-8601 textual
// form.
type TimeOfDay struct {
	Hour, Minute, Second int
	Microsecond          int
}

// TimeFromTicks constructs a TimeOfDay from a Unix timestamp, taking only
// its time-of-day component.
func TimeFromTicks(ticks int64) TimeOfDay {
	t := time.Unix(ticks, 0).UTC()
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Timestamp is a calendar date and time-of-day with no associated zone,
// encoded as PostgreSQL's timestamp type (OID 1114). A host value of this
// type is always routed to timestamp rather than timestamptz, regardless of
// the Location carried by the embedded time.Time — use a plain time.Time to
// address timestamptz (OID 1184) instead.
type Timestamp time.Time

// TimestampFromTicks constructs a Timestamp from a Unix timestamp.
func TimestampFromTicks(ticks int64) Timestamp {
	return Timestamp(time.Unix(ticks, 0).UTC())
}

// Interval is a PostgreSQL interval value (OID 1186): a signed span of
// months, days and microseconds kept separate because the calendar units do
// not have a fixed duration (a month is not always 30 days).
type Interval struct {
	Months       int32
	Days         int32
	Microseconds int64
}

// Array wraps a homogenous, possibly nested, Go slice so the inspector can
// distinguish "encode this slice as a PostgreSQL array" from a host type
// that happens to be a slice for other reasons (there currently is none,
// but the wrapper keeps the inspection switch unambiguous and mirrors how
// the other non-primitive kinds are wrapped).
type Array struct {
	Elements []any
}
