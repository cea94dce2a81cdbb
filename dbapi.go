package pgwire

import (
	"time"

	"github.com/go-pgwire/pgwire/codec"
)

// APILevel and ThreadSafety mirror the compatibility properties of the
// database API this client's type system and paramstyle selector are
// modeled on. APILevel never changes; ThreadSafety=3 declares that both the
// module and a single Session may be shared across goroutines (subject to
// Session's own dispatch serialization).
const (
	APILevel     = "2.0"
	ThreadSafety = 3
)

// Type-equivalence tokens for comparing against a FieldDescription's
// TypeOID by category. STRING, NUMBER and DATETIME are representative
// OIDs (varchar, numeric, timestamp); ROWID is the oid type itself.
const (
	STRING   codec.OID = 1043
	NUMBER   codec.OID = 1700
	DATETIME codec.OID = 1114
	ROWID    codec.OID = 26
)

// BINARY is the type-equivalence token for binary column results; compare a
// decoded value's type against it with a type switch rather than an OID.
type BINARY = codec.Bytea

// Date constructs a calendar date with no time-of-day or zone component.
func Date(year int, month time.Month, day int) codec.Date {
	return codec.Date{Year: year, Month: month, Day: day}
}

// Time constructs a time-of-day value with no associated calendar date.
func Time(hour, minute, second int) codec.TimeOfDay {
	return codec.TimeOfDay{Hour: hour, Minute: minute, Second: second}
}

// Timestamp constructs a calendar date and time-of-day with no zone.
func Timestamp(year int, month time.Month, day, hour, minute, second int) codec.Timestamp {
	return codec.Timestamp(time.Date(year, month, day, hour, minute, second, 0, time.UTC))
}

// DateFromTicks constructs a Date from a Unix timestamp.
func DateFromTicks(ticks int64) codec.Date { return codec.DateFromTicks(ticks) }

// TimeFromTicks constructs a TimeOfDay from a Unix timestamp.
func TimeFromTicks(ticks int64) codec.TimeOfDay { return codec.TimeFromTicks(ticks) }

// TimestampFromTicks constructs a Timestamp from a Unix timestamp.
func TimestampFromTicks(ticks int64) codec.Timestamp { return codec.TimestampFromTicks(ticks) }

// Binary marks value as opaque binary data (bytea); a plain []byte argument
// is rejected as an unsupported array parameter.
func Binary(value []byte) codec.Bytea { return codec.Bytea(value) }
