package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
)

// pgEpoch is PostgreSQL's reference instant for the binary timestamp
// representations: 2000-01-01 00:00:00 UTC, rather than the Unix epoch.
var pgEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func timeTimeZero() time.Time { return time.Time{} }

// wallClock strips t's zone, keeping only its displayed calendar and
// time-of-day fields, so a Timestamp (no-zone) value encodes identically
// regardless of which Location its underlying time.Time happens to carry.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d, h, mi, s, t.Nanosecond(), time.UTC)
}

func timestampCodec(integerDatetimes bool) Codec {
	return Codec{
		OID:    OIDTimestamp,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			ts, ok := v.(Timestamp)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "timestamp: expected Timestamp, got %T", v)
			}
			return encodeEpochInstant(wallClock(time.Time(ts)), integerDatetimes), nil
		},
		Decode: func(buf []byte) (any, error) {
			t, err := decodeEpochInstant(buf, integerDatetimes)
			if err != nil {
				return nil, err
			}
			return Timestamp(t), nil
		},
	}
}

func timestamptzCodec(integerDatetimes bool) Codec {
	return Codec{
		OID:    OIDTimestamptz,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "timestamptz: expected time.Time, got %T", v)
			}
			return encodeEpochInstant(t.UTC(), integerDatetimes), nil
		},
		Decode: func(buf []byte) (any, error) {
			return decodeEpochInstant(buf, integerDatetimes)
		},
	}
}

func encodeEpochInstant(t time.Time, integerDatetimes bool) []byte {
	buf := make([]byte, 8)
	if integerDatetimes {
		micros := t.Sub(pgEpoch).Microseconds()
		binary.BigEndian.PutUint64(buf, uint64(micros))
		return buf
	}
	seconds := t.Sub(pgEpoch).Seconds()
	binary.BigEndian.PutUint64(buf, math.Float64bits(seconds))
	return buf
}

func decodeEpochInstant(buf []byte, integerDatetimes bool) (time.Time, error) {
	if len(buf) != 8 {
		return time.Time{}, pgerror.NewDataError(codeInvalidValue, "timestamp: expected 8 bytes, got %d", len(buf))
	}
	if integerDatetimes {
		micros := int64(binary.BigEndian.Uint64(buf))
		return pgEpoch.Add(time.Duration(micros) * time.Microsecond).UTC(), nil
	}
	seconds := math.Float64frombits(binary.BigEndian.Uint64(buf))
	return pgEpoch.Add(time.Duration(seconds * float64(time.Second))).UTC(), nil
}

func intervalCodec() Codec {
	return Codec{
		OID:    OIDInterval,
		Format: wire.BinaryFormat,
		Encode: func(v any) ([]byte, error) {
			iv, ok := v.(Interval)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "interval: expected Interval, got %T", v)
			}
			buf := make([]byte, 16)
			binary.BigEndian.PutUint64(buf[0:8], uint64(iv.Microseconds))
			binary.BigEndian.PutUint32(buf[8:12], uint32(iv.Days))
			binary.BigEndian.PutUint32(buf[12:16], uint32(iv.Months))
			return buf, nil
		},
		Decode: func(buf []byte) (any, error) {
			if len(buf) != 16 {
				return nil, pgerror.NewDataError(codeInvalidValue, "interval: expected 16 bytes, got %d", len(buf))
			}
			return Interval{
				Microseconds: int64(binary.BigEndian.Uint64(buf[0:8])),
				Days:         int32(binary.BigEndian.Uint32(buf[8:12])),
				Months:       int32(binary.BigEndian.Uint32(buf[12:16])),
			}, nil
		},
	}
}

func dateCodec() Codec {
	return Codec{
		OID:    OIDDate,
		Format: wire.TextFormat,
		Encode: func(v any) ([]byte, error) {
			d, ok := v.(Date)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "date: expected Date, got %T", v)
			}
			return []byte(fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)), nil
		},
		Decode: func(buf []byte) (any, error) {
			var y, m, d int
			if _, err := fmt.Sscanf(string(buf), "%d-%d-%d", &y, &m, &d); err != nil {
				return nil, pgerror.NewDataError(codeInvalidValue, "date: unparseable value %q", buf)
			}
			return Date{Year: y, Month: time.Month(m), Day: d}, nil
		},
	}
}

func timeCodec() Codec {
	return Codec{
		OID:    OIDTime,
		Format: wire.TextFormat,
		Encode: func(v any) ([]byte, error) {
			t, ok := v.(TimeOfDay)
			if !ok {
				return nil, pgerror.NewDataError(codeInvalidValue, "time: expected TimeOfDay, got %T", v)
			}
			if t.Microsecond == 0 {
				return []byte(fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)), nil
			}
			return []byte(fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Microsecond)), nil
		},
		Decode: func(buf []byte) (any, error) {
			var h, m, s, us int
			n, err := fmt.Sscanf(string(buf), "%d:%d:%d.%d", &h, &m, &s, &us)
			if err != nil && n < 3 {
				return nil, pgerror.NewDataError(codeInvalidValue, "time: unparseable value %q", buf)
			}
			return TimeOfDay{Hour: h, Minute: m, Second: s, Microsecond: us}, nil
		},
	}
}
