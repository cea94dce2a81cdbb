package pgwire

import (
	"testing"
	"time"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/stretchr/testify/require"
)

func TestDBAPIConstructors(t *testing.T) {
	require.Equal(t, codec.Date{Year: 2024, Month: time.March, Day: 5}, Date(2024, time.March, 5))
	require.Equal(t, codec.TimeOfDay{Hour: 1, Minute: 2, Second: 3}, Time(1, 2, 3))
	require.Equal(t, codec.Bytea{1, 2, 3}, Binary([]byte{1, 2, 3}))

	ts := Timestamp(2024, time.March, 5, 1, 2, 3)
	require.Equal(t, time.Date(2024, time.March, 5, 1, 2, 3, 0, time.UTC), time.Time(ts))
}

func TestDBAPIModuleProperties(t *testing.T) {
	require.Equal(t, "2.0", APILevel)
	require.Equal(t, 3, ThreadSafety)
	require.EqualValues(t, 1043, STRING)
	require.EqualValues(t, 1700, NUMBER)
	require.EqualValues(t, 1114, DATETIME)
	require.EqualValues(t, 26, ROWID)
}
