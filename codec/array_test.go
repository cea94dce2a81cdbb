package codec

import (
	"testing"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayRoundTrip1D(t *testing.T) {
	r := newRegistry(t)

	in := []any{int32(1), int32(2), int32(3)}
	c, err := r.Inspect(in)
	require.NoError(t, err)
	assert.Equal(t, OIDInt4Array, c.OID)

	buf, err := c.Encode(in)
	require.NoError(t, err)

	dc, ok := r.Lookup(c.OID)
	require.True(t, ok)
	out, err := dc.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestArrayRoundTripWithNull(t *testing.T) {
	r := newRegistry(t)

	in := []any{"a", nil, "c"}
	c, err := r.Inspect(in)
	require.NoError(t, err)
	assert.Equal(t, OIDTextArray, c.OID)

	buf, err := c.Encode(in)
	require.NoError(t, err)

	dc, _ := r.Lookup(c.OID)
	out, err := dc.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestArrayRoundTripNested2D(t *testing.T) {
	r := newRegistry(t)

	in := []any{
		[]any{int32(1), int32(2)},
		[]any{int32(3), int32(4)},
	}
	c, err := r.Inspect(in)
	require.NoError(t, err)

	buf, err := c.Encode(in)
	require.NoError(t, err)

	dc, _ := r.Lookup(c.OID)
	out, err := dc.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestArrayEmptyIsError(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Inspect([]any{})
	assert.ErrorIs(t, err, pgerror.ErrArrayContentEmpty)
}

func TestArrayNotHomogenousIsError(t *testing.T) {
	r := newRegistry(t)
	_, err := r.Inspect([]any{int32(1), "two"})
	assert.Error(t, err)
}

func TestArrayDimensionsNotConsistentIsError(t *testing.T) {
	r := newRegistry(t)
	in := []any{
		[]any{int32(1), int32(2)},
		[]any{int32(3)},
	}
	_, err := r.Inspect(in)
	assert.Error(t, err)
}
