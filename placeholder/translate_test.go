package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateQmark(t *testing.T) {
	tr, err := Translate(Qmark, "SELECT * FROM t WHERE a = ? AND b = ?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", tr.SQL)

	args, err := tr.Remap([]any{1, "two"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two"}, args)
}

func TestTranslateNumeric(t *testing.T) {
	tr, err := Translate(Numeric, "SELECT * FROM t WHERE a = :1 AND b = :2")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", tr.SQL)
}

func TestTranslateNamedRepeated(t *testing.T) {
	tr, err := Translate(Named, "SELECT * FROM t WHERE a = :foo OR b = :foo OR c = :bar")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 OR b = $1 OR c = $2", tr.SQL)

	args, err := tr.Remap(map[string]any{"foo": 1, "bar": 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, args)
}

func TestTranslatePyformatNamed(t *testing.T) {
	tr, err := Translate(Pyformat, "SELECT * FROM t WHERE a = %(foo)s AND b = %(bar)s")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", tr.SQL)

	args, err := tr.Remap(map[string]any{"foo": 1, "bar": 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, args)
}

func TestTranslateFormat(t *testing.T) {
	tr, err := Translate(Format, "SELECT * FROM t WHERE a = %s AND b = %s")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", tr.SQL)
}

func TestTranslateIgnoresMarkersInsideQuotes(t *testing.T) {
	tr, err := Translate(Qmark, `SELECT '?' AS lit, "?col" FROM t WHERE a = ?`)
	require.NoError(t, err)
	assert.Equal(t, `SELECT '?' AS lit, "?col" FROM t WHERE a = $1`, tr.SQL)
}

func TestTranslateEscapedSingleQuoteLiteral(t *testing.T) {
	tr, err := Translate(Qmark, "SELECT E'it''s ?' FROM t WHERE a = ?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT E'it''s ?' FROM t WHERE a = $1", tr.SQL)
}

func TestTranslateFormatEscapedPercent(t *testing.T) {
	tr, err := Translate(Format, "SELECT a FROM t WHERE b LIKE '50%%' AND c = %s")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t WHERE b LIKE '50%' AND c = $1", tr.SQL)
}

func TestTranslateFormatRejectsUnsupportedVerb(t *testing.T) {
	_, err := Translate(Format, "SELECT * FROM t WHERE a = %d")
	assert.Error(t, err)
}
