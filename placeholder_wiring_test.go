package pgwire

import (
	"context"
	"testing"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/placeholder"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

// TestPrepareTranslatesQmarkPlaceholders verifies a Session configured for
// the qmark dialect rewrites caller SQL into native $N form before Parse
// and still binds the caller's positional args in order.
func TestPrepareTranslatesQmarkPlaceholders(t *testing.T) {
	var gotSQL string
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		tag, body := fs.readFrontendBody()
		require.Equal(t, wire.FrontendParse, tag)
		gotSQL = parseMessageQuery(body)

		fs.readFrontend() // Describe(Statement)
		fs.readFrontend() // Sync
		fs.sendParseComplete()
		fs.sendNoData()
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Bind
		fs.readFrontend() // Describe(Portal)
		fs.readFrontend() // Execute
		fs.readFrontend() // Sync
		fs.sendBindComplete()
		fs.sendNoData()
		fs.sendCommandComplete("UPDATE 1")
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)
	})
	sess.cfg.paramStyle = placeholder.Qmark

	tag, err := sess.Exec(context.Background(), "UPDATE t SET a = ? WHERE id = ?", int32(1), int32(2))
	require.NoError(t, err)
	require.Equal(t, CommandTag("UPDATE 1"), tag)
	require.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", gotSQL)
}

// TestPrepareTranslatesNamedPlaceholders verifies a map of caller args is
// remapped to the positions its translated $N query actually uses,
// including a name reused for more than one placeholder.
func TestPrepareTranslatesNamedPlaceholders(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		fs.readFrontend() // Parse
		fs.readFrontend() // Describe(Statement)
		fs.readFrontend() // Sync
		fs.sendParseComplete()
		fs.sendRowDescription([]string{"id"}, []int32{int32(codec.OIDInt4)})
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Bind
		fs.readFrontend() // Describe(Portal)
		fs.readFrontend() // Execute
		fs.readFrontend() // Sync
		fs.sendBindComplete()
		fs.sendRowDescription([]string{"id"}, []int32{int32(codec.OIDInt4)})
		fs.sendCommandComplete("SELECT 0")
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)
	})
	sess.cfg.paramStyle = placeholder.Named

	cur, err := sess.Query(context.Background(), "SELECT id FROM t WHERE a = :x OR b = :y OR c = :x",
		map[string]any{"x": int32(1), "y": int32(2)})
	require.NoError(t, err)
	require.NoError(t, cur.Close(context.Background()))
}

// parseMessageQuery extracts the SQL string from a raw Parse message body
// (unnamed statement name, NUL, query, NUL, int16 numParamTypes).
func parseMessageQuery(body []byte) string {
	body = body[1:] // skip the statement name's leading NUL (unnamed)
	end := 0
	for end < len(body) && body[end] != 0 {
		end++
	}
	return string(body[:end])
}
