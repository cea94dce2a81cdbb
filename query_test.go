package pgwire

import (
	"context"
	"testing"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

// TestQueryParameterErrorLeavesSessionUsable verifies that a parameter the
// registry can't encode is rejected before Bind is written, and
// that the session's locks are released cleanly so a following query still
// works.
func TestQueryParameterErrorLeavesSessionUsable(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		// First Query call: Prepare runs in full, but the bad argument
		// aborts stmt.Query before Bind is ever written.
		fs.readFrontend() // Parse
		fs.readFrontend() // Describe(Statement)
		fs.readFrontend() // Sync
		fs.sendParseComplete()
		fs.sendRowDescription([]string{"id"}, []int32{int32(codec.OIDInt4)})
		fs.sendReady(wire.TxIdle)

		// Second Query call, with a good argument, runs start to finish.
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
		fs.sendCommandComplete("SELECT 1")
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)
	})

	type unsupported struct{ Field int }

	_, err := sess.Query(context.Background(), "SELECT id FROM t WHERE id = $1", unsupported{Field: 1})
	require.Error(t, err)

	cur, err := sess.Query(context.Background(), "SELECT id FROM t WHERE id = $1", int32(1))
	require.NoError(t, err)
	require.NoError(t, cur.Close(context.Background()))
}
