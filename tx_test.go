package pgwire

import (
	"context"
	"testing"

	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatusTracksReadyForQuery(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		fs.readFrontend() // Parse
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
		fs.sendCommandComplete("BEGIN")
		fs.sendReady(wire.TxInBlock)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxInBlock)

		fs.readFrontend() // Parse
		fs.readFrontend() // Describe(Statement)
		fs.readFrontend() // Sync
		fs.sendParseComplete()
		fs.sendNoData()
		fs.sendReady(wire.TxInBlock)

		fs.readFrontend() // Bind
		fs.readFrontend() // Describe(Portal)
		fs.readFrontend() // Execute
		fs.readFrontend() // Sync
		fs.sendBindComplete()
		fs.sendNoData()
		fs.sendErrorResponse("23505", "ERROR", "duplicate key")
		fs.sendReady(wire.TxInFailed)
	})

	require.False(t, sess.InTransaction())

	_, err := sess.Exec(context.Background(), "BEGIN")
	require.NoError(t, err)
	require.True(t, sess.InTransaction())
	require.False(t, sess.TransactionFailed())

	_, err = sess.Exec(context.Background(), "INSERT INTO t VALUES (1)")
	require.Error(t, err)
	require.True(t, sess.InTransaction())
	require.True(t, sess.TransactionFailed())
}
