package pgwire

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

func int4Bytes(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	return buf
}

func TestQueryExecFetchesAllRows(t *testing.T) {
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
		fs.sendDataRow([][]byte{int4Bytes(1)})
		fs.sendDataRow([][]byte{int4Bytes(2)})
		fs.sendCommandComplete("SELECT 2")
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)
	})

	cur, err := sess.Query(context.Background(), "SELECT id FROM t")
	require.NoError(t, err)

	var got []int32
	for {
		ok, err := cur.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, cur.Values()[0].(int32))
	}
	require.Equal(t, []int32{1, 2}, got)

	require.NoError(t, cur.Close(context.Background()))
}

func TestCursorRefillsOnPortalSuspended(t *testing.T) {
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
		fs.sendDataRow([][]byte{int4Bytes(1)})
		fs.sendPortalSuspended()
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Execute (refill)
		fs.readFrontend() // Sync
		fs.sendDataRow([][]byte{int4Bytes(2)})
		fs.sendCommandComplete("SELECT 2")
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Portal)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)

		fs.readFrontend() // Close(Statement)
		fs.readFrontend() // Sync
		fs.sendCloseComplete()
		fs.sendReady(wire.TxIdle)
	})

	stmt, err := sess.Prepare(context.Background(), "SELECT id FROM t")
	require.NoError(t, err)

	cur, err := stmt.Query(context.Background())
	require.NoError(t, err)

	var got []int32
	for {
		ok, err := cur.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, cur.Values()[0].(int32))
	}
	require.Equal(t, []int32{1, 2}, got)

	require.NoError(t, cur.Close(context.Background()))
	require.NoError(t, stmt.Close(context.Background()))
}

func TestNotificationDeliveredDuringPrepare(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		fs.readFrontend() // Parse
		fs.readFrontend() // Describe
		fs.readFrontend() // Sync
		fs.sendParseComplete()
		fs.sendNoData()
		fs.sendNotificationResponse(42, "chan", "payload")
		fs.sendReady(wire.TxIdle)
	})

	_, err := sess.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)

	select {
	case n := <-sess.Notifications():
		require.Equal(t, "chan", n.Channel)
		require.Equal(t, "payload", n.Payload)
	default:
		t.Fatal("expected a buffered notification")
	}
}
