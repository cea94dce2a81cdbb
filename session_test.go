package pgwire

import (
	"context"
	"net"
	"testing"

	"github.com/go-pgwire/pgwire/buffer"
	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

// newTestSession wires up a Session directly over a net.Pipe, bypassing
// Connect's dial step, and runs fn against the server side of the pipe on a
// background goroutine to complete the session's handshake.
func newTestSession(t *testing.T, fn func(*fakeServer)) (*Session, *fakeServer) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	fs := newFakeServer(t, server)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(fs)
	}()

	cfg := defaultConfig()
	cfg.user = "tester"
	cfg.database = "tester"

	sess := &Session{
		cfg:           cfg,
		conn:          client,
		reader:        buffer.NewReader(client),
		writer:        buffer.NewWriter(nil, client),
		logger:        cfg.logger,
		rec:           cfg.metrics,
		sessionID:     "test",
		parameters:    make(map[string]string),
		notifications: make(chan Notification, 64),
	}

	require.NoError(t, sess.startup(context.Background()))
	sess.registry = codec.NewRegistry(
		codec.NewTextCodec(sess.parameters["client_encoding"]),
		sess.parameters["integer_datetimes"] == "on",
	)

	<-done
	return sess, fs
}

func TestStartupNegotiatesParameters(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()
	})

	require.Equal(t, "UTF8", sess.parameters["client_encoding"])
	require.Equal(t, "on", sess.parameters["integer_datetimes"])
	require.Equal(t, int32(1234), sess.backendPID)
}

func TestPrepareParsesAndDescribes(t *testing.T) {
	sess, _ := newTestSession(t, func(fs *fakeServer) {
		fs.runStartup()

		fs.readFrontend() // Parse
		fs.readFrontend() // Describe
		fs.readFrontend() // Sync

		fs.sendParseComplete()
		fs.sendRowDescription([]string{"id"}, []int32{int32(codec.OIDInt4)})
		fs.sendReady(wire.TxIdle)
	})

	stmt, err := sess.Prepare(context.Background(), "SELECT id FROM t WHERE id = $1")
	require.NoError(t, err)
	require.Len(t, stmt.Fields(), 1)
	require.Equal(t, "id", stmt.Fields()[0].Name)
}
