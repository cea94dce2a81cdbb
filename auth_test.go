package pgwire

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net"
	"testing"

	"github.com/go-pgwire/pgwire/buffer"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/stretchr/testify/require"
)

func TestMD5AuthComputesPasswordMessage(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	fs := newFakeServer(t, server)
	salt := [4]byte{0x01, 0x02, 0x03, 0x04}

	var gotPassword string
	done := make(chan struct{})
	go func() {
		defer close(done)
		fs.readStartup()
		fs.sendAuthMD5(salt)

		tag, body := fs.readFrontendBody()
		require.Equal(t, wire.FrontendPassword, tag)
		gotPassword = string(body[:len(body)-1]) // drop the NUL terminator

		fs.sendAuthOK()
		fs.sendParameterStatus("client_encoding", "UTF8")
		fs.sendParameterStatus("integer_datetimes", "on")
		fs.sendBackendKeyData(1234, 5678)
		fs.sendReady(wire.TxIdle)
	}()

	cfg := defaultConfig()
	cfg.user = "tester"
	cfg.database = "tester"
	cfg.password = "secret"

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
	<-done

	inner := md5.Sum([]byte("secret" + "tester"))
	innerHex := hex.EncodeToString(inner[:])
	outer := md5.New()
	outer.Write([]byte(innerHex))
	outer.Write(salt[:])
	want := "md5" + hex.EncodeToString(outer.Sum(nil))

	require.Equal(t, want, gotPassword)
}
