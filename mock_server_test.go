package pgwire

import (
	"net"
	"testing"

	"github.com/go-pgwire/pgwire/buffer"
	"github.com/go-pgwire/pgwire/wire"
)

// fakeServer drives the server side of a net.Pipe connection using the same
// buffer.Reader/Writer primitives the client uses, so tests exercise the
// real framing code on both ends.
type fakeServer struct {
	t      *testing.T
	conn   net.Conn
	reader *buffer.Reader
	writer *buffer.Writer
}

func newFakeServer(t *testing.T, conn net.Conn) *fakeServer {
	t.Helper()
	return &fakeServer{
		t:      t,
		conn:   conn,
		reader: buffer.NewReader(conn),
		writer: buffer.NewWriter(nil, conn),
	}
}

// readStartup reads the untagged StartupMessage frame a fresh Session sends
// first (protocol version + key/value parameters terminated by a NUL byte).
func (s *fakeServer) readStartup() {
	s.t.Helper()
	if _, err := s.reader.ReadUntypedMsg(); err != nil {
		s.t.Fatalf("read startup message: %s", err)
	}
}

// readFrontend reads the next tagged message the client sent, returning its
// tag and leaving the reader positioned at the start of its body.
func (s *fakeServer) readFrontend() wire.Frontend {
	s.t.Helper()
	b, err := s.reader.Buffer.ReadByte()
	if err != nil {
		s.t.Fatalf("read frontend tag: %s", err)
	}
	if _, err := s.reader.ReadUntypedMsg(); err != nil {
		s.t.Fatalf("read frontend body: %s", err)
	}
	return wire.Frontend(b)
}

// readFrontendBody is readFrontend plus a copy of the message body, for
// tests that need to inspect what the client actually sent.
func (s *fakeServer) readFrontendBody() (wire.Frontend, []byte) {
	s.t.Helper()
	b, err := s.reader.Buffer.ReadByte()
	if err != nil {
		s.t.Fatalf("read frontend tag: %s", err)
	}
	if _, err := s.reader.ReadUntypedMsg(); err != nil {
		s.t.Fatalf("read frontend body: %s", err)
	}
	body := make([]byte, len(s.reader.Msg))
	copy(body, s.reader.Msg)
	return wire.Frontend(b), body
}

func (s *fakeServer) sendAuthOK() {
	s.writer.Start(wire.Frontend(wire.BackendAuth))
	s.writer.AddInt32(0)
	s.end()
}

func (s *fakeServer) sendAuthMD5(salt [4]byte) {
	s.writer.Start(wire.Frontend(wire.BackendAuth))
	s.writer.AddInt32(5)
	s.writer.AddBytes(salt[:])
	s.end()
}

func (s *fakeServer) sendParameterStatus(name, value string) {
	s.writer.Start(wire.Frontend(wire.BackendParameterStatus))
	s.writer.AddString(name)
	s.writer.AddNullTerminate()
	s.writer.AddString(value)
	s.writer.AddNullTerminate()
	s.end()
}

func (s *fakeServer) sendBackendKeyData(pid, secret int32) {
	s.writer.Start(wire.Frontend(wire.BackendBackendKeyData))
	s.writer.AddInt32(pid)
	s.writer.AddInt32(secret)
	s.end()
}

func (s *fakeServer) sendReady(status wire.TransactionStatus) {
	s.writer.Start(wire.Frontend(wire.BackendReady))
	s.writer.AddByte(byte(status))
	s.end()
}

func (s *fakeServer) sendParseComplete() {
	s.writer.Start(wire.Frontend(wire.BackendParseComplete))
	s.end()
}

func (s *fakeServer) sendNoData() {
	s.writer.Start(wire.Frontend(wire.BackendNoData))
	s.end()
}

func (s *fakeServer) sendRowDescription(names []string, oids []int32) {
	s.writer.Start(wire.Frontend(wire.BackendRowDescription))
	s.writer.AddInt16(int16(len(names)))
	for i, name := range names {
		s.writer.AddString(name)
		s.writer.AddNullTerminate()
		s.writer.AddInt32(0)       // table OID
		s.writer.AddInt16(0)       // column attr
		s.writer.AddInt32(oids[i]) // type OID
		s.writer.AddInt16(-1)      // type size
		s.writer.AddInt32(-1)      // type modifier
		s.writer.AddInt16(0)       // format (text)
	}
	s.end()
}

func (s *fakeServer) sendBindComplete() {
	s.writer.Start(wire.Frontend(wire.BackendBindComplete))
	s.end()
}

func (s *fakeServer) sendDataRow(cols [][]byte) {
	s.writer.Start(wire.Frontend(wire.BackendDataRow))
	s.writer.AddInt16(int16(len(cols)))
	for _, c := range cols {
		if c == nil {
			s.writer.AddInt32(-1)
			continue
		}
		s.writer.AddInt32(int32(len(c)))
		s.writer.AddBytes(c)
	}
	s.end()
}

func (s *fakeServer) sendCommandComplete(tag string) {
	s.writer.Start(wire.Frontend(wire.BackendCommandComplete))
	s.writer.AddString(tag)
	s.writer.AddNullTerminate()
	s.end()
}

func (s *fakeServer) sendPortalSuspended() {
	s.writer.Start(wire.Frontend(wire.BackendPortalSuspended))
	s.end()
}

func (s *fakeServer) sendCloseComplete() {
	s.writer.Start(wire.Frontend(wire.BackendCloseComplete))
	s.end()
}

func (s *fakeServer) sendErrorResponse(code, severity, message string) {
	s.writer.Start(wire.Frontend(wire.BackendErrorResponse))
	s.writer.AddByte('C')
	s.writer.AddString(code)
	s.writer.AddNullTerminate()
	s.writer.AddByte('S')
	s.writer.AddString(severity)
	s.writer.AddNullTerminate()
	s.writer.AddByte('M')
	s.writer.AddString(message)
	s.writer.AddNullTerminate()
	s.writer.AddByte(0)
	s.end()
}

func (s *fakeServer) sendNotificationResponse(pid int32, channel, payload string) {
	s.writer.Start(wire.Frontend(wire.BackendNotificationResponse))
	s.writer.AddInt32(pid)
	s.writer.AddString(channel)
	s.writer.AddNullTerminate()
	s.writer.AddString(payload)
	s.writer.AddNullTerminate()
	s.end()
}

func (s *fakeServer) end() {
	s.t.Helper()
	if err := s.writer.End(); err != nil {
		s.t.Fatalf("write message: %s", err)
	}
}

// runStartup completes a plain, no-auth startup handshake: the client sends
// its StartupMessage, the server replies with AuthenticationOk, a couple of
// ParameterStatus entries, BackendKeyData and ReadyForQuery.
func (s *fakeServer) runStartup() {
	s.readStartup()
	s.sendAuthOK()
	s.sendParameterStatus("client_encoding", "UTF8")
	s.sendParameterStatus("integer_datetimes", "on")
	s.sendBackendKeyData(1234, 5678)
	s.sendReady(wire.TxIdle)
}
