// Package pgwire is a client implementation of the PostgreSQL frontend/
// backend wire protocol (v3.0): connection startup and SSL negotiation, MD5
// password authentication, the extended query protocol's prepared
// statement/portal/cursor model, COPY streaming, and LISTEN/NOTIFY.
package pgwire

import (
	"context"
	"crypto/md5"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-pgwire/pgwire/buffer"
	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/codes"
	"github.com/go-pgwire/pgwire/internal/metrics"
	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
	"github.com/google/uuid"
)

// Session is one logical connection to a PostgreSQL server: the socket, the
// framing reader/writer pair, negotiated parameters, and the counters used
// to name prepared statements and portals.
//
// A Session serializes every request-response round trip under a single
// mutex: the protocol has no multiplexing identifier, so a Parse, Bind or
// Execute issued by one goroutine must run to its Sync (or to the next
// blocking read) before another goroutine's message is allowed onto the
// wire.
type Session struct {
	cfg    config
	conn   net.Conn
	reader *buffer.Reader
	writer *buffer.Writer
	logger *slog.Logger
	rec    metrics.Recorder

	registry *codec.Registry

	dispatch sync.Mutex // strict request-response: no multiplexing ID
	unnamed  sync.Mutex // contention lock over the unnamed statement slot

	sessionID     string
	stmtCounter   atomic.Uint64
	portalCounter atomic.Uint64

	parameters map[string]string
	backendPID int32
	backendKey int32
	txStatus   wire.TransactionStatus

	notifications chan Notification

	closed atomic.Bool
}

// Notification is a single LISTEN/NOTIFY event delivered asynchronously
// between query round trips.
type Notification struct {
	PID     int32
	Channel string
	Payload string
}

// Connect dials, negotiates SSL, authenticates and runs the startup
// handshake, returning a ready-to-use Session.
func Connect(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.database == "" {
		cfg.database = cfg.user
	}
	if cfg.user == "" {
		return nil, pgerror.NewInterfaceError(codes.InvalidAuthorizationSpecification, "pgwire: a user must be provided")
	}

	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, pgerror.NewOperationalError(codes.ConnectionException, "pgwire: dial: %s", err)
	}

	sess := &Session{
		cfg:           cfg,
		conn:          conn,
		reader:        buffer.NewReader(conn),
		writer:        buffer.NewWriter(cfg.logger, conn),
		logger:        cfg.logger,
		rec:           cfg.metrics,
		sessionID:     uuid.NewString(),
		parameters:    make(map[string]string),
		notifications: make(chan Notification, 64),
	}

	if cfg.sslMode != SSLDisable {
		if err := sess.negotiateSSL(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if err := sess.startup(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	sess.registry = codec.NewRegistry(
		codec.NewTextCodec(sess.parameters["client_encoding"]),
		sess.parameters["integer_datetimes"] == "on",
	)

	return sess, nil
}

func dial(ctx context.Context, cfg config) (net.Conn, error) {
	var d net.Dialer
	if cfg.unixSocket != "" {
		return d.DialContext(ctx, "unix", cfg.unixSocket)
	}
	addr := net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
	return d.DialContext(ctx, "tcp", addr)
}

// negotiateSSL sends an SSLRequest ahead of the startup message and, if the
// server agrees, upgrades the connection in place. SSLPrefer silently falls
// back to plaintext when the server declines; SSLRequire fails the connect.
func (s *Session) negotiateSSL() error {
	s.writer.Start(0)
	s.writer.AddInt32(int32(wire.SSLRequestCode))
	if err := s.writer.End(); err != nil {
		return pgerror.NewOperationalError(codes.ConnectionException, "pgwire: send SSLRequest: %w", err)
	}

	reply, err := s.reader.Buffer.ReadByte()
	if err != nil {
		return pgerror.NewOperationalError(codes.ConnectionException, "pgwire: read SSLRequest reply: %w", err)
	}

	if reply == 'N' {
		if s.cfg.sslMode == SSLRequire {
			return pgerror.NewInterfaceError(codes.ConnectionException, "pgwire: server declined TLS and sslmode=require")
		}
		return nil
	}
	if reply != 'S' {
		return pgerror.NewInterfaceError(codes.ConnectionException, "pgwire: unexpected SSLRequest reply %q", reply)
	}

	tlsConn := tls.Client(s.conn, &tls.Config{ServerName: s.cfg.host, InsecureSkipVerify: s.cfg.sslMode != SSLRequire}) //nolint:gosec
	if err := tlsConn.Handshake(); err != nil {
		return pgerror.NewInterfaceError(codes.ConnectionException, "pgwire: TLS handshake: %w", err)
	}

	s.conn = tlsConn
	s.reader = buffer.NewReader(tlsConn)
	s.writer = buffer.NewWriter(s.logger, tlsConn)
	return nil
}

func (s *Session) startup(ctx context.Context) error {
	s.writer.Start(0)
	s.writer.AddInt32(int32(wire.ProtocolVersion))
	s.writer.AddString("user")
	s.writer.AddNullTerminate()
	s.writer.AddString(s.cfg.user)
	s.writer.AddNullTerminate()
	s.writer.AddString("database")
	s.writer.AddNullTerminate()
	s.writer.AddString(s.cfg.database)
	s.writer.AddNullTerminate()
	if s.cfg.applicationName != "" {
		s.writer.AddString("application_name")
		s.writer.AddNullTerminate()
		s.writer.AddString(s.cfg.applicationName)
		s.writer.AddNullTerminate()
	}
	s.writer.AddString("client_encoding")
	s.writer.AddNullTerminate()
	s.writer.AddString("UTF8")
	s.writer.AddNullTerminate()
	s.writer.AddByte(0)

	if err := s.writer.End(); err != nil {
		return pgerror.NewOperationalError(codes.ConnectionException, "pgwire: send startup message: %w", err)
	}

	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return pgerror.NewOperationalError(codes.ConnectionFailure, "pgwire: read startup response: %w", err)
		}

		switch tag {
		case wire.BackendAuth:
			done, err := s.handleAuth()
			if err != nil {
				return err
			}
			if done {
				continue
			}

		case wire.BackendParameterStatus:
			name, _ := s.reader.GetString()
			value, _ := s.reader.GetString()
			s.parameters[name] = value

		case wire.BackendBackendKeyData:
			pid, _ := s.reader.GetInt32()
			secret, _ := s.reader.GetInt32()
			s.backendPID, s.backendKey = pid, secret

		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return nil

		case wire.BackendErrorResponse:
			return s.readErrorResponse()

		case wire.BackendNoticeResponse:
			s.logNotice()

		default:
			return pgerror.NewInternalError("pgwire: unexpected message %q during startup", tag)
		}
	}
}

// handleAuth processes one AuthenticationXXX message, returning done=true
// once the server has accepted credentials and no further reply is needed.
func (s *Session) handleAuth() (bool, error) {
	code, err := s.reader.GetInt32()
	if err != nil {
		return false, pgerror.NewOperationalError(codes.ConnectionFailure, "pgwire: read auth code: %w", err)
	}

	switch code {
	case 0: // AuthenticationOk
		return true, nil

	case 5: // AuthenticationMD5Password
		saltBytes, err := s.reader.GetBytes(4)
		if err != nil {
			return false, pgerror.NewOperationalError(codes.ConnectionFailure, "pgwire: read md5 salt: %w", err)
		}
		var salt [4]byte
		copy(salt[:], saltBytes)

		hashed := md5Password(s.cfg.user, s.cfg.password, salt)
		s.writer.Start(wire.FrontendPassword)
		s.writer.AddString(hashed)
		s.writer.AddNullTerminate()
		if err := s.writer.End(); err != nil {
			return false, pgerror.NewOperationalError(codes.ConnectionException, "pgwire: send PasswordMessage: %w", err)
		}
		return false, nil

	case 2, 3, 4, 6, 7, 8, 9:
		return false, pgerror.NewNotSupportedError("pgwire: unsupported authentication method %d", code)

	default:
		return false, pgerror.NewInternalError("pgwire: unknown authentication request code %d", code)
	}
}

func md5Password(user, password string, salt [4]byte) string {
	inner := md5.Sum([]byte(password + user))
	innerHex := hex.EncodeToString(inner[:])

	outer := md5.New()
	outer.Write([]byte(innerHex)) //nolint:errcheck
	outer.Write(salt[:])          //nolint:errcheck

	return "md5" + hex.EncodeToString(outer.Sum(nil))
}

func (s *Session) logNotice() {
	fields := s.readFieldedMessage()
	s.logger.Debug("<- server notice", slog.String("message", fields['M']))
}

// handleParameterStatus applies a mid-session ParameterStatus to s.parameters
// and, when the changed name feeds the codec registry's construction
// (client_encoding's text codec or integer_datetimes' timestamp wire
// format), rebuilds the registry so subsequent Bind/DataRow traffic follows
// the server's new reporting. A bare SET of an unrelated parameter (e.g.
// TimeZone) only updates s.parameters.
func (s *Session) handleParameterStatus() {
	name, _ := s.reader.GetString()
	value, _ := s.reader.GetString()
	s.parameters[name] = value

	switch name {
	case "client_encoding", "integer_datetimes":
		s.registry = codec.NewRegistry(
			codec.NewTextCodec(s.parameters["client_encoding"]),
			s.parameters["integer_datetimes"] == "on",
		)
	}
}

// readErrorResponse parses an ErrorResponse's field dictionary into the
// client error taxonomy.
func (s *Session) readErrorResponse() error {
	fields := s.readFieldedMessage()
	return pgerror.FromServerError(codes.Code(fields['C']), pgerror.Severity(fields['S']), fields['M'])
}

// readFieldedMessage reads the repeated (byte-tag, NUL-terminated string)
// pairs shared by ErrorResponse and NoticeResponse until the terminating
// NUL byte.
func (s *Session) readFieldedMessage() map[byte]string {
	fields := make(map[byte]string)
	for {
		tag, err := s.reader.GetByte()
		if err != nil || tag == 0 {
			return fields
		}
		value, err := s.reader.GetString()
		if err != nil {
			return fields
		}
		fields[tag] = value
	}
}

// Close terminates the session, sending a Terminate message first when the
// connection is still healthy.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.dispatch.Lock()
	s.writer.Start(wire.FrontendTerminate)
	_ = s.writer.End() //nolint:errcheck // best-effort on a connection we're closing anyway
	s.dispatch.Unlock()

	close(s.notifications)
	return s.conn.Close()
}

// Notifications returns the channel LISTEN/NOTIFY events are delivered on.
func (s *Session) Notifications() <-chan Notification { return s.notifications }

// nextStatementName returns a fresh, session-scoped prepared statement name.
func (s *Session) nextStatementName() string {
	return fmt.Sprintf("%s_stmt%d", s.sessionID, s.stmtCounter.Add(1))
}

// nextPortalName returns a fresh, session-scoped portal name.
func (s *Session) nextPortalName() string {
	return fmt.Sprintf("%s_portal%d", s.sessionID, s.portalCounter.Add(1))
}
