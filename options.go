package pgwire

import (
	"log/slog"
	"time"

	"github.com/go-pgwire/pgwire/internal/metrics"
	"github.com/go-pgwire/pgwire/placeholder"
)

// SSLMode selects how a connection negotiates TLS with the server, mirroring
// libpq's sslmode values.
type SSLMode string

const (
	SSLDisable SSLMode = "disable"
	SSLPrefer  SSLMode = "prefer"
	SSLRequire SSLMode = "require"
)

// config collects every Connect option into the values Connect and the
// handshake need. It has no exported surface: callers only ever touch it
// through Option functions.
type config struct {
	host            string
	port            int
	unixSocket      string
	database        string
	user            string
	password        string
	socketTimeout   time.Duration
	sslMode         SSLMode
	applicationName string
	rowCacheSize    int
	logger          *slog.Logger
	metrics         metrics.Recorder
	paramStyle      placeholder.Style
}

func defaultConfig() config {
	return config{
		port:         5432,
		sslMode:      SSLPrefer,
		rowCacheSize: 100,
		logger:       slog.Default(),
		metrics:      metrics.Noop(),
		paramStyle:   placeholder.Format,
	}
}

// Option configures a Connect call. Options apply in the order given.
type Option func(*config)

// WithHost sets the TCP host to dial. Mutually exclusive with WithUnixSocket.
func WithHost(host string) Option { return func(c *config) { c.host = host } }

// WithPort sets the TCP port to dial, default 5432.
func WithPort(port int) Option { return func(c *config) { c.port = port } }

// WithUnixSocket dials a Unix domain socket at path instead of TCP.
func WithUnixSocket(path string) Option { return func(c *config) { c.unixSocket = path } }

// WithDatabase selects the database to connect to, default equal to the user.
func WithDatabase(database string) Option { return func(c *config) { c.database = database } }

// WithUser sets the connecting role name.
func WithUser(user string) Option { return func(c *config) { c.user = user } }

// WithPassword sets the password used for MD5 authentication.
func WithPassword(password string) Option { return func(c *config) { c.password = password } }

// WithSocketTimeout records d in the session's configuration. No read or
// write deadline is set on the connection from it, so socket reads and
// writes block without a time limit.
func WithSocketTimeout(d time.Duration) Option { return func(c *config) { c.socketTimeout = d } }

// WithSSLMode selects the TLS negotiation behavior, default SSLPrefer.
func WithSSLMode(mode SSLMode) Option { return func(c *config) { c.sslMode = mode } }

// WithApplicationName sets the application_name startup parameter.
func WithApplicationName(name string) Option {
	return func(c *config) { c.applicationName = name }
}

// WithRowCacheSize sets how many rows a portal prefetches per Execute,
// default 100.
func WithRowCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.rowCacheSize = n
		}
	}
}

// WithLogger sets the structured logger used for connection diagnostics,
// default slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the Recorder instrumented with session events, default
// metrics.Noop().
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *config) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// WithParamStyle selects the placeholder dialect Prepare/Query/Exec accept
// in caller SQL, default placeholder.Format.
func WithParamStyle(style placeholder.Style) Option {
	return func(c *config) { c.paramStyle = style }
}
