// Package metrics records client-observable counters for a pgwire session:
// queries executed, rows fetched, reconnects and round-trip latency. It
// exists so the connect-time metrics.Recorder option has something concrete
// to wire into, following the gauge/counter vocabulary the wider example
// corpus already reaches for when instrumenting a long-lived network client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives the events a session wants observed. Noop() satisfies
// this with methods that do nothing, so instrumentation is always safe to
// call regardless of whether the caller opted in.
type Recorder interface {
	QueryExecuted(command string, duration time.Duration)
	RowsFetched(n int)
	Reconnected()
	NotificationReceived(channel string)
}

type noop struct{}

func (noop) QueryExecuted(string, time.Duration) {}
func (noop) RowsFetched(int)                     {}
func (noop) Reconnected()                        {}
func (noop) NotificationReceived(string)         {}

// Noop returns a Recorder that discards every event, the default for a
// connection opened without WithMetrics.
func Noop() Recorder { return noop{} }

// Prometheus records session events as Prometheus counters and a histogram,
// registered against reg (pass prometheus.DefaultRegisterer to publish on
// the process-wide default registry, or a fresh *prometheus.Registry to
// isolate a single connection's metrics).
type Prometheus struct {
	queries       *prometheus.CounterVec
	rowsFetched   prometheus.Counter
	reconnects    prometheus.Counter
	notifications *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// NewPrometheus builds and registers a Prometheus recorder under reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pgwire",
			Name:      "queries_total",
			Help:      "Queries executed, by statement SQL text.",
		}, []string{"command"}),
		rowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pgwire",
			Name:      "rows_fetched_total",
			Help:      "Rows fetched across all cursors.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pgwire",
			Name:      "reconnects_total",
			Help:      "Times the session re-established its connection.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pgwire",
			Name:      "notifications_total",
			Help:      "LISTEN/NOTIFY notifications received, by channel.",
		}, []string{"channel"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pgwire",
			Name:      "query_duration_seconds",
			Help:      "Query round-trip latency, by statement SQL text.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(p.queries, p.rowsFetched, p.reconnects, p.notifications, p.latency)
	return p
}

func (p *Prometheus) QueryExecuted(command string, duration time.Duration) {
	p.queries.WithLabelValues(command).Inc()
	p.latency.WithLabelValues(command).Observe(duration.Seconds())
}

func (p *Prometheus) RowsFetched(n int) { p.rowsFetched.Add(float64(n)) }
func (p *Prometheus) Reconnected()      { p.reconnects.Inc() }
func (p *Prometheus) NotificationReceived(channel string) {
	p.notifications.WithLabelValues(channel).Inc()
}
