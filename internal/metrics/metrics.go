// Package metrics exposes Prometheus counters for the annotation workbench.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus instrument the app records into.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WebsocketClients    prometheus.Gauge

	CommandsTotal     *prometheus.CounterVec
	CommandStackDepth *prometheus.GaugeVec

	ReconcilesTotal   prometheus.Counter
	ReconcileDuration prometheus.Histogram

	AutosaveFlushesTotal prometheus.Counter
	JobsStartedTotal     *prometheus.CounterVec
}

// New registers all instruments with reg. Passing nil uses the default
// registerer; tests pass their own registry so repeated New calls do not
// collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhord_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordhord_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.WebsocketClients = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordhord_websocket_clients",
			Help: "Connected event stream clients",
		},
	)

	m.CommandsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhord_commands_total",
			Help: "Executed, undone and redone commands",
		},
		[]string{"action", "status"},
	)
	m.CommandStackDepth = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wordhord_command_stack_depth",
			Help: "Commands held on the undo and redo stacks",
		},
		[]string{"stack"},
	)

	m.ReconcilesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wordhord_reconciles_total",
			Help: "Sentence edits run through token reconciliation",
		},
	)
	m.ReconcileDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordhord_reconcile_duration_seconds",
			Help:    "Duration of token reconciliation in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	m.AutosaveFlushesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wordhord_autosave_flushes_total",
			Help: "Completed autosave flushes",
		},
	)
	m.JobsStartedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordhord_jobs_started_total",
			Help: "Background jobs queued by type",
		},
		[]string{"type"},
	)

	return m
}

// RecordHTTP records one finished API request.
func (m *Metrics) RecordHTTP(method, path, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordCommand records a command stack action and the resulting depths.
func (m *Metrics) RecordCommand(action, status string, done, undone int) {
	m.CommandsTotal.WithLabelValues(action, status).Inc()
	m.CommandStackDepth.WithLabelValues("done").Set(float64(done))
	m.CommandStackDepth.WithLabelValues("undone").Set(float64(undone))
}

// RecordReconcile records one reconciliation pass.
func (m *Metrics) RecordReconcile(d time.Duration) {
	m.ReconcilesTotal.Inc()
	m.ReconcileDuration.Observe(d.Seconds())
}
