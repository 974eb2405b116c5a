package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Arbitration metrics
	Admissions        *prometheus.CounterVec
	Commands          *prometheus.CounterVec
	MailboxOverwrites prometheus.Counter
	StackDepth        *prometheus.GaugeVec
	LedgerPending     prometheus.Gauge

	// Notification metrics
	Notifications *prometheus.CounterVec
	Subscribers   *prometheus.GaugeVec

	// Transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	GRPCCalls       *prometheus.CounterVec
	GRPCDuration    *prometheus.HistogramVec

	gatherer  prometheus.Gatherer
	startTime time.Time
}

// NewMetrics registers all collectors on reg. A *prometheus.Registry is both
// Registerer and Gatherer and is what callers normally pass.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		gatherer:  reg,
		startTime: time.Now(),

		Admissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modemanager_admissions_total",
				Help: "ChangeMode requests by admission result",
			},
			[]string{"result"},
		),
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modemanager_commands_total",
				Help: "Commands processed by the arbitration worker",
			},
			[]string{"state"},
		),
		MailboxOverwrites: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modemanager_mailbox_overwrites_total",
				Help: "Commands replaced in the mailbox before the worker picked them up",
			},
		),
		StackDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modemanager_stack_depth",
				Help: "Number of holders in each resource stack",
			},
			[]string{"resource"},
		),
		LedgerPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modemanager_ledger_pending",
				Help: "Applications with unacknowledged resource releases",
			},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modemanager_notifications_total",
				Help: "Outbound notifications by signal and delivery status",
			},
			[]string{"signal", "status"},
		),
		Subscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modemanager_stream_subscribers",
				Help: "Live notification stream subscribers",
			},
			[]string{"transport"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modemanager_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modemanager_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		GRPCCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modemanager_grpc_calls_total",
				Help: "Total number of gRPC calls",
			},
			[]string{"method", "code"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modemanager_grpc_duration_seconds",
				Help:    "gRPC call duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "modemanager_uptime_seconds",
			Help: "Mode manager uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordAdmission records the outcome of a ChangeMode request
func (m *Metrics) RecordAdmission(admitted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if admitted {
		result = "admitted"
	}
	m.Admissions.WithLabelValues(result).Inc()
}

// RecordCommand records a command processed by the worker
func (m *Metrics) RecordCommand(state string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(state).Inc()
}

// IncMailboxOverwrites counts a command replaced before processing
func (m *Metrics) IncMailboxOverwrites() {
	if m == nil {
		return
	}
	m.MailboxOverwrites.Inc()
}

// SetStackDepth sets the depth of one resource stack
func (m *Metrics) SetStackDepth(resource string, depth int) {
	if m == nil {
		return
	}
	m.StackDepth.WithLabelValues(resource).Set(float64(depth))
}

// SetLedgerPending sets the number of applications with pending releases
func (m *Metrics) SetLedgerPending(count int) {
	if m == nil {
		return
	}
	m.LedgerPending.Set(float64(count))
}

// RecordNotification records one outbound notification
func (m *Metrics) RecordNotification(signal, status string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(signal, status).Inc()
}

// AddSubscribers adjusts the live subscriber gauge of a transport
func (m *Metrics) AddSubscribers(transport string, delta int) {
	if m == nil {
		return
	}
	m.Subscribers.WithLabelValues(transport).Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGRPCCall records a gRPC call
func (m *Metrics) RecordGRPCCall(method, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GRPCCalls.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(duration.Seconds())
}
