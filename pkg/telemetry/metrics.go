package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Route label values for selections that have no pattern.
const (
	routeDefault = "(default)"
	routeNone    = "(none)"
)

// Metrics records transition and connection metrics. It implements
// transition.Observer and the websocket bridge's Recorder.
//
// Metrics collected:
//   - navrouter_selections_total: route selections by route and outcome
//   - navrouter_loads_total: committed pendency episodes by status
//   - navrouter_load_duration_seconds: time from pending to commit
//   - navrouter_pending_transitions: episodes currently pending
//   - navrouter_discarded_total: abandoned episodes and stale signals by reason
//   - navrouter_connections: open thin-client connections
//   - navrouter_protocol_errors_total: rejected client messages by kind
type Metrics struct {
	selections     *prometheus.CounterVec
	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	pending        prometheus.Gauge
	discarded      *prometheus.CounterVec
	connections    prometheus.Gauge
	protocolErrors *prometheus.CounterVec
}

// NewMetrics registers the collectors with the configured registry.
// Registering twice with the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		selections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selections_total",
			Help:        "Total number of route selections",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loads_total",
			Help:        "Total number of committed pendency episodes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_duration_seconds",
			Help:        "Time from a transition becoming pending to its commit",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_transitions",
			Help:        "Number of transitions waiting on a signal",
			ConstLabels: config.ConstLabels,
		}),

		discarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "discarded_total",
			Help:        "Total number of superseded episodes and stale signals",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections",
			Help:        "Number of open thin-client connections",
			ConstLabels: config.ConstLabels,
		}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Total number of rejected thin-client messages",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// Selected implements transition.Observer.
func (m *Metrics) Selected(_ string, sel router.Selection) {
	route, outcome := routeLabel(sel)
	m.selections.WithLabelValues(route, outcome).Inc()
}

// LoadStarted implements transition.Observer.
func (m *Metrics) LoadStarted(*transition.Token) {
	m.pending.Inc()
}

// LoadEnded implements transition.Observer.
func (m *Metrics) LoadEnded(_ *transition.Token, elapsed time.Duration, err error) {
	m.pending.Dec()
	m.loadDuration.Observe(elapsed.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.loads.WithLabelValues(status).Inc()
}

// Discarded implements transition.Observer.
func (m *Metrics) Discarded(_ *transition.Token, reason string) {
	if reason == transition.DiscardSuperseded {
		m.pending.Dec()
	}
	m.discarded.WithLabelValues(reason).Inc()
}

// ConnectionOpened records a new thin-client connection.
func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
}

// ConnectionClosed records a closed thin-client connection.
func (m *Metrics) ConnectionClosed() {
	m.connections.Dec()
}

// ProtocolError records a rejected client message.
func (m *Metrics) ProtocolError(kind string) {
	m.protocolErrors.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g. A nil g serves the default
// gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// routeLabel keeps label cardinality bounded by the declared patterns.
func routeLabel(sel router.Selection) (route, outcome string) {
	switch {
	case sel.Empty():
		return routeNone, "none"
	case sel.Entry.Default:
		if sel.Entry.Pattern == "" {
			return routeDefault, "default"
		}
		return sel.Entry.Pattern, "default"
	default:
		return sel.Entry.Pattern, "match"
	}
}

var _ transition.Observer = (*Metrics)(nil)
