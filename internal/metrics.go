package internal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the scheduler metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "proact").
	Namespace string

	Subsystem string

	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for session drain duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics holds the scheduler collectors. A nil *Metrics records nothing.
type Metrics struct {
	enqueuedTotal  *prometheus.CounterVec
	collapsedTotal *prometheus.CounterVec
	executedTotal  *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	sessionDepth   prometheus.Gauge
	drainDuration  prometheus.Histogram
}

func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "proact",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		enqueuedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "enqueued_total",
			Help:        "Total number of callbacks appended to a lane",
			ConstLabels: config.ConstLabels,
		}, []string{"lane"}),

		collapsedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collapsed_total",
			Help:        "Total number of enqueues folded into an existing entry",
			ConstLabels: config.ConstLabels,
		}, []string{"lane"}),

		executedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "executed_total",
			Help:        "Total number of callbacks executed by a drain",
			ConstLabels: config.ConstLabels,
		}, []string{"lane"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_errors_total",
			Help:        "Total number of failed callbacks",
			ConstLabels: config.ConstLabels,
		}, []string{"lane"}),

		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dropped_total",
			Help:        "Total number of enqueues dropped while the scheduler was paused",
			ConstLabels: config.ConstLabels,
		}),

		sessionDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_depth",
			Help:        "Number of nested scheduler sessions currently open",
			ConstLabels: config.ConstLabels,
		}),

		drainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_duration_seconds",
			Help:        "Time between the start of a session and the end of its drain",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) enqueued(lane string) {
	if m != nil {
		m.enqueuedTotal.WithLabelValues(lane).Inc()
	}
}

func (m *Metrics) collapsed(lane string) {
	if m != nil {
		m.collapsedTotal.WithLabelValues(lane).Inc()
	}
}

func (m *Metrics) executed(lane string) {
	if m != nil {
		m.executedTotal.WithLabelValues(lane).Inc()
	}
}

func (m *Metrics) failed(lane string) {
	if m != nil {
		m.errorsTotal.WithLabelValues(lane).Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.droppedTotal.Inc()
	}
}

func (m *Metrics) depth(n int) {
	if m != nil {
		m.sessionDepth.Set(float64(n))
	}
}

func (m *Metrics) observeDrain(d time.Duration) {
	if m != nil {
		m.drainDuration.Observe(d.Seconds())
	}
}
