package internal

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/AnatoleLucet/proact"

type options struct {
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	handler ErrorHandler
}

// Option configures a Runtime and its Flow.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithErrorHandler routes listener failures to fn instead of aborting the drain.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) { o.handler = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
