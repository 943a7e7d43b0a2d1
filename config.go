package proact

import "github.com/AnatoleLucet/proact/internal"

type (
	Config        = internal.Config
	Option        = internal.Option
	Metrics       = internal.Metrics
	MetricsOption = internal.MetricsOption
)

var (
	DefaultConfig = internal.DefaultConfig
	ParseConfig   = internal.ParseConfig
	LoadConfig    = internal.LoadConfig
)

var (
	WithLogger       = internal.WithLogger
	WithMetrics      = internal.WithMetrics
	WithTracer       = internal.WithTracer
	WithErrorHandler = internal.WithErrorHandler
)

var (
	NewMetrics      = internal.NewMetrics
	WithNamespace   = internal.WithNamespace
	WithSubsystem   = internal.WithSubsystem
	WithConstLabels = internal.WithConstLabels
	WithBuckets     = internal.WithBuckets
	WithRegistry    = internal.WithRegistry
)

// Configure installs a fresh runtime built from cfg for the calling
// goroutine. Values created before the call keep using the previous one.
func Configure(cfg Config, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	internal.SetRuntime(internal.NewRuntime(cfg, opts...))
	return nil
}

// Reset drops the runtime of the calling goroutine. The next call creates
// one from DefaultConfig.
func Reset() {
	internal.SetRuntime(nil)
}

