package internal

import (
	"errors"
	"log/slog"
)

// Runtime bundles the scheduler and the dependency tracker used by every
// actor created through it. A runtime is confined to one goroutine.
type Runtime struct {
	cfg Config

	flow    *Flow
	tracker *Tracker
	logger  *slog.Logger
}

func NewRuntime(cfg Config, opts ...Option) *Runtime {
	o := buildOptions(opts)

	return &Runtime{
		cfg:     cfg,
		flow:    NewFlow(cfg, opts...),
		tracker: NewTracker(),
		logger:  o.logger,
	}
}

func (r *Runtime) Config() Config { return r.cfg }

func (r *Runtime) Flow() *Flow { return r.flow }

func (r *Runtime) Tracker() *Tracker { return r.tracker }

func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Batch runs fn in a scheduler session; every notification it triggers is
// delivered once fn returns.
func (r *Runtime) Batch(fn func()) error {
	return r.flow.RunBatch(fn)
}

func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// inSession runs fn inside the current session, opening one just for fn when
// none is active.
func (r *Runtime) inSession(fn func() error) error {
	if r.flow.InSession() {
		return fn()
	}

	r.flow.BeginSession()
	err := fn()
	endErr := r.flow.EndSession()

	return errors.Join(err, endErr)
}
