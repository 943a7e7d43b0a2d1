package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type session struct {
	group   *QueueGroup
	ctx     context.Context
	span    trace.Span
	started time.Time

	settling bool
}

// Flow is the scheduler. It owns a stack of sessions, each with its own
// QueueGroup, plus the closing lane shared by all of them.
type Flow struct {
	cfg Config

	sessions []*session
	closing  *Queue
	paused   bool

	handler      ErrorHandler
	laneHandlers map[string]ErrorHandler

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

func NewFlow(cfg Config, opts ...Option) *Flow {
	o := buildOptions(opts)

	f := &Flow{
		cfg:          cfg,
		sessions:     make([]*session, 0),
		laneHandlers: make(map[string]ErrorHandler),
		logger:       o.logger,
		metrics:      o.metrics,
		tracer:       o.tracer,
	}

	f.closing = NewQueue(cfg.ClosingLane)
	f.closing.metrics = f.metrics
	f.SetErrorHandler(o.handler)

	return f
}

func (f *Flow) Config() Config { return f.cfg }

func (f *Flow) Lanes() []string { return f.cfg.Lanes }

func (f *Flow) Depth() int { return len(f.sessions) }

func (f *Flow) InSession() bool { return len(f.sessions) > 0 }

// SetErrorHandler installs the scheduler level fallback for listener failures.
func (f *Flow) SetErrorHandler(fn ErrorHandler) {
	f.handler = fn

	f.closing.fallback = nil
	if fn != nil {
		f.closing.fallback = f.handleError
	}
}

// SetLaneErrorHandler installs a handler for one lane of every future session.
func (f *Flow) SetLaneErrorHandler(lane string, fn ErrorHandler) {
	if lane == f.cfg.ClosingLane {
		f.closing.OnError(fn)
		return
	}

	f.laneHandlers[lane] = fn
}

func (f *Flow) handleError(err *ListenerError) {
	f.logger.Warn("listener failed", "lane", err.Lane, "callback", err.Callback, "error", err.Err)
	f.handler(err)
}

// Pause drops every new enqueue until Resume. Open sessions stay open.
func (f *Flow) Pause() { f.paused = true }

func (f *Flow) Resume() { f.paused = false }

func (f *Flow) Paused() bool { return f.paused }

func (f *Flow) BeginSession() {
	group := NewQueueGroup(f.cfg.Lanes)
	for _, q := range group.Lanes() {
		q.metrics = f.metrics
		q.handler = f.laneHandlers[q.Name()]
		if f.handler != nil {
			q.fallback = f.handleError
		}
	}

	parent := context.Background()
	if len(f.sessions) > 0 {
		parent = f.sessions[len(f.sessions)-1].ctx
	}

	depth := len(f.sessions) + 1
	ctx, span := f.tracer.Start(parent, "proact.session",
		trace.WithAttributes(attribute.Int("proact.session.depth", depth)),
	)

	f.sessions = append(f.sessions, &session{
		group:   group,
		ctx:     ctx,
		span:    span,
		started: time.Now(),
	})

	f.metrics.depth(depth)
	f.logger.Debug("session begin", "depth", depth)
}

// EndSession drains the innermost session and the closing lane, then pops it.
func (f *Flow) EndSession() error {
	if len(f.sessions) == 0 {
		return ErrNoSession
	}

	s := f.sessions[len(f.sessions)-1]
	if s.settling {
		return fmt.Errorf("%w: session ended from inside its own drain", ErrInvalidState)
	}

	s.settling = true
	err := f.settle(s)

	f.sessions = f.sessions[:len(f.sessions)-1]

	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()

	f.metrics.depth(len(f.sessions))
	f.metrics.observeDrain(time.Since(s.started))
	f.logger.Debug("session end", "depth", len(f.sessions)+1, "error", err)

	return err
}

func (f *Flow) settle(s *session) error {
	for {
		if err := s.group.Drain(""); err != nil {
			return err
		}

		if err := f.closing.Drain(false); err != nil {
			return err
		}

		if !s.group.Empty() {
			continue
		}

		// an enclosing session is already draining the closing lane and will
		// pick up what is left there
		if f.closing.Empty() || f.closing.draining {
			return nil
		}
	}
}

// RunBatch runs fn inside its own session. The session is closed even when
// fn panics; the panic is raised again afterwards.
func (f *Flow) RunBatch(fn func()) (err error) {
	f.BeginSession()

	defer func() {
		r := recover()
		endErr := f.EndSession()
		if r != nil {
			panic(r)
		}
		err = endErr
	}()

	fn()

	return nil
}

// Call runs fn right away with the failure routing of a drained entry.
func (f *Flow) Call(lane, name string, fn func() error) error {
	err := guard(fn)
	if err == nil {
		return nil
	}

	var tagged *ListenerError
	if errors.As(err, &tagged) {
		return err
	}

	lerr := &ListenerError{Lane: lane, Callback: name, Err: err}
	f.metrics.failed(lane)

	switch {
	case f.laneHandlers[lane] != nil:
		f.laneHandlers[lane](lerr)
	case f.handler != nil:
		f.handleError(lerr)
	default:
		return lerr
	}

	return nil
}

func (f *Flow) Enqueue(lane string, receiver any, cb *Callback, args ...any) error {
	return f.enqueue(lane, false, receiver, cb, args)
}

func (f *Flow) EnqueueOnce(lane string, receiver any, cb *Callback, args ...any) error {
	return f.enqueue(lane, true, receiver, cb, args)
}

// EnqueueClosing schedules a one-time teardown. The closing lane is always
// active, so no session is required.
func (f *Flow) EnqueueClosing(receiver any, cb *Callback, args ...any) {
	f.closing.EnqueueOnce(receiver, cb, args...)
}

func (f *Flow) enqueue(lane string, once bool, receiver any, cb *Callback, args []any) error {
	if f.paused {
		f.metrics.dropped()
		return nil
	}

	if len(f.sessions) == 0 {
		return ErrNoSession
	}

	if lane == "" {
		lane = f.cfg.DefaultLane
	}

	q, ok := f.sessions[len(f.sessions)-1].group.Lane(lane)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLane, lane)
	}

	if once {
		q.EnqueueOnce(receiver, cb, args...)
	} else {
		q.Enqueue(receiver, cb, args...)
	}

	return nil
}
