package internal

import "errors"

// Callback is a named deferred function. The pointer is its identity: two
// entries share a dedup slot only when they hold the same *Callback.
type Callback struct {
	Name string
	Fn   func(receiver any, args []any) error
}

func NewCallback(name string, fn func(receiver any, args []any) error) *Callback {
	return &Callback{Name: name, Fn: fn}
}

// ErrorHandler receives listener failures instead of the drain caller.
type ErrorHandler func(err *ListenerError)

type entry struct {
	receiver any
	callback *Callback
	args     []any
	priority int
}

// Queue is one lane of deferred callbacks, drained in priority passes.
// Receivers must be comparable values (pointers in practice).
type Queue struct {
	name    string
	entries []entry

	// highest priority currently held by an entry
	maxPriority int

	// the pass being executed, 0 when idle
	pass     int
	draining bool

	handler  ErrorHandler
	fallback ErrorHandler
	metrics  *Metrics
}

func NewQueue(name string) *Queue {
	return &Queue{
		name:        name,
		entries:     make([]entry, 0),
		maxPriority: 1,
	}
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) Len() int { return len(q.entries) }

func (q *Queue) Empty() bool { return len(q.entries) == 0 }

// OnError installs the lane level error handler.
func (q *Queue) OnError(fn ErrorHandler) { q.handler = fn }

// Enqueue appends an entry with priority 1.
func (q *Queue) Enqueue(receiver any, cb *Callback, args ...any) {
	q.entries = append(q.entries, entry{receiver: receiver, callback: cb, args: args, priority: 1})
	q.metrics.enqueued(q.name)
}

// EnqueueOnce collapses repeats of the same (receiver, callback) pair: the
// existing entry takes the new arguments and moves to a later pass.
func (q *Queue) EnqueueOnce(receiver any, cb *Callback, args ...any) {
	for i := range q.entries {
		e := &q.entries[i]
		if e.callback != cb || e.receiver != receiver {
			continue
		}

		e.args = args
		// an entry re-armed during a drain must land after the running pass,
		// otherwise the scan that already went past it would never see it again
		e.priority = max(e.priority+1, q.pass+1)
		if e.priority > q.maxPriority {
			q.maxPriority = e.priority
		}

		q.metrics.collapsed(q.name)
		return
	}

	q.Enqueue(receiver, cb, args...)
}

// Drain runs every entry in ascending priority order. Entries appended while
// draining are run in another round unless singlePass is set.
// A drain already in progress absorbs re-entrant calls.
func (q *Queue) Drain(singlePass bool) error {
	if q.draining {
		return nil
	}

	q.draining = true
	defer func() {
		q.draining = false
		q.pass = 0
	}()

	for len(q.entries) > 0 {
		end := len(q.entries)

		for q.pass = 1; q.pass <= q.maxPriority; q.pass++ {
			for i := 0; i < end; i++ {
				if q.entries[i].priority != q.pass {
					continue
				}

				if err := q.run(q.entries[i]); err != nil {
					q.reset()
					return err
				}
			}
		}

		q.entries = append(make([]entry, 0, len(q.entries)-end), q.entries[end:]...)
		q.maxPriority = 1
		for _, e := range q.entries {
			q.maxPriority = max(q.maxPriority, e.priority)
		}

		if singlePass {
			break
		}
	}

	return nil
}

func (q *Queue) reset() {
	q.entries = q.entries[:0]
	q.maxPriority = 1
}

func (q *Queue) run(e entry) error {
	q.metrics.executed(q.name)

	err := guard(func() error { return e.callback.Fn(e.receiver, e.args) })
	if err != nil {
		return q.fail(e, err)
	}

	return nil
}

// guard turns a panic raised by fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = asError(r)
		}
	}()

	return fn()
}

func (q *Queue) fail(e entry, err error) error {
	var tagged *ListenerError
	if errors.As(err, &tagged) {
		return err
	}

	lerr := &ListenerError{Lane: q.name, Callback: e.callback.Name, Err: err}
	q.metrics.failed(q.name)

	switch {
	case q.handler != nil:
		q.handler(lerr)
	case q.fallback != nil:
		q.fallback(lerr)
	default:
		return lerr
	}

	return nil
}
