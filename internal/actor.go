package internal

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type State int

const (
	StateInit State = iota
	StateReady
	StateClosed
	StateDestroyed
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateDestroyed:
		return "destroyed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Aggregator is a container notified when one of its member actors publishes.
type Aggregator interface {
	Aggregate(child *Actor, ev *Event) error
}

// Actor is a publish/subscribe node of the graph.
type Actor struct {
	id uuid.UUID
	rt *Runtime

	state State
	err   error

	lane  string
	value any

	listeners  map[string][]*Listener
	transforms []Transform

	// propagation target, not an ownership edge
	parent Aggregator

	// upstream actors this one is linked into
	sources []*link

	canClose func() bool
	setup    func(*Actor) error
	teardown []func()

	closing     bool
	propagating bool

	// bumped by every publish of a new value
	version uint64

	// a dirty computed value has a recompute pending; refresh runs it early
	// for readers that cannot wait
	dirty   bool
	refresh func() error
}

type ActorOption func(*Actor)

// WithLane schedules the deliveries of the actor on the named lane.
func WithLane(lane string) ActorOption {
	return func(a *Actor) { a.lane = lane }
}

func WithTransforms(ts ...Transform) ActorOption {
	return func(a *Actor) { a.transforms = append(a.transforms, ts...) }
}

func WithInitial(v any) ActorOption {
	return func(a *Actor) { a.value = v }
}

// WithSetup runs fn while the actor is initialized. A failing setup leaves
// the actor in the error state.
func WithSetup(fn func(*Actor) error) ActorOption {
	return func(a *Actor) { a.setup = fn }
}

func WithParent(p Aggregator) ActorOption {
	return func(a *Actor) { a.parent = p }
}

// WithCanClose overrides the check consulted before honoring a close.
func WithCanClose(fn func() bool) ActorOption {
	return func(a *Actor) { a.canClose = fn }
}

// NewActor creates an actor and runs its setup.
func (r *Runtime) NewActor(opts ...ActorOption) (*Actor, error) {
	a := r.newActor(opts...)
	if err := a.init(); err != nil {
		return a, err
	}

	return a, nil
}

func (r *Runtime) newActor(opts ...ActorOption) *Actor {
	a := &Actor{
		id:        uuid.New(),
		rt:        r,
		state:     StateInit,
		listeners: make(map[string][]*Listener),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Actor) init() error {
	if a.setup != nil {
		if err := a.setup(a); err != nil {
			a.state = StateError
			a.err = fmt.Errorf("%w: %w", ErrSetup, err)
			a.rt.logger.Error("actor setup failed", "actor", a.id, "error", err)
			return a.err
		}
	}

	a.state = StateReady
	return nil
}

func (a *Actor) ID() uuid.UUID { return a.id }

func (a *Actor) String() string {
	return fmt.Sprintf("actor(%s, %s)", a.id, a.state)
}

func (a *Actor) Runtime() *Runtime { return a.rt }

func (a *Actor) State() State { return a.state }

// Err is the setup failure of an actor in the error state.
func (a *Actor) Err() error { return a.err }

func (a *Actor) Lane() string { return a.lane }

func (a *Actor) Parent() Aggregator { return a.parent }

func (a *Actor) SetParent(p Aggregator) { a.parent = p }

// Node lets containers recognize actors and actor-backed values.
func (a *Actor) Node() *Actor { return a }

// Get returns the last published value and registers the current reader.
func (a *Actor) Get() any {
	a.settle()
	a.rt.tracker.Track(a, KindChange)
	return a.value
}

// Peek returns the last published value without tracking.
func (a *Actor) Peek() any {
	a.settle()
	return a.value
}

// Version counts the values published by a.
func (a *Actor) Version() uint64 { return a.version }

// settle brings a dirty computed value up to date before it is read. A
// failed refresh stays pending so the scheduled run reports it.
func (a *Actor) settle() {
	if !a.dirty || a.refresh == nil {
		return
	}

	if err := a.refresh(); err != nil {
		a.dirty = true
	}
}

func (a *Actor) gone() bool {
	return a.state == StateClosed || a.state == StateDestroyed
}

func (a *Actor) check() error {
	switch a.state {
	case StateDestroyed:
		return fmt.Errorf("%w: %s", ErrActorDestroyed, a.id)
	case StateError:
		return fmt.Errorf("%w: %s", ErrActorFailed, a.id)
	}

	return nil
}

// onTeardown registers fn to run when the actor is closed or destroyed.
func (a *Actor) onTeardown(fn func()) {
	a.teardown = append(a.teardown, fn)
}

func (a *Actor) runTeardown() {
	fns := a.teardown
	a.teardown = nil

	for _, fn := range fns {
		fn()
	}
}

// Subscribe adds l to the listeners of kind. Adding the same listener twice
// to one kind is a no-op.
func (a *Actor) Subscribe(kind string, l *Listener) error {
	if err := a.check(); err != nil {
		return err
	}

	if kind == "" {
		kind = KindChange
	}

	if slices.Contains(a.listeners[kind], l) {
		return nil
	}

	a.listeners[kind] = append(a.listeners[kind], l)
	return nil
}

// On subscribes fn to kind and returns the listener for a later Off.
func (a *Actor) On(kind string, fn func(ev *Event) error) (*Listener, error) {
	l := NewListener(fn)
	if err := a.Subscribe(kind, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (a *Actor) OnErr(fn func(ev *Event) error) (*Listener, error) {
	return a.On(KindError, fn)
}

func (a *Actor) OnClose(fn func(ev *Event) error) (*Listener, error) {
	return a.On(KindClose, fn)
}

// OnAll subscribes one listener to change, error and close.
func (a *Actor) OnAll(fn func(ev *Event) error) (*Listener, error) {
	l := NewListener(fn)
	for _, kind := range []string{KindChange, KindError, KindClose} {
		if err := a.Subscribe(kind, l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Off removes l from kind, or from every kind when kind is empty.
func (a *Actor) Off(kind string, l *Listener) {
	if a.listeners == nil {
		return
	}

	if kind != "" {
		a.listeners[kind] = slices.DeleteFunc(a.listeners[kind], func(x *Listener) bool { return x == l })
		return
	}

	for k, ls := range a.listeners {
		a.listeners[k] = slices.DeleteFunc(ls, func(x *Listener) bool { return x == l })
	}
}

// OffAll removes every listener of every kind.
func (a *Actor) OffAll() {
	if a.listeners == nil {
		return
	}

	clear(a.listeners)
}

// Listeners reports how many listeners are subscribed to kind.
func (a *Actor) Listeners(kind string) int {
	return len(a.listeners[kind])
}

// Close tears the actor down once the current batch is delivered.
func (a *Actor) Close() error {
	return a.Publish(nil, []string{KindClose}, nil)
}

// Destroy is terminal: listeners, transforms and links are released and any
// further publish fails.
func (a *Actor) Destroy() {
	if a.state == StateDestroyed {
		return
	}

	a.detachSources()
	a.runTeardown()

	a.state = StateDestroyed
	a.listeners = nil
	a.transforms = nil
	a.parent = nil
	a.value = nil
}

func (a *Actor) closable() bool {
	if a.canClose == nil {
		return true
	}

	return a.canClose()
}

var closeCallback = NewCallback("close", func(receiver any, args []any) error {
	return receiver.(*Actor).doClose(args[0].(*Event))
})

func (a *Actor) doClose(ev *Event) error {
	if a.state != StateReady && a.state != StateInit {
		return nil
	}

	listeners := slices.Clone(a.listeners[KindClose])

	a.detachSources()
	a.state = StateClosed

	var errs []error
	for _, l := range listeners {
		if l.stale() {
			continue
		}

		if err := l.Call(ev); err != nil {
			errs = append(errs, err)
		}
	}

	a.runTeardown()
	clear(a.listeners)

	return errors.Join(errs...)
}
