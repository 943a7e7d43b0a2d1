package proact

import "github.com/AnatoleLucet/proact/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type (
	Actor         = internal.Actor
	ActorOption   = internal.ActorOption
	Event         = internal.Event
	Listener      = internal.Listener
	State         = internal.State
	Transform     = internal.Transform
	Mutation      = internal.Mutation
	Op            = internal.Op
	ElementChange = internal.ElementChange
	FieldChange   = internal.FieldChange
	Callback      = internal.Callback
	Flow          = internal.Flow
	ListenerError = internal.ListenerError
	PanicError    = internal.PanicError
	ErrorHandler  = internal.ErrorHandler
)

const (
	KindChange = internal.KindChange
	KindError  = internal.KindError
	KindClose  = internal.KindClose
	KindIndex  = internal.KindIndex
	KindLength = internal.KindLength
)

const (
	OpSet       = internal.OpSet
	OpAdd       = internal.OpAdd
	OpRemove    = internal.OpRemove
	OpSetLength = internal.OpSetLength
	OpReverse   = internal.OpReverse
	OpSort      = internal.OpSort
	OpSplice    = internal.OpSplice
)

const (
	StateInit      = internal.StateInit
	StateReady     = internal.StateReady
	StateClosed    = internal.StateClosed
	StateDestroyed = internal.StateDestroyed
	StateError     = internal.StateError
)

var (
	ErrInvalidState    = internal.ErrInvalidState
	ErrNoSession       = internal.ErrNoSession
	ErrUnknownLane     = internal.ErrUnknownLane
	ErrActorDestroyed  = internal.ErrActorDestroyed
	ErrActorFailed     = internal.ErrActorFailed
	ErrReadOnly        = internal.ErrReadOnly
	ErrIndexOutOfRange = internal.ErrIndexOutOfRange
	ErrSetup           = internal.ErrSetup
	ErrInvalidConfig   = internal.ErrInvalidConfig
)

var (
	// BadValue returned by a transform drops the update.
	BadValue = internal.BadValue

	// CloseValue returned by a transform closes the actor.
	CloseValue = internal.CloseValue
)

var (
	WithLane       = internal.WithLane
	WithTransforms = internal.WithTransforms
	WithSetup      = internal.WithSetup
	WithCanClose   = internal.WithCanClose
)

// Node is anything backed by an actor. Arrays holding nodes republish their
// changes as index notifications.
type Node interface {
	Node() *Actor
}

// NewActor creates an untyped actor. Use Update to push values through its
// transforms and On to listen to them.
func NewActor(opts ...ActorOption) (*Actor, error) {
	return internal.GetRuntime().NewActor(opts...)
}

// Merge creates an actor fed by every source, closing once all of them are
// closed.
func Merge(sources ...Node) (*Actor, error) {
	actors := make([]*Actor, len(sources))
	for i, s := range sources {
		actors[i] = s.Node()
	}

	return internal.GetRuntime().Merge(actors...)
}

// Batch runs fn in a single update cycle: every notification triggered by fn
// is delivered once, after fn returns.
func Batch(fn func()) error {
	return internal.GetRuntime().Batch(fn)
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// Scheduler returns the flow of the calling goroutine.
func Scheduler() *Flow {
	return internal.GetRuntime().Flow()
}

// NewCallback names fn so it can be scheduled with Enqueue.
func NewCallback(name string, fn func(receiver any, args []any) error) *Callback {
	return internal.NewCallback(name, fn)
}

// Enqueue schedules cb on lane in the current batch.
func Enqueue(lane string, receiver any, cb *Callback, args ...any) error {
	return Scheduler().Enqueue(lane, receiver, cb, args...)
}

// EnqueueOnce schedules cb on lane, folding repeats of the same receiver and
// callback into one call with the latest arguments.
func EnqueueOnce(lane string, receiver any, cb *Callback, args ...any) error {
	return Scheduler().EnqueueOnce(lane, receiver, cb, args...)
}

// Pause drops every notification until Resume is called.
func Pause() { Scheduler().Pause() }

func Resume() { Scheduler().Resume() }

type Property[T any] struct {
	actor *internal.Actor
}

// NewProperty creates a read/write value. Writing an equal value is a no-op.
// A failing WithSetup leaves the property in the error state: Node().Err()
// reports the failure and writes return ErrActorFailed.
func NewProperty[T any](initial T, opts ...ActorOption) *Property[T] {
	opts = append([]ActorOption{internal.WithInitial(initial)}, opts...)
	a, _ := internal.GetRuntime().NewActor(opts...)

	return &Property[T]{a}
}

// Get the current value, tracking the dependency if within a computed value.
func (p *Property[T]) Get() T {
	return as[T](p.actor.Get())
}

// Peek the current value without tracking it.
func (p *Property[T]) Peek() T {
	return as[T](p.actor.Peek())
}

// Set a new value and notify the dependents.
func (p *Property[T]) Set(v T) error {
	if internal.Equal(p.actor.Peek(), v) {
		return nil
	}

	return p.actor.Update(v)
}

// On calls fn with every new value, once per batch.
func (p *Property[T]) On(fn func(v T) error) (*Listener, error) {
	return p.actor.On(KindChange, func(ev *Event) error {
		return fn(as[T](ev.Value))
	})
}

func (p *Property[T]) Off(l *Listener) { p.actor.Off("", l) }

func (p *Property[T]) Node() *Actor { return p.actor }

func (p *Property[T]) Close() error { return p.actor.Close() }

func (p *Property[T]) Destroy() { p.actor.Destroy() }

type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a value derived from the values its function reads.
// It is recomputed when any of them changes, and its listeners only hear
// about results that differ from the previous one. A failing WithSetup
// leaves it in the error state, reported by Node().Err(), without running
// the function.
func NewComputed[T any](compute func() T, opts ...ActorOption) *Computed[T] {
	c, _ := internal.GetRuntime().NewComputed(func() (any, error) {
		return compute(), nil
	}, opts...)

	return &Computed[T]{c}
}

// Get the current value, tracking the dependency if within a computed value.
func (c *Computed[T]) Get() T {
	return as[T](c.computed.Get())
}

func (c *Computed[T]) Peek() T {
	return as[T](c.computed.Peek())
}

// On calls fn with each new value, once per batch.
func (c *Computed[T]) On(fn func(v T) error) (*Listener, error) {
	return c.computed.On(KindChange, func(ev *Event) error {
		return fn(as[T](ev.Value))
	})
}

func (c *Computed[T]) Node() *Actor { return c.computed.Actor }

func (c *Computed[T]) Destroy() { c.computed.Destroy() }

type Effect struct {
	effect *internal.Effect
}

// NewEffect runs fn now and again whenever a value it read changes. Effects
// run after the model updates of a batch. A failing WithSetup leaves the
// effect in the error state, reported by Node().Err(), and fn never runs.
func NewEffect(fn func(), opts ...ActorOption) *Effect {
	e, _ := internal.GetRuntime().NewEffect(func() error {
		fn()
		return nil
	}, opts...)

	return &Effect{e}
}

// Dispose stops the effect.
func (e *Effect) Dispose() { e.effect.Dispose() }

func (e *Effect) Node() *Actor { return e.effect.Actor }

type Group struct {
	group *internal.Group
}

// NewGroup creates a container notified once per batch when any of its
// members changes.
func NewGroup() *Group {
	return &Group{internal.GetRuntime().NewGroup()}
}

// Add registers member under field.
func (g *Group) Add(field string, member Node) error {
	return g.group.Add(field, member.Node())
}

// On calls fn with the last field that changed in a batch.
func (g *Group) On(fn func(field string) error) (*Listener, error) {
	return g.group.On(KindChange, func(ev *Event) error {
		return fn(ev.Data.(*FieldChange).Field)
	})
}

func (g *Group) Node() *Actor { return g.group.Actor }

func (g *Group) Destroy() { g.group.Destroy() }
