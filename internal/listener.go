package internal

// Listener is a subscription to an actor.
type Listener struct {
	// Lane the delivery is scheduled on. Empty means the lane of the
	// publishing actor, then the default lane.
	Lane string

	Call func(ev *Event) error

	// Target is the actor this listener works for. Once Target is closed or
	// destroyed the listener is dropped the next time its source publishes.
	Target *Actor

	// Owner is the computed value fed by this listener. When set, a publish
	// reaching the listener also marks Owner dirty and schedules the computed
	// values reading Owner in the same pass.
	Owner *Actor

	// Immediate listeners run synchronously during the publish and see every
	// event. Collection translators rely on this.
	Immediate bool

	// Name labels the listener in errors and logs.
	Name string
}

func NewListener(fn func(ev *Event) error) *Listener {
	return &Listener{Call: fn}
}

func (l *Listener) stale() bool {
	return l.Target != nil && l.Target.gone()
}

func (l *Listener) name() string {
	if l.Name != "" {
		return l.Name
	}

	return "listener"
}

var deliverCallback = NewCallback("deliver", func(receiver any, args []any) error {
	l := receiver.(*Listener)
	if l.stale() {
		return nil
	}

	return l.Call(args[0].(*Event))
})
