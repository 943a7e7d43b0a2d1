package internal

import (
	"slices"
)

// Update runs cause through the transform pipeline and publishes the result
// on the change kind.
func (a *Actor) Update(cause any) error {
	if err := a.check(); err != nil {
		return err
	}

	if a.state == StateClosed {
		return nil
	}

	v, err := a.transformValue(cause)
	if err != nil {
		return a.fail(err)
	}

	switch v {
	case BadValue:
		return nil
	case CloseValue:
		return a.Close()
	}

	a.value = v
	return a.Publish(v, nil, nil)
}

// fail publishes err on the error kind, or hands it back when nobody listens.
func (a *Actor) fail(err error) error {
	if len(a.listeners[KindError]) == 0 {
		return err
	}

	return a.Publish(err, []string{KindError}, nil)
}

// Publish notifies the listeners of kinds (change when empty). Deliveries are
// collapsed per listener for the current batch, carrying the latest event.
func (a *Actor) Publish(cause any, kinds []string, data any) error {
	if err := a.check(); err != nil {
		return err
	}

	if a.state == StateClosed {
		return nil
	}

	if len(kinds) == 0 {
		kinds = defaultKinds
	}

	if !slices.Contains(kinds, KindClose) && !slices.Contains(kinds, KindError) {
		a.version++
	}

	return a.rt.inSession(func() error {
		return a.propagate(cause, kinds, data)
	})
}

func (a *Actor) propagate(cause any, kinds []string, data any) error {
	ev := &Event{Source: a, Kinds: kinds, Value: cause, Data: data}

	if slices.Contains(kinds, KindClose) {
		return a.scheduleClose(ev)
	}

	listeners := a.resolve(kinds)
	if len(listeners) == 0 && a.parent == nil {
		return nil
	}

	a.propagating = true
	defer func() { a.propagating = false }()

	flow := a.rt.flow

	for _, l := range listeners {
		if !l.Immediate || l.stale() {
			continue
		}

		err := flow.Call(a.laneFor(l), l.name(), func() error { return l.Call(ev) })
		if err != nil {
			return err
		}
	}

	for _, l := range listeners {
		if l.Immediate {
			continue
		}

		if err := flow.EnqueueOnce(a.laneFor(l), l, deliverCallback, ev); err != nil {
			return err
		}

		if l.Owner != nil && l.Owner != a {
			if err := l.Owner.schedule(ev); err != nil {
				return err
			}
		}
	}

	if a.parent != nil {
		if err := flow.EnqueueOnce(a.lane, a.parent, aggregateCallback, a, ev); err != nil {
			return err
		}
	}

	return nil
}

// schedule marks the computed value a as dirty and queues the computed values
// reading it behind it. They carry no value: each one pulls a fresh one when
// it runs. Plain listeners of a wait for the recompute to publish.
func (a *Actor) schedule(ev *Event) error {
	if a.propagating || a.state != StateReady {
		return nil
	}

	a.dirty = true
	a.propagating = true
	defer func() { a.propagating = false }()

	for _, l := range a.resolve(defaultKinds) {
		if l.Owner == nil || l.Immediate {
			continue
		}

		if err := a.rt.flow.EnqueueOnce(a.laneFor(l), l, deliverCallback, ev); err != nil {
			return err
		}

		if err := l.Owner.schedule(ev); err != nil {
			return err
		}
	}

	return nil
}

func (a *Actor) laneFor(l *Listener) string {
	if l.Lane != "" {
		return l.Lane
	}

	return a.lane
}

// resolve collects the listeners of kinds in order, each once, dropping the
// ones whose target is gone.
func (a *Actor) resolve(kinds []string) []*Listener {
	var out []*Listener

	for _, kind := range kinds {
		ls := a.listeners[kind]
		if slices.ContainsFunc(ls, (*Listener).stale) {
			ls = slices.DeleteFunc(ls, (*Listener).stale)
			a.listeners[kind] = ls
		}

		for _, l := range ls {
			if !slices.Contains(out, l) {
				out = append(out, l)
			}
		}
	}

	return out
}

func (a *Actor) scheduleClose(ev *Event) error {
	if a.closing || !a.closable() {
		return nil
	}

	a.closing = true
	a.rt.flow.EnqueueClosing(a, closeCallback, ev)

	return nil
}

var aggregateCallback = NewCallback("aggregate", func(receiver any, args []any) error {
	return receiver.(Aggregator).Aggregate(args[0].(*Actor), args[1].(*Event))
})
