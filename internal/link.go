package internal

// link records the subscriptions an actor holds on one of its sources, so
// they can be released when either side goes away.
type link struct {
	source *Actor
	subs   []subscription
}

type subscription struct {
	kind     string
	listener *Listener
}

func (a *Actor) findLink(src *Actor) *link {
	for _, lk := range a.sources {
		if lk.source == src {
			return lk
		}
	}

	return nil
}

// linkTo subscribes listeners on src on behalf of a. The first link to a
// source also watches its close so a can count its remaining sources.
func (a *Actor) linkTo(src *Actor, subs ...subscription) error {
	if err := a.check(); err != nil {
		return err
	}

	lk := a.findLink(src)
	if lk == nil {
		lk = &link{source: src}

		closer := &Listener{
			Name:   "source-close",
			Target: a,
			Call:   func(*Event) error { return a.sourceClosed(src) },
		}
		subs = append(subs, subscription{KindClose, closer})

		a.sources = append(a.sources, lk)
	}

	for _, s := range subs {
		if err := src.Subscribe(s.kind, s.listener); err != nil {
			return err
		}
		lk.subs = append(lk.subs, s)
	}

	return nil
}

func (a *Actor) detachSources() {
	for _, lk := range a.sources {
		for _, s := range lk.subs {
			lk.source.Off(s.kind, s.listener)
		}
	}

	a.sources = nil
}

func (a *Actor) sourceClosed(src *Actor) error {
	for i, lk := range a.sources {
		if lk.source == src {
			a.sources = append(a.sources[:i:i], a.sources[i+1:]...)
			break
		}
	}

	return a.Close()
}

// Sources is the number of upstream actors still linked into a.
func (a *Actor) Sources() int { return len(a.sources) }

// Into subscribes a to the values, errors and close of every source.
func (a *Actor) Into(sources ...*Actor) error {
	for _, src := range sources {
		value := &Listener{
			Name:   "into-value",
			Target: a,
			Call:   func(ev *Event) error { return a.Update(ev.Value) },
		}
		errs := &Listener{
			Name:   "into-error",
			Target: a,
			Call: func(ev *Event) error {
				return a.Publish(ev.Value, []string{KindError}, nil)
			},
		}

		err := a.linkTo(src, subscription{KindChange, value}, subscription{KindError, errs})
		if err != nil {
			return err
		}
	}

	return nil
}

// Out links a into dest and returns dest.
func (a *Actor) Out(dest *Actor) (*Actor, error) {
	return dest, dest.Into(a)
}

// Merge creates an actor fed by every source. It only closes once all of
// them are closed.
func (r *Runtime) Merge(sources ...*Actor) (*Actor, error) {
	a := r.newActor()
	a.canClose = func() bool { return len(a.sources) == 0 }

	if err := a.init(); err != nil {
		return nil, err
	}

	if err := a.Into(sources...); err != nil {
		return nil, err
	}

	return a, nil
}
