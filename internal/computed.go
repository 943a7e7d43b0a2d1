package internal

import "slices"

// Computed is a value derived from the actors its function reads. The reads
// are discovered through the tracker on every run.
type Computed struct {
	*Actor

	compute  func() (any, error)
	listener *Listener

	deps map[*Actor]*dependency
}

// dependency is what the last run saw of one source.
type dependency struct {
	kinds   []string
	version uint64
}

func (r *Runtime) NewComputed(compute func() (any, error), opts ...ActorOption) (*Computed, error) {
	c := &Computed{
		Actor:   r.newActor(opts...),
		compute: compute,
		deps:    make(map[*Actor]*dependency),
	}

	c.listener = &Listener{
		Name:   "recompute",
		Lane:   c.lane,
		Target: c.Actor,
		Owner:  c.Actor,
		Call:   func(*Event) error { return c.update() },
	}
	c.refresh = c.update
	c.onTeardown(c.release)

	if err := c.init(); err != nil {
		return c, err
	}

	return c, c.Recompute()
}

// DependOn subscribes the computed value to src.
func (c *Computed) DependOn(src *Actor, kinds ...string) {
	if src == c.Actor || src.state == StateDestroyed {
		return
	}

	dep, ok := c.deps[src]
	if !ok {
		dep = &dependency{version: src.version}
		c.deps[src] = dep
	}

	for _, kind := range kinds {
		if slices.Contains(dep.kinds, kind) {
			continue
		}

		if err := src.Subscribe(kind, c.listener); err == nil {
			dep.kinds = append(dep.kinds, kind)
		}
	}
}

// Deps is the number of actors read by the last run.
func (c *Computed) Deps() int { return len(c.deps) }

// update recomputes when a source published since the last run. Dirty
// computed sources are brought up to date first so their versions are final.
func (c *Computed) update() error {
	for src, dep := range c.deps {
		if src.dirty && src.refresh != nil {
			if err := src.refresh(); err != nil {
				return err
			}
		}

		if src.state == StateDestroyed || src.version != dep.version {
			return c.Recompute()
		}
	}

	c.dirty = false
	return nil
}

// Recompute drops the previous dependencies and runs the function again.
// Only a value that differs from the previous one is published. Computed
// dependents queued twice by that publish find their sources current and
// skip.
func (c *Computed) Recompute() error {
	if c.state != StateReady {
		return nil
	}

	c.dirty = false
	c.release()

	var (
		v   any
		err error
	)
	c.rt.tracker.RunWith(c, func() {
		v, err = c.compute()
	})

	if err != nil {
		return c.fail(err)
	}

	if Equal(c.value, v) {
		return nil
	}

	c.value = v
	return c.Publish(v, nil, nil)
}

func (c *Computed) release() {
	for src, dep := range c.deps {
		for _, kind := range dep.kinds {
			src.Off(kind, c.listener)
		}
	}

	clear(c.deps)
}
