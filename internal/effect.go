package internal

// Effect is a computed value run for its side effects. It lands on the
// effect lane unless told otherwise.
type Effect struct {
	*Computed
}

func (r *Runtime) NewEffect(fn func() error, opts ...ActorOption) (*Effect, error) {
	opts = append([]ActorOption{WithLane(r.cfg.EffectLane)}, opts...)

	c, err := r.NewComputed(func() (any, error) {
		return nil, fn()
	}, opts...)

	return &Effect{c}, err
}

// Dispose stops the effect for good.
func (e *Effect) Dispose() {
	e.Destroy()
}
