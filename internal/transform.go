package internal

// Transform rewrites a value on its way through an actor.
type Transform func(v any) (any, error)

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

var (
	// BadValue returned by a transform suppresses the update.
	BadValue any = &sentinel{"bad value"}

	// CloseValue returned by a transform closes the actor instead of updating it.
	CloseValue any = &sentinel{"close"}
)

func (a *Actor) Transform(t Transform) *Actor {
	a.transforms = append(a.transforms, t)
	return a
}

func (a *Actor) Mapping(fn func(v any) any) *Actor {
	return a.Transform(func(v any) (any, error) {
		return fn(v), nil
	})
}

func (a *Actor) Filtering(fn func(v any) bool) *Actor {
	return a.Transform(func(v any) (any, error) {
		if !fn(v) {
			return BadValue, nil
		}

		return v, nil
	})
}

// Accumulation folds every value into an accumulator and forwards it.
func (a *Actor) Accumulation(initial any, fn func(acc, v any) any) *Actor {
	acc := initial

	return a.Transform(func(v any) (any, error) {
		acc = fn(acc, v)
		return acc, nil
	})
}

func (a *Actor) transformValue(v any) (any, error) {
	for _, t := range a.transforms {
		var err error
		if v, err = t(v); err != nil {
			return nil, err
		}

		if v == BadValue || v == CloseValue {
			return v, nil
		}
	}

	return v, nil
}
