package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputed(t *testing.T) {
	t.Run("tracks the actors it reads", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))
		b, _ := rt.NewActor(WithInitial(2))

		runs := 0
		sum, err := rt.NewComputed(func() (any, error) {
			runs++
			return a.Get().(int) + b.Get().(int), nil
		})
		require.NoError(t, err)

		assert.Equal(t, 3, sum.Peek())
		assert.Equal(t, 2, sum.Deps())

		_ = a.Update(10)
		assert.Equal(t, 12, sum.Peek())

		_ = rt.Batch(func() {
			_ = a.Update(20)
			_ = b.Update(30)
		})
		assert.Equal(t, 50, sum.Peek())
		assert.Equal(t, 3, runs)
	})

	t.Run("dependencies follow the last run", func(t *testing.T) {
		rt := newTestRuntime()
		cond, _ := rt.NewActor(WithInitial(true))
		a, _ := rt.NewActor(WithInitial("a"))
		b, _ := rt.NewActor(WithInitial("b"))

		c, _ := rt.NewComputed(func() (any, error) {
			if cond.Get().(bool) {
				return a.Get(), nil
			}
			return b.Get(), nil
		})

		assert.Equal(t, 1, a.Listeners(KindChange))
		assert.Zero(t, b.Listeners(KindChange))

		_ = cond.Update(false)
		assert.Equal(t, "b", c.Peek())
		assert.Zero(t, a.Listeners(KindChange))
		assert.Equal(t, 1, b.Listeners(KindChange))
	})

	t.Run("chains recompute in order", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))

		double, _ := rt.NewComputed(func() (any, error) { return a.Get().(int) * 2, nil })
		quad, _ := rt.NewComputed(func() (any, error) { return double.Get().(int) * 2, nil })

		_ = a.Update(5)
		assert.Equal(t, 10, double.Peek())
		assert.Equal(t, 20, quad.Peek())
	})

	t.Run("untracked reads do not subscribe", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))
		b, _ := rt.NewActor(WithInitial(2))

		c, _ := rt.NewComputed(func() (any, error) {
			v := a.Get().(int)
			rt.Untrack(func() { v += b.Get().(int) })
			return v, nil
		})

		assert.Equal(t, 1, c.Deps())
		_ = b.Update(100)
		assert.Equal(t, 3, c.Peek())
	})

	t.Run("listeners receive the fresh value", func(t *testing.T) {
		rt := newTestRuntime()
		count, _ := rt.NewActor(WithInitial(1))
		double, _ := rt.NewComputed(func() (any, error) { return count.Get().(int) * 2, nil })

		merged, err := rt.Merge(double.Actor)
		require.NoError(t, err)

		var got []any
		_, _ = double.On(KindChange, func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		require.NoError(t, count.Update(5))
		assert.Equal(t, []any{10}, got)
		assert.Equal(t, 10, merged.Peek())

		require.NoError(t, count.Update(7))
		assert.Equal(t, []any{10, 14}, got)
		assert.Equal(t, 14, merged.Peek())
	})

	t.Run("unchanged results stop propagation", func(t *testing.T) {
		rt := newTestRuntime()
		n, _ := rt.NewActor(WithInitial(1))
		parity, _ := rt.NewComputed(func() (any, error) { return n.Get().(int) % 2, nil })

		runs := 0
		_, err := rt.NewEffect(func() error {
			parity.Get()
			runs++
			return nil
		})
		require.NoError(t, err)

		var got []any
		_, _ = parity.On(KindChange, func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		version := parity.Version()

		require.NoError(t, n.Update(3))
		assert.Equal(t, 1, runs)
		assert.Empty(t, got)
		assert.Equal(t, version, parity.Version())

		require.NoError(t, n.Update(4))
		assert.Equal(t, 2, runs)
		assert.Equal(t, []any{0}, got)
	})

	t.Run("reads pull a pending recompute", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))
		double, _ := rt.NewComputed(func() (any, error) { return a.Get().(int) * 2, nil })

		var seen any
		_ = rt.Batch(func() {
			_ = a.Update(4)
			seen = double.Peek()
		})

		assert.Equal(t, 8, seen)
		assert.Equal(t, 8, double.Peek())
	})

	t.Run("diamonds recompute each node once", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))
		left, _ := rt.NewComputed(func() (any, error) { return a.Get().(int) + 1, nil })
		right, _ := rt.NewComputed(func() (any, error) { return a.Get().(int) * 10, nil })

		runs := 0
		sum, _ := rt.NewComputed(func() (any, error) {
			runs++
			return left.Get().(int) + right.Get().(int), nil
		})

		require.NoError(t, a.Update(2))
		assert.Equal(t, 23, sum.Peek())
		assert.Equal(t, 2, runs)
	})

	t.Run("errors go to error listeners", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor(WithInitial(1))
		boom := errors.New("boom")

		c, err := rt.NewComputed(func() (any, error) {
			if a.Get().(int) < 0 {
				return nil, boom
			}
			return a.Get(), nil
		})
		require.NoError(t, err)

		var got []any
		_, _ = c.OnErr(func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		_ = a.Update(-1)
		assert.Equal(t, []any{boom}, got)
	})
}

func TestEffect(t *testing.T) {
	t.Run("runs on the effect lane after model work", func(t *testing.T) {
		rt := newTestRuntime()
		count, _ := rt.NewActor(WithInitial(0))
		double, _ := rt.NewComputed(func() (any, error) { return count.Get().(int) * 2, nil })

		var log []string
		e, err := rt.NewEffect(func() error {
			log = append(log, fmt.Sprintf("double %d", double.Get()))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "user", e.Lane())

		_ = count.Update(10)
		_ = count.Update(20)

		assert.Equal(t, []string{"double 0", "double 20", "double 40"}, log)
	})

	t.Run("writes feed back into the model lane", func(t *testing.T) {
		rt := newTestRuntime()
		count, _ := rt.NewActor(WithInitial(0))
		double, _ := rt.NewActor(WithInitial(0))

		_, _ = rt.NewEffect(func() error {
			return double.Update(count.Get().(int) * 2)
		}, WithLane("render"))

		var log []string
		_, _ = rt.NewEffect(func() error {
			log = append(log, fmt.Sprintf("changed %d", double.Get()))
			return nil
		})

		_ = count.Update(10)
		assert.Equal(t, []string{"changed 0", "changed 20"}, log)
	})

	t.Run("dispose stops the effect", func(t *testing.T) {
		rt := newTestRuntime()
		count, _ := rt.NewActor(WithInitial(0))

		runs := 0
		e, _ := rt.NewEffect(func() error {
			count.Get()
			runs++
			return nil
		})

		e.Dispose()
		_ = count.Update(1)

		assert.Equal(t, 1, runs)
		assert.Zero(t, count.Listeners(KindChange))
	})

	t.Run("failing effects reach the handler", func(t *testing.T) {
		var handled []*ListenerError
		rt := newTestRuntime(WithErrorHandler(func(err *ListenerError) {
			handled = append(handled, err)
		}))

		count, _ := rt.NewActor(WithInitial(0))
		_, _ = rt.NewEffect(func() error {
			if count.Get().(int) > 0 {
				panic("too big")
			}
			return nil
		})

		require.NoError(t, count.Update(1))
		require.Len(t, handled, 1)
		assert.Equal(t, "user", handled[0].Lane)
		assert.Equal(t, "deliver", handled[0].Callback)
	})
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.ShouldTrack())

	c := &Computed{deps: make(map[*Actor]*dependency)}
	tr.RunWith(c, func() {
		assert.True(t, tr.ShouldTrack())
		assert.Same(t, c, tr.Current())

		tr.RunUntracked(func() {
			assert.False(t, tr.ShouldTrack())
		})

		tr.RunWith(nil, func() {
			assert.False(t, tr.ShouldTrack())
		})
		assert.Same(t, c, tr.Current())
	})

	assert.Nil(t, tr.Current())
}
