package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(opts ...Option) *Runtime {
	return NewRuntime(DefaultConfig(), opts...)
}

func TestActor(t *testing.T) {
	t.Run("update delivers the transformed value", func(t *testing.T) {
		rt := newTestRuntime()
		a, err := rt.NewActor()
		require.NoError(t, err)

		a.Mapping(func(v any) any { return v.(int) * 2 })

		var got []any
		_, err = a.On(KindChange, func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})
		require.NoError(t, err)

		require.NoError(t, a.Update(21))
		assert.Equal(t, []any{42}, got)
		assert.Equal(t, 42, a.Peek())
	})

	t.Run("one delivery per listener per batch", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		var got []any
		_, _ = a.On(KindChange, func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		err := rt.Batch(func() {
			_ = a.Update(1)
			_ = a.Update(2)
			_ = a.Update(3)
		})

		require.NoError(t, err)
		assert.Equal(t, []any{3}, got)
	})

	t.Run("filtering suppresses the update", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		a.Filtering(func(v any) bool { return v.(int)%2 == 0 })

		var got []any
		_, _ = a.On(KindChange, func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		_ = a.Update(1)
		_ = a.Update(2)
		assert.Equal(t, []any{2}, got)
	})

	t.Run("accumulation folds values", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		a.Accumulation(0, func(acc, v any) any { return acc.(int) + v.(int) })

		_ = a.Update(1)
		_ = a.Update(2)
		_ = a.Update(3)
		assert.Equal(t, 6, a.Peek())
	})

	t.Run("close value closes the actor", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		a.Transform(func(v any) (any, error) {
			if v == nil {
				return CloseValue, nil
			}
			return v, nil
		})

		closed := 0
		_, _ = a.OnClose(func(*Event) error {
			closed++
			return nil
		})

		require.NoError(t, a.Update(nil))
		assert.Equal(t, StateClosed, a.State())
		assert.Equal(t, 1, closed)
	})

	t.Run("transform errors go to error listeners", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		boom := errors.New("boom")
		a.Transform(func(any) (any, error) { return nil, boom })

		assert.ErrorIs(t, a.Update(1), boom)

		var got []any
		_, _ = a.OnErr(func(ev *Event) error {
			got = append(got, ev.Value)
			return nil
		})

		require.NoError(t, a.Update(1))
		assert.Equal(t, []any{boom}, got)
	})

	t.Run("off removes a listener", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		calls := 0
		l, _ := a.OnAll(func(*Event) error {
			calls++
			return nil
		})
		assert.Equal(t, 1, a.Listeners(KindError))

		a.Off("", l)
		_ = a.Update(1)

		assert.Zero(t, calls)
		assert.Zero(t, a.Listeners(KindError))
	})

	t.Run("empty publish is a no-op", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		require.NoError(t, a.Publish(1, nil, nil))
		assert.False(t, rt.Flow().InSession())
	})

	t.Run("close is delivered once", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		closed := 0
		_, _ = a.OnClose(func(*Event) error {
			closed++
			return nil
		})

		err := rt.Batch(func() {
			_ = a.Close()
			_ = a.Close()
		})
		require.NoError(t, err)
		require.NoError(t, a.Close())

		assert.Equal(t, 1, closed)
		assert.Equal(t, StateClosed, a.State())
		assert.NoError(t, a.Update(1))
	})

	t.Run("close runs after the deliveries of the batch", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		var log []string
		_, _ = a.On(KindChange, func(*Event) error {
			log = append(log, "change")
			return nil
		})
		_, _ = a.OnClose(func(*Event) error {
			log = append(log, "close")
			return nil
		})

		_ = rt.Batch(func() {
			_ = a.Close()
			_ = a.Update(1)
		})

		assert.Equal(t, []string{"change", "close"}, log)
	})

	t.Run("destroyed actors reject operations", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		a.Destroy()
		a.Destroy()

		assert.ErrorIs(t, a.Update(1), ErrActorDestroyed)
		_, err := a.On(KindChange, func(*Event) error { return nil })
		assert.ErrorIs(t, err, ErrActorDestroyed)
		assert.ErrorIs(t, a.Publish(1, nil, nil), ErrInvalidState)
	})

	t.Run("failed setup", func(t *testing.T) {
		rt := newTestRuntime()
		boom := errors.New("boom")

		a, err := rt.NewActor(WithSetup(func(*Actor) error { return boom }))
		assert.ErrorIs(t, err, ErrSetup)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, StateError, a.State())
		assert.ErrorIs(t, a.Update(1), ErrActorFailed)
	})

	t.Run("listeners of a closed target are dropped", func(t *testing.T) {
		rt := newTestRuntime()
		src, _ := rt.NewActor()
		dst, _ := rt.NewActor()

		calls := 0
		require.NoError(t, src.Subscribe(KindChange, &Listener{
			Target: dst,
			Call: func(*Event) error {
				calls++
				return nil
			},
		}))

		require.NoError(t, dst.Close())
		_ = src.Update(1)

		assert.Zero(t, calls)
		assert.Zero(t, src.Listeners(KindChange))
	})

	t.Run("listener lane decides the delivery order", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		var log []string
		for _, lane := range []string{"user", "render", "model"} {
			require.NoError(t, a.Subscribe(KindChange, &Listener{
				Lane: lane,
				Call: func(*Event) error {
					log = append(log, lane)
					return nil
				},
			}))
		}

		_ = a.Update(1)
		assert.Equal(t, []string{"model", "render", "user"}, log)
	})

	t.Run("immediate listeners run before deferred ones", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()

		var log []string
		_ = rt.Batch(func() {
			_, _ = a.On(KindChange, func(*Event) error {
				log = append(log, "deferred")
				return nil
			})
			_ = a.Subscribe(KindChange, &Listener{
				Immediate: true,
				Call: func(ev *Event) error {
					log = append(log, "immediate")
					return nil
				},
			})

			_ = a.Update(1)
			_ = a.Update(2)
			log = append(log, "batch end")
		})

		assert.Equal(t, []string{"immediate", "immediate", "batch end", "deferred"}, log)
	})
}

func TestLink(t *testing.T) {
	t.Run("into forwards values and errors", func(t *testing.T) {
		rt := newTestRuntime()
		src, _ := rt.NewActor()
		dst, _ := rt.NewActor()
		require.NoError(t, dst.Into(src))

		var errs []any
		_, _ = dst.OnErr(func(ev *Event) error {
			errs = append(errs, ev.Value)
			return nil
		})

		_ = src.Update(5)
		assert.Equal(t, 5, dst.Peek())

		boom := errors.New("boom")
		_ = src.Publish(boom, []string{KindError}, nil)
		assert.Equal(t, []any{boom}, errs)
	})

	t.Run("out returns the destination", func(t *testing.T) {
		rt := newTestRuntime()
		src, _ := rt.NewActor()
		dst, _ := rt.NewActor()

		got, err := src.Out(dst)
		require.NoError(t, err)
		assert.Same(t, dst, got)
		assert.Equal(t, 1, dst.Sources())
	})

	t.Run("closing the only source closes the destination", func(t *testing.T) {
		rt := newTestRuntime()
		src, _ := rt.NewActor()
		dst, _ := rt.NewActor()
		require.NoError(t, dst.Into(src))

		require.NoError(t, src.Close())
		assert.Equal(t, StateClosed, dst.State())
	})

	t.Run("merge closes with its last source", func(t *testing.T) {
		rt := newTestRuntime()
		a, _ := rt.NewActor()
		b, _ := rt.NewActor()

		m, err := rt.Merge(a, b)
		require.NoError(t, err)

		_ = a.Update(1)
		assert.Equal(t, 1, m.Peek())
		_ = b.Update(2)
		assert.Equal(t, 2, m.Peek())

		require.NoError(t, a.Close())
		assert.Equal(t, StateReady, m.State())
		assert.Equal(t, 1, m.Sources())

		require.NoError(t, b.Close())
		assert.Equal(t, StateClosed, m.State())
	})

	t.Run("destroying the destination detaches it", func(t *testing.T) {
		rt := newTestRuntime()
		src, _ := rt.NewActor()
		dst, _ := rt.NewActor()
		require.NoError(t, dst.Into(src))

		dst.Destroy()
		assert.Zero(t, src.Listeners(KindChange))
		assert.Zero(t, src.Listeners(KindClose))
		assert.NoError(t, src.Update(1))
	})
}

func TestGroup(t *testing.T) {
	rt := newTestRuntime()
	g := rt.NewGroup()

	name, _ := rt.NewActor()
	age, _ := rt.NewActor()
	require.NoError(t, g.Add("name", name))
	require.NoError(t, g.Add("age", age))

	var changes []string
	_, _ = g.On(KindChange, func(ev *Event) error {
		changes = append(changes, ev.Data.(*FieldChange).Field)
		return nil
	})

	_ = name.Update("ada")
	assert.Equal(t, []string{"name"}, changes)

	_ = rt.Batch(func() {
		_ = name.Update("grace")
		_ = age.Update(36)
	})
	assert.Equal(t, []string{"name", "age"}, changes)

	field, ok := g.Field("age")
	require.True(t, ok)
	assert.Same(t, age, field)

	g.Destroy()
	assert.Nil(t, age.Parent())
}
