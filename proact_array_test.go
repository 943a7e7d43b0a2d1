package proact

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	t.Run("typed mutators", func(t *testing.T) {
		a := NewArray(3, 1, 2)

		require.NoError(t, a.Sort(cmp.Compare[int]))
		assert.Equal(t, []int{1, 2, 3}, a.Peek())

		removed, err := a.Splice(1, 1, 20, 21)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, removed)
		assert.Equal(t, []int{1, 20, 21, 3}, a.Peek())

		require.NoError(t, a.SetLength(6))
		assert.Equal(t, []int{1, 20, 21, 3, 0, 0}, a.Peek())

		v, err := a.Pop()
		require.NoError(t, err)
		assert.Equal(t, 0, v)
		assert.Equal(t, 5, a.Len())
	})

	t.Run("mutation listeners", func(t *testing.T) {
		a := NewArray("a", "b")

		var ops []Op
		_, err := a.OnMutation(func(m *Mutation) error {
			ops = append(ops, m.Op)
			return nil
		})
		require.NoError(t, err)

		_ = a.Push("c")
		_ = a.Reverse()
		_ = a.Set(0, "z")

		assert.Equal(t, []Op{OpAdd, OpReverse, OpSet}, ops)
	})

	t.Run("mutation listeners see every edit of a batch", func(t *testing.T) {
		a := NewArray(1, 2)
		mirror := []int{1, 2}

		_, err := a.OnMutation(func(m *Mutation) error {
			switch m.Op {
			case OpAdd:
				for i, v := range m.New {
					mirror = slices.Insert(mirror, m.Index+i, v.(int))
				}
			case OpRemove:
				mirror = slices.Delete(mirror, m.Index, m.Index+1)
			}
			return nil
		})
		require.NoError(t, err)

		require.NoError(t, Batch(func() {
			_ = a.Push(10)
			_ = a.Push(12)
			_, _ = a.Shift()
		}))

		assert.Equal(t, []int{2, 10, 12}, a.Peek())
		assert.Equal(t, a.Peek(), mirror)
	})

	t.Run("computed values over arrays", func(t *testing.T) {
		todos := NewArray("write", "test")
		summary := NewComputed(func() string {
			return fmt.Sprintf("%d: %s", todos.Len(), strings.Join(todos.Items(), ", "))
		})

		_ = todos.Push("ship")
		assert.Equal(t, "3: write, test, ship", summary.Get())
	})

	t.Run("derived views are read-only", func(t *testing.T) {
		a := NewArray(1, 2, 3)
		d, err := a.Slice(0, 2)
		require.NoError(t, err)

		assert.ErrorIs(t, d.Push(4), ErrReadOnly)
		assert.Equal(t, []int{1, 2}, d.Peek())
	})

	t.Run("views chain", func(t *testing.T) {
		a := NewArray(1, 2, 3, 4, 5, 6)

		even, _ := a.Filter(func(n int) bool { return n%2 == 0 })
		squares, _ := Map(even, func(n int) int { return n * n })
		top, _ := squares.Slice(-2, 1<<31)
		total, _ := Reduce(squares, func(acc, n int) int { return acc + n }, 0)

		assert.Equal(t, []int{4, 16, 36}, squares.Peek())
		assert.Equal(t, []int{16, 36}, top.Peek())
		assert.Equal(t, 56, total.Get())

		_ = a.Push(8)
		_, _ = a.Shift()

		assert.Equal(t, []int{4, 16, 36, 64}, squares.Peek())
		assert.Equal(t, []int{36, 64}, top.Peek())
		assert.Equal(t, 120, total.Get())
	})

	t.Run("scalars", func(t *testing.T) {
		words := NewArray("go", "is", "fun", "go")

		first, _ := words.IndexOf("go")
		last, _ := words.LastIndexOf("go")
		long, _ := words.Find(func(w string) bool { return len(w) > 2 })
		at, _ := words.FindIndex(func(w string) bool { return len(w) > 2 })
		short, _ := words.Every(func(w string) bool { return len(w) < 4 })
		empty, _ := words.Some(func(w string) bool { return w == "" })
		joined, _ := ReduceRight(words, func(acc string, w string) string { return acc + w }, "")

		assert.Equal(t, 0, first.Get())
		assert.Equal(t, 3, last.Get())
		assert.Equal(t, "fun", long.Get())
		assert.Equal(t, 2, at.Get())
		assert.True(t, short.Get())
		assert.False(t, empty.Get())
		assert.Equal(t, "gofunisgo", joined.Get())

		_ = words.Set(2, "really")
		assert.Equal(t, "really", long.Get())
		assert.False(t, short.Get())

		_, _ = words.Shift()
		assert.Equal(t, 2, first.Get())
		assert.Equal(t, 2, last.Get())
	})

	t.Run("scalar listeners", func(t *testing.T) {
		a := NewArray(1, 2)
		size, _ := Reduce(a, func(acc, _ int) int { return acc + 1 }, 0)

		var got []int
		_, _ = size.On(func(n int) error {
			got = append(got, n)
			return nil
		})

		_ = Batch(func() {
			_ = a.Push(3)
			_ = a.Push(4)
		})
		_ = a.Set(0, 10)

		assert.Equal(t, []int{4}, got)
	})

	t.Run("reactive elements", func(t *testing.T) {
		done := NewProperty(false)
		other := NewProperty(true)
		items := NewArray(done, other)

		open, _ := items.Filter(func(p *Property[bool]) bool { return !p.Peek() })
		assert.Equal(t, 1, open.Len())

		_ = done.Set(true)
		assert.Equal(t, 0, open.Len())

		_ = other.Set(false)
		require.Equal(t, 1, open.Len())
		assert.Same(t, other, open.Get(0))
	})
}
