package proact

import "github.com/AnatoleLucet/proact/internal"

func wrapAll[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func unwrapAll[T any](vs []any) []T {
	out := make([]T, len(vs))
	for i, v := range vs {
		out[i] = as[T](v)
	}
	return out
}

// Array is a reactive list. Derived arrays returned by Map, Filter, Slice and
// Concat follow their sources incrementally and cannot be written to.
type Array[T any] struct {
	array *internal.Array
}

func NewArray[T any](items ...T) *Array[T] {
	return &Array[T]{internal.GetRuntime().NewArray(wrapAll(items))}
}

// Get the element at i, or the zero value when out of range.
func (a *Array[T]) Get(i int) T { return as[T](a.array.Get(i)) }

func (a *Array[T]) Len() int { return a.array.Len() }

// Items returns a copy of the elements, tracking the whole array.
func (a *Array[T]) Items() []T { return unwrapAll[T](a.array.Items()) }

// Peek returns a copy of the elements without tracking.
func (a *Array[T]) Peek() []T { return unwrapAll[T](a.array.Peek()) }

func (a *Array[T]) Set(i int, v T) error { return a.array.Set(i, v) }

func (a *Array[T]) Push(vs ...T) error { return a.array.Push(wrapAll(vs)...) }

func (a *Array[T]) Unshift(vs ...T) error { return a.array.Unshift(wrapAll(vs)...) }

func (a *Array[T]) Pop() (T, error) {
	v, err := a.array.Pop()
	return as[T](v), err
}

func (a *Array[T]) Shift() (T, error) {
	v, err := a.array.Shift()
	return as[T](v), err
}

// SetLength truncates the array or grows it with zero values.
func (a *Array[T]) SetLength(n int) error {
	var zero T
	return a.array.Resize(n, zero)
}

func (a *Array[T]) Reverse() error { return a.array.Reverse() }

// Sort orders the array with a stable sort.
func (a *Array[T]) Sort(cmp func(x, y T) int) error {
	return a.array.Sort(func(x, y any) int { return cmp(as[T](x), as[T](y)) })
}

// Splice removes deleteCount elements at start, inserts vs in their place and
// returns the removed ones. A negative start counts from the end.
func (a *Array[T]) Splice(start, deleteCount int, vs ...T) ([]T, error) {
	removed, err := a.array.Splice(start, deleteCount, wrapAll(vs)...)
	return unwrapAll[T](removed), err
}

// OnMutation calls fn synchronously with every mutation of the array, in
// order, including the ones made inside a batch. Replaying them keeps a copy
// of the array in sync.
func (a *Array[T]) OnMutation(fn func(m *Mutation) error) (*Listener, error) {
	l := &Listener{
		Name:      "mutation",
		Immediate: true,
		Call: func(ev *Event) error {
			m, ok := ev.Data.(*Mutation)
			if !ok {
				return nil
			}
			return fn(m)
		},
	}

	for _, kind := range []string{KindIndex, KindLength} {
		if err := a.array.Subscribe(kind, l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

func (a *Array[T]) Off(l *Listener) { a.array.Off("", l) }

func (a *Array[T]) Node() *Actor { return a.array.Actor }

func (a *Array[T]) Close() error { return a.array.Close() }

func (a *Array[T]) Destroy() { a.array.Destroy() }

func (a *Array[T]) keep(pred func(v T) bool) func(any) bool {
	return func(v any) bool { return pred(as[T](v)) }
}

// Map derives an array holding fn of every element of a.
func Map[T, U any](a *Array[T], fn func(v T) U) (*Array[U], error) {
	d, err := a.array.Map(func(v any) any { return fn(as[T](v)) })
	if err != nil {
		return nil, err
	}

	return &Array[U]{d}, nil
}

// Filter derives an array of the elements passing keep, in order.
func (a *Array[T]) Filter(keep func(v T) bool) (*Array[T], error) {
	d, err := a.array.Filter(a.keep(keep))
	if err != nil {
		return nil, err
	}

	return &Array[T]{d}, nil
}

// Slice derives the elements in [begin, end). Negative positions count from
// the end.
func (a *Array[T]) Slice(begin, end int) (*Array[T], error) {
	d, err := a.array.Slice(begin, end)
	if err != nil {
		return nil, err
	}

	return &Array[T]{d}, nil
}

// SliceFrom derives the elements from begin to the end.
func (a *Array[T]) SliceFrom(begin int) (*Array[T], error) {
	d, err := a.array.SliceFrom(begin)
	if err != nil {
		return nil, err
	}

	return &Array[T]{d}, nil
}

// Concat derives a followed by others.
func (a *Array[T]) Concat(others ...*Array[T]) (*Array[T], error) {
	arrays := make([]*internal.Array, len(others))
	for i, o := range others {
		arrays[i] = o.array
	}

	d, err := a.array.Concat(arrays...)
	if err != nil {
		return nil, err
	}

	return &Array[T]{d}, nil
}

// Reduce folds a from the left.
func Reduce[T, A any](a *Array[T], fn func(acc A, v T) A, initial A) (*Scalar[A], error) {
	s, err := a.array.Reduce(func(acc, v any) any {
		return fn(as[A](acc), as[T](v))
	}, initial)
	if err != nil {
		return nil, err
	}

	return &Scalar[A]{s}, nil
}

// ReduceRight folds a from the right.
func ReduceRight[T, A any](a *Array[T], fn func(acc A, v T) A, initial A) (*Scalar[A], error) {
	s, err := a.array.ReduceRight(func(acc, v any) any {
		return fn(as[A](acc), as[T](v))
	}, initial)
	if err != nil {
		return nil, err
	}

	return &Scalar[A]{s}, nil
}

// IndexOf tracks the first index of v, or -1.
func (a *Array[T]) IndexOf(v T) (*Scalar[int], error) {
	return scalar[int](a.array.IndexOf(v))
}

// LastIndexOf tracks the last index of v, or -1.
func (a *Array[T]) LastIndexOf(v T) (*Scalar[int], error) {
	return scalar[int](a.array.LastIndexOf(v))
}

// FindIndex tracks the index of the first element matching pred, or -1.
func (a *Array[T]) FindIndex(pred func(v T) bool) (*Scalar[int], error) {
	return scalar[int](a.array.FindIndex(a.keep(pred)))
}

// Find tracks the first element matching pred, or the zero value.
func (a *Array[T]) Find(pred func(v T) bool) (*Scalar[T], error) {
	return scalar[T](a.array.Find(a.keep(pred)))
}

// Every tracks whether all elements match pred.
func (a *Array[T]) Every(pred func(v T) bool) (*Scalar[bool], error) {
	return scalar[bool](a.array.Every(a.keep(pred)))
}

// Some tracks whether any element matches pred.
func (a *Array[T]) Some(pred func(v T) bool) (*Scalar[bool], error) {
	return scalar[bool](a.array.Some(a.keep(pred)))
}

// Scalar is a single value derived from an array.
type Scalar[T any] struct {
	scalar *internal.Scalar
}

func scalar[T any](s *internal.Scalar, err error) (*Scalar[T], error) {
	if err != nil {
		return nil, err
	}

	return &Scalar[T]{s}, nil
}

// Get the current value, tracking the dependency if within a computed value.
func (s *Scalar[T]) Get() T { return as[T](s.scalar.Get()) }

func (s *Scalar[T]) Peek() T { return as[T](s.scalar.Peek()) }

// On calls fn when the value changes, once per batch.
func (s *Scalar[T]) On(fn func(v T) error) (*Listener, error) {
	return s.scalar.On(KindChange, func(ev *Event) error {
		return fn(as[T](ev.Value))
	})
}

func (s *Scalar[T]) Node() *Actor { return s.scalar.Actor }

func (s *Scalar[T]) Close() error { return s.scalar.Close() }
