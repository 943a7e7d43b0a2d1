package internal

import (
	"reflect"
)

// Scalar is a single value derived from an array.
type Scalar struct {
	*Actor
}

func (r *Runtime) newScalar(v any) *Scalar {
	s := &Scalar{Actor: r.newActor(WithInitial(v))}
	s.state = StateReady
	s.canClose = func() bool { return len(s.sources) == 0 }

	return s
}

func (s *Scalar) set(v any) error {
	if Equal(s.value, v) {
		return nil
	}

	s.value = v
	return s.Publish(v, nil, nil)
}

// Equal compares two values of the same dynamic type, falling back to a deep
// comparison for types that are not comparable.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}

// Reduce folds a from the left, starting with initial. Appends are folded
// into the current result; any other change refolds the array.
func (a *Array) Reduce(fn func(acc, v any) any, initial any) (*Scalar, error) {
	fold := func(acc any, vs []any) any {
		for _, v := range vs {
			acc = fn(acc, v)
		}
		return acc
	}

	s := a.rt.newScalar(fold(initial, a.items))

	apply := func(m *Mutation) error {
		if len(m.Old) == 0 && len(m.New) > 0 && m.Index+len(m.New) == len(a.items) {
			return s.set(fold(s.value, m.New))
		}
		return s.set(fold(initial, a.items))
	}
	touched := func(*Actor) error { return s.set(fold(initial, a.items)) }

	if err := s.watch(a, "reduce", apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

// ReduceRight folds a from the right, starting with initial. Prepends are
// folded into the current result.
func (a *Array) ReduceRight(fn func(acc, v any) any, initial any) (*Scalar, error) {
	fold := func(acc any, vs []any) any {
		for i := len(vs) - 1; i >= 0; i-- {
			acc = fn(acc, vs[i])
		}
		return acc
	}

	s := a.rt.newScalar(fold(initial, a.items))

	apply := func(m *Mutation) error {
		if m.Op == OpAdd && m.Index == 0 {
			return s.set(fold(s.value, m.New))
		}
		return s.set(fold(initial, a.items))
	}
	touched := func(*Actor) error { return s.set(fold(initial, a.items)) }

	if err := s.watch(a, "reduceRight", apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

// IndexOf tracks the first index of v in a, or -1.
func (a *Array) IndexOf(v any) (*Scalar, error) {
	return a.trackFirst("indexOf", func(x any) bool { return Equal(x, v) }, false)
}

// FindIndex tracks the first index of an element matching pred, or -1.
func (a *Array) FindIndex(pred func(v any) bool) (*Scalar, error) {
	return a.trackFirst("findIndex", pred, false)
}

// Find tracks the first element matching pred, or nil.
func (a *Array) Find(pred func(v any) bool) (*Scalar, error) {
	return a.trackFirst("find", pred, true)
}

// LastIndexOf tracks the last index of v in a, or -1.
func (a *Array) LastIndexOf(v any) (*Scalar, error) {
	t := &lastIndex{src: a, match: func(x any) bool { return Equal(x, v) }}
	t.cur = t.scanBack(len(a.items) - 1)

	s := a.rt.newScalar(t.cur)

	apply := func(m *Mutation) error {
		t.apply(m)
		return s.set(t.cur)
	}
	touched := func(*Actor) error {
		t.cur = t.scanBack(len(a.items) - 1)
		return s.set(t.cur)
	}

	if err := s.watch(a, "lastIndexOf", apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

func (a *Array) trackFirst(name string, match func(v any) bool, element bool) (*Scalar, error) {
	t := &firstIndex{src: a, match: match}
	t.cur = t.scan(0)

	value := func() any {
		if !element {
			return t.cur
		}
		if t.cur < 0 {
			return nil
		}
		return a.items[t.cur]
	}

	s := a.rt.newScalar(value())

	apply := func(m *Mutation) error {
		t.apply(m)
		return s.set(value())
	}
	touched := func(*Actor) error {
		t.cur = t.scan(0)
		return s.set(value())
	}

	if err := s.watch(a, name, apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

func firstMatch(vs []any, match func(any) bool) int {
	for i, v := range vs {
		if match(v) {
			return i
		}
	}
	return -1
}

func lastMatch(vs []any, match func(any) bool) int {
	for i := len(vs) - 1; i >= 0; i-- {
		if match(vs[i]) {
			return i
		}
	}
	return -1
}

// firstIndex maintains the first matching position of src.
type firstIndex struct {
	src   *Array
	match func(v any) bool
	cur   int
}

func (t *firstIndex) scan(from int) int {
	if from >= len(t.src.items) {
		return -1
	}

	if i := firstMatch(t.src.items[from:], t.match); i >= 0 {
		return from + i
	}
	return -1
}

func (t *firstIndex) apply(m *Mutation) {
	switch m.Op {
	case OpSet:
		i, ok := m.Index, t.match(m.New[0])
		switch {
		case t.cur == i && !ok:
			t.cur = t.scan(i + 1)
		case ok && (t.cur < 0 || i < t.cur):
			t.cur = i
		}

	case OpAdd:
		j := firstMatch(m.New, t.match)
		switch {
		case m.Index == 0 && j >= 0:
			t.cur = j
		case m.Index == 0 && t.cur >= 0:
			t.cur += len(m.New)
		case m.Index > 0 && t.cur < 0 && j >= 0:
			t.cur = m.Index + j
		}

	case OpRemove:
		switch {
		case m.Index == 0 && t.cur == 0:
			t.cur = t.scan(0)
		case m.Index == 0 && t.cur > 0:
			t.cur--
		case m.Index > 0 && t.cur == m.Index:
			t.cur = -1
		}

	case OpSetLength:
		if len(m.Old) > 0 {
			if t.cur >= m.Index {
				t.cur = -1
			}
			return
		}
		if t.cur < 0 {
			if j := firstMatch(m.New, t.match); j >= 0 {
				t.cur = m.Index + j
			}
		}

	case OpReverse, OpSort:
		t.cur = t.scan(0)

	case OpSplice:
		idx, r, k := m.Index, len(m.Old), len(m.New)
		if t.cur >= 0 && t.cur < idx {
			return
		}

		j := firstMatch(m.New, t.match)
		switch {
		case j >= 0:
			t.cur = idx + j
		case t.cur < 0:
		case t.cur >= idx+r:
			t.cur += k - r
		default:
			t.cur = t.scan(idx + k)
		}
	}
}

// lastIndex maintains the last matching position of src.
type lastIndex struct {
	src   *Array
	match func(v any) bool
	cur   int
}

func (t *lastIndex) scanBack(from int) int {
	if from < 0 {
		return -1
	}

	return lastMatch(t.src.items[:from+1], t.match)
}

func (t *lastIndex) apply(m *Mutation) {
	switch m.Op {
	case OpSet:
		i, ok := m.Index, t.match(m.New[0])
		switch {
		case t.cur == i && !ok:
			t.cur = t.scanBack(i - 1)
		case ok && i > t.cur:
			t.cur = i
		}

	case OpAdd:
		j := lastMatch(m.New, t.match)
		switch {
		case m.Index == 0 && t.cur >= 0:
			t.cur += len(m.New)
		case m.Index == 0:
			t.cur = j
		case j >= 0:
			t.cur = m.Index + j
		}

	case OpRemove:
		switch {
		case m.Index == 0 && t.cur == 0:
			t.cur = -1
		case m.Index == 0 && t.cur > 0:
			t.cur--
		case m.Index > 0 && t.cur == m.Index:
			t.cur = t.scanBack(m.Index - 1)
		}

	case OpSetLength:
		if len(m.Old) > 0 {
			if t.cur >= m.Index {
				t.cur = t.scanBack(m.Index - 1)
			}
			return
		}
		if j := lastMatch(m.New, t.match); j >= 0 {
			t.cur = m.Index + j
		}

	case OpReverse, OpSort:
		t.cur = t.scanBack(len(t.src.items) - 1)

	case OpSplice:
		idx, r, k := m.Index, len(m.Old), len(m.New)
		if t.cur >= idx+r {
			t.cur += k - r
			return
		}

		if j := lastMatch(m.New, t.match); j >= 0 {
			t.cur = idx + j
		} else if t.cur >= idx {
			t.cur = t.scanBack(idx - 1)
		}
	}
}

// Every tracks whether all elements of a match pred.
func (a *Array) Every(pred func(v any) bool) (*Scalar, error) {
	c := &counter{src: a, pred: func(v any) bool { return !pred(v) }}
	c.recount()

	s := a.rt.newScalar(c.n == 0)

	apply := func(m *Mutation) error {
		c.apply(m)
		return s.set(c.n == 0)
	}
	touched := func(*Actor) error {
		c.recount()
		return s.set(c.n == 0)
	}

	if err := s.watch(a, "every", apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

// Some tracks whether any element of a matches pred.
func (a *Array) Some(pred func(v any) bool) (*Scalar, error) {
	c := &counter{src: a, pred: pred}
	c.recount()

	s := a.rt.newScalar(c.n > 0)

	apply := func(m *Mutation) error {
		c.apply(m)
		return s.set(c.n > 0)
	}
	touched := func(*Actor) error {
		c.recount()
		return s.set(c.n > 0)
	}

	if err := s.watch(a, "some", apply, touched); err != nil {
		return nil, err
	}

	return s, nil
}

// counter maintains how many elements of src match pred.
type counter struct {
	src  *Array
	pred func(v any) bool
	n    int
}

func (c *counter) count(vs []any) int {
	n := 0
	for _, v := range vs {
		if c.pred(v) {
			n++
		}
	}
	return n
}

func (c *counter) recount() { c.n = c.count(c.src.items) }

func (c *counter) apply(m *Mutation) {
	c.n += c.count(m.New) - c.count(m.Old)
}
