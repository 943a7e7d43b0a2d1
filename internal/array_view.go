package internal

import (
	"math"
	"slices"
)

// Map derives an array holding fn of every element, kept in sync with a.
func (a *Array) Map(fn func(v any) any) (*Array, error) {
	items := make([]any, len(a.items))
	for i, v := range a.items {
		items[i] = fn(v)
	}

	d := a.rt.newDerived(items)

	mapAll := func(vs []any) []any {
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = fn(v)
		}
		return out
	}

	apply := func(m *Mutation) error {
		switch m.Op {
		case OpSet:
			return d.set(m.Index, fn(m.New[0]))
		case OpAdd:
			return d.insertAt(m.Index, mapAll(m.New)...)
		case OpRemove:
			return d.removeAt(m.Index)
		case OpReverse, OpSort:
			return d.permute(m.Op, m.Perm)
		default:
			return d.edit(m.Index, len(m.Old), mapAll(m.New)...)
		}
	}

	touched := func(el *Actor) error {
		for i, v := range a.items {
			if isElement(v, el) {
				if err := d.set(i, fn(v)); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := d.watch(a, "map", apply, touched); err != nil {
		return nil, err
	}

	return d, nil
}

// Filter derives an array of the elements of a passing keep, in order.
func (a *Array) Filter(keep func(v any) bool) (*Array, error) {
	f := &filterView{src: a, keep: keep}

	var items []any
	f.mask = make([]bool, len(a.items))
	for i, v := range a.items {
		if keep(v) {
			f.mask[i] = true
			items = append(items, v)
		}
	}

	f.counts = newCounts(f.mask)

	f.d = a.rt.newDerived(items)
	if err := f.d.watch(a, "filter", f.apply, f.touched); err != nil {
		return nil, err
	}

	return f.d, nil
}

// filterView keeps one flag per source element telling whether it is
// present in the derived array.
type filterView struct {
	src, d *Array
	keep   func(v any) bool
	mask   []bool
	counts counts
}

// pos is the derived position of source index i.
func (f *filterView) pos(i int) int {
	return f.counts.prefix(i)
}

// replace swaps mask[idx:end] for flags. Edits at the tail update the counts
// in place; any other edit already moves the whole mask and rebuilds them.
func (f *filterView) replace(idx, end int, flags []bool) {
	tail := end == len(f.mask)
	f.mask = slices.Replace(f.mask, idx, end, flags...)

	if !tail {
		f.counts = newCounts(f.mask)
		return
	}

	f.counts = f.counts[:idx]
	for _, ok := range flags {
		f.counts = f.counts.push(ok)
	}
}

func (f *filterView) split(vs []any) ([]bool, []any) {
	flags := make([]bool, len(vs))
	var passing []any

	for i, v := range vs {
		if f.keep(v) {
			flags[i] = true
			passing = append(passing, v)
		}
	}

	return flags, passing
}

func (f *filterView) apply(m *Mutation) error {
	switch m.Op {
	case OpSet:
		return f.reset(m.Index, m.New[0], true)

	case OpAdd:
		p := f.pos(m.Index)
		flags, passing := f.split(m.New)
		f.replace(m.Index, m.Index, flags)
		return f.d.insertAt(p, passing...)

	case OpRemove:
		kept := f.mask[m.Index]
		p := f.pos(m.Index)
		f.replace(m.Index, m.Index+1, nil)
		if !kept {
			return nil
		}
		return f.d.removeAt(p)

	case OpReverse, OpSort:
		return f.permute(m)

	default:
		idx, end := m.Index, m.Index+len(m.Old)
		p := f.pos(idx)
		gone := f.pos(end) - p
		flags, passing := f.split(m.New)
		f.replace(idx, end, flags)
		return f.d.edit(p, gone, passing...)
	}
}

// reset re-evaluates source index i now holding v.
func (f *filterView) reset(i int, v any, replace bool) error {
	was, now := f.mask[i], f.keep(v)
	p := f.pos(i)

	if was != now {
		f.mask[i] = now
		if now {
			f.counts.add(i, 1)
		} else {
			f.counts.add(i, -1)
		}
	}

	switch {
	case was && now:
		if !replace {
			return nil
		}
		return f.d.set(p, v)
	case was:
		return f.d.removeAt(p)
	case now:
		return f.d.insertAt(p, v)
	}

	return nil
}

func (f *filterView) permute(m *Mutation) error {
	old := make([]int, len(f.mask))
	n := 0
	for i, ok := range f.mask {
		if ok {
			old[i] = n
			n++
		}
	}

	mask := make([]bool, len(f.mask))
	perm := make([]int, 0, n)
	for i, from := range m.Perm {
		mask[i] = f.mask[from]
		if mask[i] {
			perm = append(perm, old[from])
		}
	}
	f.mask = mask
	f.counts = newCounts(mask)

	return f.d.permute(m.Op, perm)
}

func (f *filterView) touched(el *Actor) error {
	for i, v := range f.src.items {
		if isElement(v, el) {
			if err := f.reset(i, v, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// counts is a Fenwick tree over a mask: node i holds the number of set flags
// in [i&(i+1), i].
type counts []int

func newCounts(mask []bool) counts {
	t := make(counts, len(mask))
	for i, ok := range mask {
		if ok {
			t[i]++
		}
		if j := i | (i + 1); j < len(t) {
			t[j] += t[i]
		}
	}
	return t
}

// prefix is the number of set flags in [0, n).
func (t counts) prefix(n int) int {
	s := 0
	for i := n - 1; i >= 0; i = i&(i+1) - 1 {
		s += t[i]
	}
	return s
}

func (t counts) add(i, d int) {
	for ; i < len(t); i |= i + 1 {
		t[i] += d
	}
}

// push appends one flag.
func (t counts) push(ok bool) counts {
	n := len(t)
	v := t.prefix(n) - t.prefix(n&(n+1))
	if ok {
		v++
	}
	return append(t, v)
}

// sliceRange resolves begin and end against length n. Negative positions
// count from the end.
func sliceRange(begin, end, n int) (int, int) {
	rel := func(x int) int {
		if x < 0 {
			return max(n+x, 0)
		}
		return min(x, n)
	}

	b, e := rel(begin), rel(end)
	return b, max(e, b)
}

// Slice derives the window [begin, end) of a. Negative positions count from
// the end of a, and are re-resolved as a changes length.
func (a *Array) Slice(begin, end int) (*Array, error) {
	s := &sliceView{src: a, begin: begin, end: end, size: len(a.items)}

	b, e := sliceRange(begin, end, len(a.items))
	s.d = a.rt.newDerived(slices.Clone(a.items[b:e]))

	if err := s.d.watch(a, "slice", s.apply, nil); err != nil {
		return nil, err
	}

	return s.d, nil
}

// SliceFrom derives the window starting at begin up to the end of a.
func (a *Array) SliceFrom(begin int) (*Array, error) {
	return a.Slice(begin, math.MaxInt)
}

type sliceView struct {
	src, d     *Array
	begin, end int

	// source length the window was last resolved against
	size int
}

func (s *sliceView) apply(m *Mutation) error {
	items := s.src.items
	ob, oe := sliceRange(s.begin, s.end, s.size)
	nb, ne := sliceRange(s.begin, s.end, len(items))
	s.size = len(items)

	var idx, r, k int
	switch m.Op {
	case OpSet:
		if m.Index < nb || m.Index >= ne {
			return nil
		}
		return s.d.set(m.Index-nb, m.New[0])

	case OpReverse, OpSort:
		perm := make([]int, ne-nb)
		for j := range perm {
			from := m.Perm[nb+j]
			if from < nb || from >= ne {
				return s.d.edit(0, len(s.d.items), slices.Clone(items[nb:ne])...)
			}
			perm[j] = from - nb
		}
		return s.d.permute(m.Op, perm)

	case OpAdd:
		idx, r, k = m.Index, 0, len(m.New)
	case OpRemove:
		idx, r, k = m.Index, 1, 0
	default:
		idx, r, k = m.Index, len(m.Old), len(m.New)
	}

	oldSize, newSize := oe-ob, ne-nb

	// unchanged head of the window
	prefix := 0
	if nb == ob {
		prefix = max(min(idx, ne, oe)-nb, 0)
	}

	// unchanged tail of the window
	suffix := 0
	if ne == oe+k-r {
		suffix = max(ne-max(idx+k, nb, ob+k-r), 0)
		suffix = min(suffix, newSize-prefix, oldSize-prefix)
	}

	return s.d.edit(prefix, oldSize-prefix-suffix, slices.Clone(items[nb+prefix:ne-suffix])...)
}

// Concat derives the concatenation of a and others.
func (a *Array) Concat(others ...*Array) (*Array, error) {
	c := &concatView{ops: append([]*Array{a}, others...)}

	var items []any
	c.sizes = make([]int, len(c.ops))
	for i, op := range c.ops {
		items = append(items, op.items...)
		c.sizes[i] = len(op.items)
	}

	c.d = a.rt.newDerived(items)

	for i, op := range c.ops {
		apply := func(m *Mutation) error { return c.apply(i, m) }
		if err := c.d.watch(op, "concat", apply, nil); err != nil {
			return nil, err
		}
	}

	return c.d, nil
}

type concatView struct {
	d   *Array
	ops []*Array

	// operand lengths as currently reflected in d
	sizes []int
}

func (c *concatView) apply(k int, m *Mutation) error {
	off := 0
	for _, n := range c.sizes[:k] {
		off += n
	}
	c.sizes[k] += len(m.New) - len(m.Old)

	switch m.Op {
	case OpSet:
		return c.d.set(off+m.Index, m.New[0])
	case OpAdd:
		return c.d.insertAt(off+m.Index, m.New...)
	case OpRemove:
		return c.d.removeAt(off + m.Index)
	case OpReverse, OpSort:
		perm := make([]int, len(c.d.items))
		for i := range perm {
			perm[i] = i
		}
		for j, from := range m.Perm {
			perm[off+j] = off + from
		}
		return c.d.permute(m.Op, perm)
	default:
		return c.d.edit(off+m.Index, len(m.Old), m.New...)
	}
}
