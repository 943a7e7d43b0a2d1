package internal

import (
	"fmt"
	"reflect"
	"slices"
)

// Array is the collection core: a reactive, exclusively owned sequence.
// Every mutator publishes exactly one *Mutation.
type Array struct {
	*Actor

	items []any

	// derived arrays are written by their translator only
	derived bool

	// listeners on reactive elements, created on first use
	elements map[*Actor]*elementLink
}

type elementLink struct {
	listener *Listener
	count    int
}

// node is implemented by actors and by everything embedding one.
type node interface {
	Node() *Actor
}

func (r *Runtime) NewArray(items []any, opts ...ActorOption) *Array {
	a := &Array{
		Actor: r.newActor(opts...),
		items: slices.Clone(items),
	}
	if a.items == nil {
		a.items = make([]any, 0)
	}

	a.state = StateReady
	a.retain(a.items...)
	a.onTeardown(a.releaseAll)

	return a
}

func (r *Runtime) newDerived(items []any) *Array {
	a := r.NewArray(nil)
	if items != nil {
		a.items = items
	}
	a.derived = true
	a.canClose = func() bool { return len(a.sources) == 0 }
	a.retain(a.items...)

	return a
}

// Get returns the element at i, or nil when out of range.
func (a *Array) Get(i int) any {
	a.rt.tracker.Track(a.Actor, KindIndex, KindLength)

	if i < 0 || i >= len(a.items) {
		return nil
	}

	return a.items[i]
}

func (a *Array) Len() int {
	a.rt.tracker.Track(a.Actor, KindLength)
	return len(a.items)
}

// Items returns a copy of the sequence.
func (a *Array) Items() []any {
	a.rt.tracker.Track(a.Actor, KindIndex, KindLength)
	return a.Peek()
}

// Peek returns a copy of the sequence without tracking.
func (a *Array) Peek() []any {
	out := make([]any, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Array) Derived() bool { return a.derived }

func (a *Array) writable() (bool, error) {
	if err := a.check(); err != nil {
		return false, err
	}

	if a.derived {
		return false, ErrReadOnly
	}

	return a.state != StateClosed, nil
}

func (a *Array) Set(i int, v any) error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.set(i, v)
}

func (a *Array) Push(vs ...any) error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.push(vs...)
}

func (a *Array) Unshift(vs ...any) error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.unshift(vs...)
}

// Pop removes the last element. It returns nil on an empty array.
func (a *Array) Pop() (any, error) {
	if ok, err := a.writable(); !ok {
		return nil, err
	}

	return a.pop()
}

// Shift removes the first element. It returns nil on an empty array.
func (a *Array) Shift() (any, error) {
	if ok, err := a.writable(); !ok {
		return nil, err
	}

	return a.shift()
}

// SetLength truncates the array or grows it with nil values.
func (a *Array) SetLength(n int) error {
	return a.Resize(n, nil)
}

// Resize is SetLength growing the array with fill.
func (a *Array) Resize(n int, fill any) error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.setLength(n, fill)
}

func (a *Array) Reverse() error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.reverse()
}

// Sort orders the array with a stable sort.
func (a *Array) Sort(cmp func(x, y any) int) error {
	if ok, err := a.writable(); !ok {
		return err
	}

	return a.sort(cmp)
}

// Splice removes deleteCount elements at start and inserts vs in their place.
// A negative start counts from the end.
func (a *Array) Splice(start, deleteCount int, vs ...any) ([]any, error) {
	if ok, err := a.writable(); !ok {
		return nil, err
	}

	return a.splice(start, deleteCount, vs...)
}

func (a *Array) emit(m *Mutation) error {
	return a.Publish(a, []string{m.Kind()}, m)
}

func (a *Array) set(i int, v any) error {
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, len(a.items))
	}

	old := a.items[i]
	a.items[i] = v

	a.retain(v)
	a.release(old)

	return a.emit(&Mutation{Op: OpSet, Index: i, Old: []any{old}, New: []any{v}})
}

func (a *Array) push(vs ...any) error {
	if len(vs) == 0 {
		return nil
	}

	at := len(a.items)
	a.items = append(a.items, vs...)
	a.retain(vs...)

	return a.emit(&Mutation{Op: OpAdd, Index: at, New: slices.Clone(vs)})
}

func (a *Array) unshift(vs ...any) error {
	if len(vs) == 0 {
		return nil
	}

	a.items = slices.Insert(a.items, 0, vs...)
	a.retain(vs...)

	return a.emit(&Mutation{Op: OpAdd, Index: 0, New: slices.Clone(vs)})
}

func (a *Array) pop() (any, error) {
	n := len(a.items)
	if n == 0 {
		return nil, nil
	}

	v := a.items[n-1]
	a.items[n-1] = nil
	a.items = a.items[:n-1]
	a.release(v)

	return v, a.emit(&Mutation{Op: OpRemove, Index: n - 1, Old: []any{v}})
}

func (a *Array) shift() (any, error) {
	if len(a.items) == 0 {
		return nil, nil
	}

	v := a.items[0]
	a.items = slices.Delete(a.items, 0, 1)
	a.release(v)

	return v, a.emit(&Mutation{Op: OpRemove, Index: 0, Old: []any{v}})
}

func (a *Array) setLength(n int, fill any) error {
	if n < 0 {
		return fmt.Errorf("%w: length %d", ErrIndexOutOfRange, n)
	}

	size := len(a.items)
	switch {
	case n == size:
		return nil

	case n < size:
		old := slices.Clone(a.items[n:])
		clear(a.items[n:])
		a.items = a.items[:n]
		a.release(old...)

		return a.emit(&Mutation{Op: OpSetLength, Index: n, Old: old})

	default:
		grown := make([]any, n-size)
		if fill != nil {
			for i := range grown {
				grown[i] = fill
			}
			a.retain(grown...)
		}
		a.items = append(a.items, grown...)

		return a.emit(&Mutation{Op: OpSetLength, Index: size, New: slices.Clone(grown)})
	}
}

func (a *Array) reverse() error {
	n := len(a.items)
	if n < 2 {
		return nil
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = n - 1 - i
	}

	return a.permute(OpReverse, perm)
}

func (a *Array) sort(cmp func(x, y any) int) error {
	if len(a.items) < 2 {
		return nil
	}

	perm := make([]int, len(a.items))
	for i := range perm {
		perm[i] = i
	}

	items := a.items
	slices.SortStableFunc(perm, func(i, j int) int {
		return cmp(items[i], items[j])
	})

	return a.permute(OpSort, perm)
}

// permute reorders the whole array so that new[i] = old[perm[i]].
func (a *Array) permute(op Op, perm []int) error {
	if len(perm) < 2 {
		return nil
	}

	next := make([]any, len(a.items))
	for i, from := range perm {
		next[i] = a.items[from]
	}
	a.items = next

	return a.emit(&Mutation{Op: op, Perm: perm})
}

func (a *Array) splice(start, deleteCount int, vs ...any) ([]any, error) {
	n := len(a.items)

	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	if deleteCount == 0 && len(vs) == 0 {
		return nil, nil
	}

	removed := slices.Clone(a.items[start : start+deleteCount])
	a.items = slices.Replace(a.items, start, start+deleteCount, vs...)

	a.retain(vs...)
	a.release(removed...)

	return removed, a.emit(&Mutation{Op: OpSplice, Index: start, Old: removed, New: slices.Clone(vs)})
}

// insertAt and removeAt pick the narrowest mutation for an edit at i.
func (a *Array) insertAt(i int, vs ...any) error {
	switch {
	case len(vs) == 0:
		return nil
	case i == len(a.items):
		return a.push(vs...)
	case i == 0:
		return a.unshift(vs...)
	}

	_, err := a.splice(i, 0, vs...)
	return err
}

func (a *Array) removeAt(i int) error {
	var err error

	switch i {
	case len(a.items) - 1:
		_, err = a.pop()
	case 0:
		_, err = a.shift()
	default:
		_, err = a.splice(i, 1)
	}

	return err
}

// edit replaces del elements at i with vs using the narrowest mutation.
func (a *Array) edit(i, del int, vs ...any) error {
	switch {
	case del == 0:
		return a.insertAt(i, vs...)
	case del == 1 && len(vs) == 0:
		return a.removeAt(i)
	}

	_, err := a.splice(i, del, vs...)
	return err
}

// watch subscribes an immediate listener of d to the mutations of src.
// touched is called when a reactive element of src changed in place.
func (d *Actor) watch(src *Array, name string, apply func(m *Mutation) error, touched func(el *Actor) error) error {
	l := &Listener{
		Name:      name,
		Target:    d,
		Immediate: true,
		Call: func(ev *Event) error {
			switch data := ev.Data.(type) {
			case *Mutation:
				return apply(data)
			case *ElementChange:
				if touched != nil {
					return touched(data.Element)
				}
			}

			return nil
		},
	}

	return d.linkTo(src.Actor, subscription{KindIndex, l}, subscription{KindLength, l})
}

// nodeOf returns the actor behind v, or nil when v is a plain value.
func nodeOf(v any) *Actor {
	n, ok := v.(node)
	if !ok {
		return nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}

	return n.Node()
}

func isElement(v any, el *Actor) bool {
	return nodeOf(v) == el
}

// retain starts fanning out the changes of reactive elements.
func (a *Array) retain(vs ...any) {
	for _, v := range vs {
		el := nodeOf(v)
		if el == nil || el == a.Actor {
			continue
		}

		if a.elements == nil {
			a.elements = make(map[*Actor]*elementLink)
		}

		if link, ok := a.elements[el]; ok {
			link.count++
			continue
		}

		l := &Listener{
			Name:   "element",
			Target: a.Actor,
			Call: func(ev *Event) error {
				return a.Publish(a, []string{KindIndex}, &ElementChange{Element: el, Event: ev})
			},
		}

		for _, kind := range []string{KindChange, KindIndex, KindLength} {
			_ = el.Subscribe(kind, l)
		}

		a.elements[el] = &elementLink{listener: l, count: 1}
	}
}

func (a *Array) release(vs ...any) {
	for _, v := range vs {
		el := nodeOf(v)
		if el == nil || a.elements == nil {
			continue
		}

		link, ok := a.elements[el]
		if !ok {
			continue
		}

		link.count--
		if link.count == 0 {
			el.Off("", link.listener)
			delete(a.elements, el)
		}
	}
}

func (a *Array) releaseAll() {
	for el, link := range a.elements {
		el.Off("", link.listener)
	}

	a.elements = nil
}
