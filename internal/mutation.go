package internal

// Op is the operation tag of a collection mutation.
type Op int

const (
	OpSet Op = iota
	OpAdd
	OpRemove
	OpSetLength
	OpReverse
	OpSort
	OpSplice
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpSetLength:
		return "setLength"
	case OpReverse:
		return "reverse"
	case OpSort:
		return "sort"
	case OpSplice:
		return "splice"
	default:
		return "unknown"
	}
}

// Mutation describes one edit of a collection.
//
//   - set: Old and New hold the single replaced value at Index.
//   - add: New was inserted at Index, which is 0 (prepend) or the old length.
//   - remove: Old[0] was removed at Index, which is 0 (shift) or the new length.
//   - setLength: the length moved to or from Index; Old holds the truncated
//     tail, New the values appended by growth.
//   - reverse, sort: every element moved; new[i] = old[Perm[i]].
//   - splice: Old was replaced by New starting at Index.
type Mutation struct {
	Op    Op
	Index int
	Old   []any
	New   []any
	Perm  []int
}

// Kind is the action kind the mutation is published on: index when the
// element count is unchanged, length otherwise.
func (m *Mutation) Kind() string {
	switch m.Op {
	case OpSet, OpReverse, OpSort:
		return KindIndex
	case OpSplice:
		if len(m.Old) == len(m.New) {
			return KindIndex
		}
	}

	return KindLength
}

// ElementChange is published on the index kind of a collection when one of
// its reactive elements changes.
type ElementChange struct {
	Element *Actor
	Event   *Event
}
