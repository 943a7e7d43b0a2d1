package internal

import "slices"

// Action kinds used by the engine. Kinds are open-ended strings; these are
// the ones the engine itself publishes or listens to.
const (
	KindChange = "change"
	KindError  = "error"
	KindClose  = "close"
	KindIndex  = "index"
	KindLength = "length"
)

var defaultKinds = []string{KindChange}

// Event is built once per publish and shared by every listener of it.
type Event struct {
	Source *Actor
	Kinds  []string

	// Value is the cause of the publish: the transformed value for updates,
	// the error for error publishes.
	Value any

	// Data carries kind specific payloads such as a *Mutation.
	Data any
}

// Kind is the primary action kind of the event.
func (e *Event) Kind() string {
	if len(e.Kinds) == 0 {
		return KindChange
	}

	return e.Kinds[0]
}

func (e *Event) Is(kind string) bool {
	return slices.Contains(e.Kinds, kind)
}
