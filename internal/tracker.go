package internal

// Dependent is whatever is being computed while the tracker is armed. Every
// actor read during that time registers the dependent as a subscriber.
type Dependent interface {
	DependOn(src *Actor, kinds ...string)
}

// Tracker holds the current-reader slot. It assumes strictly sequential,
// non-reentrant evaluation: a computation must return before the previous
// occupant is restored.
type Tracker struct {
	tracking bool

	current Dependent
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

func (t *Tracker) Current() Dependent {
	return t.current
}

func (t *Tracker) RunWith(d Dependent, fn func()) {
	prev := t.current
	prevTracking := t.tracking

	t.current = d
	t.tracking = true

	defer func() {
		t.current = prev
		t.tracking = prevTracking
	}()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

// Track registers the current dependent on src for the given kinds.
func (t *Tracker) Track(src *Actor, kinds ...string) {
	if t.ShouldTrack() {
		t.current.DependOn(src, kinds...)
	}
}

func (t *Tracker) ShouldTrack() bool {
	return t.current != nil && t.tracking
}
