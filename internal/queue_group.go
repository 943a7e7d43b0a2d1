package internal

import "fmt"

// QueueGroup is an ordered set of lanes. Draining a later lane may feed work
// back into an earlier one; the group always returns to the earliest lane
// holding work before moving forward.
type QueueGroup struct {
	lanes []*Queue
	index map[string]int

	draining bool
}

func NewQueueGroup(names []string) *QueueGroup {
	g := &QueueGroup{
		lanes: make([]*Queue, 0, len(names)),
		index: make(map[string]int, len(names)),
	}

	for i, name := range names {
		g.lanes = append(g.lanes, NewQueue(name))
		g.index[name] = i
	}

	return g
}

func (g *QueueGroup) Lane(name string) (*Queue, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}

	return g.lanes[i], true
}

func (g *QueueGroup) Lanes() []*Queue { return g.lanes }

func (g *QueueGroup) Empty() bool {
	for _, q := range g.lanes {
		if !q.Empty() {
			return false
		}
	}

	return true
}

// Drain runs the lanes in order starting at start (the first lane when empty).
// After each lane, lanes up to and including it are checked again and the
// drain resumes from the earliest one that received work.
func (g *QueueGroup) Drain(start string) error {
	if g.draining {
		return nil
	}

	i := 0
	if start != "" {
		idx, ok := g.index[start]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLane, start)
		}
		i = idx
	}

	g.draining = true
	defer func() { g.draining = false }()

	for i < len(g.lanes) {
		if err := g.lanes[i].Drain(false); err != nil {
			return err
		}

		next := i + 1
		for j := 0; j <= i; j++ {
			if !g.lanes[j].Empty() {
				next = j
				break
			}
		}
		i = next
	}

	return nil
}
