package internal

// FieldChange is the payload of a Group publish.
type FieldChange struct {
	Field string
	Event *Event
}

// Group aggregates named member actors. Member publishes of one batch fold
// into a single change of the group carrying the last one.
type Group struct {
	*Actor

	fields  map[string]*Actor
	members map[*Actor]string
}

func (r *Runtime) NewGroup(opts ...ActorOption) *Group {
	g := &Group{
		Actor:   r.newActor(opts...),
		fields:  make(map[string]*Actor),
		members: make(map[*Actor]string),
	}
	g.state = StateReady

	g.onTeardown(func() {
		for member := range g.members {
			if member.parent == g {
				member.parent = nil
			}
		}
	})

	return g
}

// Add makes the group the parent of member under field.
func (g *Group) Add(field string, member *Actor) error {
	if err := g.check(); err != nil {
		return err
	}

	if prev, ok := g.fields[field]; ok {
		delete(g.members, prev)
		prev.parent = nil
	}

	g.fields[field] = member
	g.members[member] = field
	member.SetParent(g)

	return nil
}

func (g *Group) Field(name string) (*Actor, bool) {
	a, ok := g.fields[name]
	return a, ok
}

func (g *Group) Aggregate(child *Actor, ev *Event) error {
	field, ok := g.members[child]
	if !ok {
		return nil
	}

	return g.Publish(g, nil, &FieldChange{Field: field, Event: ev})
}
