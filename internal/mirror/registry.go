package mirror

import "github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"

// Registry maps component ids to their attributes. A Registry value is
// never modified in place: every mutation returns a new map, so older
// snapshots stay valid.
type Registry map[string]protocol.Attributes

// NewRegistry builds a registry holding exactly the given components
func NewRegistry(components protocol.Reset) Registry {
	r := make(Registry, len(components))
	for id, attrs := range components {
		r[id] = attrs.Clone()
	}
	return r
}

func (r Registry) clone() Registry {
	out := make(Registry, len(r)+1)
	for id, attrs := range r {
		out[id] = attrs
	}
	return out
}

// Component returns the attributes of a live component
func (r Registry) Component(id string) (protocol.Attributes, bool) {
	attrs, ok := r[id]
	return attrs, ok
}

// Attribute returns one attribute of a live component
func (r Registry) Attribute(id, name string) (interface{}, bool) {
	attrs, ok := r[id]
	if !ok {
		return nil, false
	}
	v, ok := attrs[name]
	return v, ok
}

// Reset replaces the whole registry; a nil payload empties it
func (r Registry) Reset(components protocol.Reset) Registry {
	return NewRegistry(components)
}

// Add inserts or overwrites a component
func (r Registry) Add(id string, attrs protocol.Attributes) Registry {
	out := r.clone()
	out[id] = attrs.Clone()
	return out
}

// Remove deletes a component; removing an absent id is a no-op
func (r Registry) Remove(id string) Registry {
	if _, ok := r[id]; !ok {
		return r
	}
	out := r.clone()
	delete(out, id)
	return out
}

// Change sets one attribute. An unknown component is a no-op: the
// change does not instantiate it.
func (r Registry) Change(id, name string, value interface{}) Registry {
	attrs, ok := r[id]
	if !ok {
		return r
	}
	out := r.clone()
	updated := attrs.Clone()
	updated[name] = value
	out[id] = updated
	return out
}

// Apply folds one sync message into the registry. Messages that do not
// touch the registry return it unchanged.
func (r Registry) Apply(msg protocol.Message) Registry {
	switch p := msg.Payload.(type) {
	case protocol.Reset:
		return r.Reset(p)
	case protocol.ComponentAdd:
		return r.Add(p.ID, p.Attributes)
	case protocol.ComponentRemove:
		return r.Remove(p.ID)
	case protocol.StateChange:
		return r.Change(p.ID, p.Name, p.Value)
	}
	return r
}
