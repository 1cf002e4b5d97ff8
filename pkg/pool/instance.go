package pool

import "fmt"

// State is the lifecycle state of an Instance.
type State uint8

const (
	// StateInactive is the transient state between a free list and the
	// active set, in either direction.
	StateInactive State = iota
	// StateActive means the instance was returned by Spawn and not yet recycled.
	StateActive
	// StatePooled means the instance sits in its prefab's free list.
	StatePooled
	// StateDestroyed means the host object was destroyed. Terminal.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StatePooled:
		return "pooled"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Instance is a host object constructed from a Prefab and tracked by the
// registry. The back-reference to the prefab lets Recycle find the right
// pool without the caller naming it.
type Instance struct {
	id     uint64
	prefab *Prefab
	obj    any

	// guarded by prefab.registry.mu
	state State
}

// ID returns the registry-unique instance id.
func (i *Instance) ID() uint64 { return i.id }

// Prefab returns the prefab the instance was constructed from.
func (i *Instance) Prefab() *Prefab { return i.prefab }

// Object returns the host object.
func (i *Instance) Object() any { return i.obj }

// State returns the current lifecycle state.
func (i *Instance) State() State {
	r := i.prefab.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	return i.state
}

// Active reports whether the instance is currently spawned.
func (i *Instance) Active() bool {
	return i.State() == StateActive
}

// Recycle is shorthand for i.Prefab().Registry().Recycle(i). A nil instance
// is handed to the default registry, if any, so its policy applies.
func (i *Instance) Recycle() error {
	if i == nil || i.prefab == nil || i.prefab.registry == nil {
		if d := Default(); d != nil {
			return d.Recycle(i)
		}
		return errNilInstance()
	}
	return i.prefab.registry.Recycle(i)
}

func (i *Instance) String() string {
	if i == nil {
		return "<nil instance>"
	}
	return fmt.Sprintf("%s/%d", i.prefab, i.id)
}
