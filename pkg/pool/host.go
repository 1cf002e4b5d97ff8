package pool

import "github.com/ajitpratap0/prefabpool/pkg/transform"

// Host is the engine-side object model the registry drives. Implementations
// own the actual entity values; the registry only passes them back.
type Host interface {
	// Construct creates a new, inactive object from the prefab's template.
	Construct(p *Prefab) (any, error)
	// Destroy permanently frees an object.
	Destroy(obj any)
	// SetActive toggles the object's active flag. Lifecycle hooks are fired
	// by the registry, not by the host.
	SetActive(obj any, active bool)
	// SetTransform places the object in the world.
	SetTransform(obj any, pos transform.Vec3, rot transform.Quat)
}

// Activatable is implemented by host objects that need to reset or release
// state when they are spawned or recycled.
type Activatable interface {
	OnActivate()
	OnDeactivate()
}

// RecycleOutcome describes what Recycle did with an instance.
type RecycleOutcome int

const (
	// OutcomePooled means the instance went back to its pool's free list.
	OutcomePooled RecycleOutcome = iota
	// OutcomeDestroyed means no pool (or no room) was available and the
	// instance was destroyed.
	OutcomeDestroyed
	// OutcomeRejected means the call was a double or untracked recycle.
	OutcomeRejected
)

func (o RecycleOutcome) String() string {
	switch o {
	case OutcomePooled:
		return "pooled"
	case OutcomeDestroyed:
		return "destroyed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Observer receives registry events, typically to export metrics.
// Methods are called without the registry lock held.
type Observer interface {
	// Spawned is called after every successful spawn.
	Spawned(prefab string, reused bool)
	// Recycled is called after every recycle call. prefab is empty when the
	// instance could not be attributed to a prefab.
	Recycled(prefab string, outcome RecycleOutcome)
	// Available reports the free-list length after it changed.
	Available(prefab string, n int)
}

type noopObserver struct{}

func (noopObserver) Spawned(string, bool) {}
func (noopObserver) Recycled(string, RecycleOutcome) {}
func (noopObserver) Available(string, int) {}
