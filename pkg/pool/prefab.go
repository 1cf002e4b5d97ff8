package pool

import (
	"fmt"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
)

// PrefabID is the opaque identity assigned to a prefab at registration.
// Two prefabs with equal templates still get distinct ids.
type PrefabID uint64

// Prefab is a registered template. It is the pool key and is never mutated
// after registration.
type Prefab struct {
	id       PrefabID
	name     string
	template any
	registry *Registry

	// guarded by registry.mu
	stats prefabStats
}

type prefabStats struct {
	constructed int64
	inUse       int64
	hits        int64
	misses      int64
	destroyed   int64
}

// ID returns the prefab's identity.
func (p *Prefab) ID() PrefabID { return p.id }

// Name returns the unique name the prefab was registered under.
func (p *Prefab) Name() string { return p.name }

// Template returns the value handed to Host.Construct.
func (p *Prefab) Template() any { return p.template }

// Registry returns the registry the prefab belongs to.
func (p *Prefab) Registry() *Registry { return p.registry }

func (p *Prefab) String() string {
	if p == nil {
		return "<nil prefab>"
	}
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

// Spawn is shorthand for p.Registry().Spawn(p, opts...).
func (p *Prefab) Spawn(opts ...SpawnOption) (*Instance, error) {
	if p == nil || p.registry == nil {
		return nil, errNilPrefab("spawn")
	}
	return p.registry.Spawn(p, opts...)
}

// CreatePool is shorthand for p.Registry().CreatePool(p, initial, opts...).
func (p *Prefab) CreatePool(initial int, opts ...PoolOption) error {
	if p == nil || p.registry == nil {
		return errNilPrefab("create_pool")
	}
	return p.registry.CreatePool(p, initial, opts...)
}

func errNilPrefab(op string) error {
	return errors.New(errors.ErrorTypeValidation, "prefab is nil").
		WithDetail("operation", op)
}
