package pool

import (
	"sync"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
)

var (
	defaultMu  sync.RWMutex
	defaultReg *Registry
)

// Init installs the process-wide registry used by the package-level
// functions. It can be called once per process.
func Init(host Host, opts ...Option) error {
	r, err := NewRegistry(host, opts...)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg != nil {
		return errors.New(errors.ErrorTypeConflict, "default registry already initialized")
	}
	defaultReg = r
	return nil
}

// Default returns the process-wide registry, or nil before Init.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}

func requireDefault(op string) (*Registry, error) {
	r := Default()
	if r == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "default registry not initialized").
			WithDetail("operation", op)
	}
	return r, nil
}

// RegisterPrefab registers a prefab with the default registry.
func RegisterPrefab(name string, template any) (*Prefab, error) {
	r, err := requireDefault("register_prefab")
	if err != nil {
		return nil, err
	}
	return r.RegisterPrefab(name, template)
}

// CreatePool creates a pool in the default registry.
func CreatePool(p *Prefab, initial int, opts ...PoolOption) error {
	r, err := requireDefault("create_pool")
	if err != nil {
		return err
	}
	return r.CreatePool(p, initial, opts...)
}

// Spawn spawns from the default registry.
func Spawn(p *Prefab, opts ...SpawnOption) (*Instance, error) {
	r, err := requireDefault("spawn")
	if err != nil {
		return nil, err
	}
	return r.Spawn(p, opts...)
}

// Recycle recycles through the default registry.
func Recycle(inst *Instance) error {
	r, err := requireDefault("recycle")
	if err != nil {
		return err
	}
	return r.Recycle(inst)
}
