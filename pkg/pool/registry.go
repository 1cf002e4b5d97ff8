package pool

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/logger"
)

// Registry maps prefabs to their pools and drives the host through spawn
// and recycle.
type Registry struct {
	host     Host
	logger   *zap.Logger
	observer Observer
	policy   RecyclePolicy
	autoPool bool

	mu           sync.Mutex
	nextPrefab   PrefabID
	nextInstance uint64
	prefabs      map[PrefabID]*Prefab
	byName       map[string]*Prefab
	pools        map[PrefabID]*freeList
}

// PoolSpec describes one pool to pre-warm by prefab name.
type PoolSpec struct {
	Prefab  string
	Initial int
	MaxSize int
}

// NewRegistry creates an empty registry bound to host.
func NewRegistry(host Host, opts ...Option) (*Registry, error) {
	if host == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "host is nil")
	}
	r := &Registry{
		host:     host,
		logger:   logger.Get(),
		observer: noopObserver{},
		policy:   PolicyWarn,
		prefabs:  make(map[PrefabID]*Prefab),
		byName:   make(map[string]*Prefab),
		pools:    make(map[PrefabID]*freeList),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("component", "pool_registry"))
	return r, nil
}

// Host returns the host the registry drives.
func (r *Registry) Host() Host { return r.host }

// Policy returns the recycle misuse policy.
func (r *Registry) Policy() RecyclePolicy { return r.policy }

// RegisterPrefab assigns a new identity to template under a unique name.
func (r *Registry) RegisterPrefab(name string, template any) (*Prefab, error) {
	if name == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "prefab name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, errors.New(errors.ErrorTypeConflict, fmt.Sprintf("prefab %s already registered", name))
	}

	r.nextPrefab++
	p := &Prefab{
		id:       r.nextPrefab,
		name:     name,
		template: template,
		registry: r,
	}
	r.prefabs[p.id] = p
	r.byName[name] = p

	r.logger.Info("prefab registered", zap.String("prefab", name), zap.Uint64("prefab_id", uint64(p.id)))
	return p, nil
}

// PrefabByName looks up a registered prefab.
func (r *Registry) PrefabByName(name string) (*Prefab, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	return p, ok
}

// Prefabs returns all registered prefabs in registration order.
func (r *Registry) Prefabs() []*Prefab {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Prefab, 0, len(r.prefabs))
	for _, p := range r.prefabs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// HasPool reports whether a pool exists for p.
func (r *Registry) HasPool(p *Prefab) bool {
	if p == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pools[p.id]
	return ok && p.registry == r
}

// CreatePool registers a pool for p holding initial freshly constructed,
// inactive instances. It is a no-op when a pool already exists. If the host
// fails to construct one of the instances, the ones already built are
// destroyed and no pool is registered.
func (r *Registry) CreatePool(p *Prefab, initial int, opts ...PoolOption) error {
	if err := r.checkPrefab(p, "create_pool"); err != nil {
		return err
	}
	if initial < 0 {
		return errors.New(errors.ErrorTypeValidation, "initial count cannot be negative").
			WithDetail("prefab", p.name).
			WithDetail("initial", initial)
	}
	var po poolOptions
	for _, opt := range opts {
		opt(&po)
	}
	if po.maxSize < 0 {
		return errors.New(errors.ErrorTypeValidation, "max size cannot be negative").
			WithDetail("prefab", p.name)
	}
	if po.maxSize > 0 && initial > po.maxSize {
		return errors.New(errors.ErrorTypeValidation, "initial count exceeds max size").
			WithDetail("prefab", p.name).
			WithDetail("initial", initial).
			WithDetail("max_size", po.maxSize)
	}

	if r.HasPool(p) {
		r.logger.Debug("pool already exists", zap.String("prefab", p.name))
		return nil
	}

	built := make([]*Instance, 0, initial)
	for i := 0; i < initial; i++ {
		inst, err := r.construct(p)
		if err != nil {
			r.destroyAll(p, built)
			return err
		}
		built = append(built, inst)
	}

	r.mu.Lock()
	if _, exists := r.pools[p.id]; exists {
		// Lost a race with another CreatePool or an auto-pooling Spawn.
		r.mu.Unlock()
		r.destroyAll(p, built)
		return nil
	}
	l := newFreeList(p, initial, po.maxSize)
	for _, inst := range built {
		inst.state = StatePooled
		l.free = append(l.free, inst)
	}
	r.pools[p.id] = l
	r.mu.Unlock()

	r.logger.Info("pool created",
		zap.String("prefab", p.name),
		zap.Int("initial", initial),
		zap.Int("max_size", po.maxSize))
	r.observer.Available(p.name, initial)
	return nil
}

// Spawn returns an active instance of p. It reuses the most recently
// recycled instance when the pool has one and constructs a new one
// otherwise. The instance is positioned (origin and identity by default)
// before it is activated, and its OnActivate hook runs exactly once.
func (r *Registry) Spawn(p *Prefab, opts ...SpawnOption) (*Instance, error) {
	if err := r.checkPrefab(p, "spawn"); err != nil {
		return nil, err
	}
	so := defaultSpawnOptions()
	for _, opt := range opts {
		opt(&so)
	}

	var (
		inst      *Instance
		available = -1
		created   bool
	)
	r.mu.Lock()
	l, pooled := r.pools[p.id]
	if !pooled && r.autoPool {
		l = newFreeList(p, 0, 0)
		r.pools[p.id] = l
		pooled, created = true, true
	}
	if pooled {
		if got, ok := l.pop(); ok {
			inst = got
			inst.state = StateInactive
			available = l.len()
		}
	}
	r.mu.Unlock()

	if created {
		r.logger.Info("pool created on first spawn", zap.String("prefab", p.name))
	}

	reused := inst != nil
	if !reused {
		var err error
		inst, err = r.construct(p)
		if err != nil {
			return nil, err
		}
	}

	r.host.SetTransform(inst.obj, so.position, so.rotation)

	r.mu.Lock()
	inst.state = StateActive
	p.stats.inUse++
	if reused {
		p.stats.hits++
	} else {
		p.stats.misses++
	}
	r.mu.Unlock()

	r.host.SetActive(inst.obj, true)
	if a, ok := inst.obj.(Activatable); ok {
		a.OnActivate()
	}

	r.observer.Spawned(p.name, reused)
	if available >= 0 {
		r.observer.Available(p.name, available)
	}
	return inst, nil
}

// Recycle deactivates inst, firing its OnDeactivate hook exactly once, and
// returns it to its prefab's pool. Without a pool, or when the pool is at
// its max size, the instance is destroyed. Recycling an instance that is
// not active is handled according to the registry's RecyclePolicy and never
// inserts the instance twice.
func (r *Registry) Recycle(inst *Instance) error {
	if inst == nil {
		return r.reject("", errNilInstance())
	}
	p := inst.prefab
	if p == nil || p.registry != r {
		return r.reject("", errors.New(errors.ErrorTypeValidation, "instance is not tracked by this registry").
			WithDetail("instance", inst.id))
	}

	r.mu.Lock()
	if inst.state != StateActive {
		state := inst.state
		r.mu.Unlock()
		return r.reject(p.name, errors.New(errors.ErrorTypeConflict, "instance is not active").
			WithDetail("prefab", p.name).
			WithDetail("instance", inst.id).
			WithDetail("state", state.String()))
	}
	inst.state = StateInactive
	p.stats.inUse--
	r.mu.Unlock()

	r.host.SetActive(inst.obj, false)
	if a, ok := inst.obj.(Activatable); ok {
		a.OnDeactivate()
	}

	available := -1
	r.mu.Lock()
	l, pooled := r.pools[p.id]
	kept := pooled && l.push(inst)
	if kept {
		inst.state = StatePooled
		available = l.len()
	} else {
		inst.state = StateDestroyed
		p.stats.destroyed++
	}
	r.mu.Unlock()

	if !kept {
		r.host.Destroy(inst.obj)
		r.observer.Recycled(p.name, OutcomeDestroyed)
		return nil
	}
	r.observer.Recycled(p.name, OutcomePooled)
	r.observer.Available(p.name, available)
	return nil
}

// Stats returns the counters for p.
func (r *Registry) Stats(p *Prefab) (PoolStats, error) {
	if err := r.checkPrefab(p, "stats"); err != nil {
		return PoolStats{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return statsLocked(p, r.pools[p.id]), nil
}

// Snapshot returns the counters of every registered prefab, ordered by id.
func (r *Registry) Snapshot() []PoolStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PoolStats, 0, len(r.prefabs))
	for id, p := range r.prefabs {
		out = append(out, statsLocked(p, r.pools[id]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrefabID < out[j].PrefabID })
	return out
}

// Warm creates a pool for every spec, resolving prefabs by name. It keeps
// going past failures and returns them joined.
func (r *Registry) Warm(specs []PoolSpec) error {
	var errs []error
	for _, spec := range specs {
		p, ok := r.PrefabByName(spec.Prefab)
		if !ok {
			errs = append(errs, errors.Newf(errors.ErrorTypeNotFound, "prefab %q not registered", spec.Prefab))
			continue
		}
		if err := r.CreatePool(p, spec.Initial, WithMaxSize(spec.MaxSize)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) checkPrefab(p *Prefab, op string) error {
	if p == nil {
		return errNilPrefab(op)
	}
	if p.registry != r {
		return errors.New(errors.ErrorTypeValidation, fmt.Sprintf("prefab %s belongs to another registry", p.name)).
			WithDetail("operation", op)
	}
	return nil
}

// construct asks the host for a new inactive object and wraps it.
func (r *Registry) construct(p *Prefab) (*Instance, error) {
	obj, err := r.host.Construct(p)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, fmt.Sprintf("failed to construct %s", p.name)).
			WithDetail("prefab", p.name)
	}

	r.mu.Lock()
	r.nextInstance++
	inst := &Instance{
		id:     r.nextInstance,
		prefab: p,
		obj:    obj,
		state:  StateInactive,
	}
	p.stats.constructed++
	r.mu.Unlock()
	return inst, nil
}

func (r *Registry) destroyAll(p *Prefab, insts []*Instance) {
	for _, inst := range insts {
		r.host.Destroy(inst.obj)
	}
	r.mu.Lock()
	for _, inst := range insts {
		inst.state = StateDestroyed
	}
	p.stats.destroyed += int64(len(insts))
	r.mu.Unlock()
}

func (r *Registry) reject(prefab string, err *errors.Error) error {
	r.observer.Recycled(prefab, OutcomeRejected)
	switch r.policy {
	case PolicyStrict:
		return err
	case PolicyIgnore:
		return nil
	default:
		r.logger.Warn("ignoring recycle", zap.String("prefab", prefab), zap.Error(err))
		return nil
	}
}

func errNilInstance() *errors.Error {
	return errors.New(errors.ErrorTypeValidation, "instance is nil")
}
