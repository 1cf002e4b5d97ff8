package pool

// freeList is the per-prefab pool: a LIFO stack of inactive instances, all
// constructed from the same prefab. It is only touched with registry.mu held.
type freeList struct {
	prefab  *Prefab
	free    []*Instance
	maxSize int // 0 means unbounded
}

func newFreeList(p *Prefab, capacity, maxSize int) *freeList {
	return &freeList{
		prefab:  p,
		free:    make([]*Instance, 0, capacity),
		maxSize: maxSize,
	}
}

// push appends inst to the free list. It reports false when the list is
// already at maxSize.
func (l *freeList) push(inst *Instance) bool {
	if l.maxSize > 0 && len(l.free) >= l.maxSize {
		return false
	}
	l.free = append(l.free, inst)
	return true
}

// pop removes the most recently pushed instance.
func (l *freeList) pop() (*Instance, bool) {
	n := len(l.free)
	if n == 0 {
		return nil, false
	}
	inst := l.free[n-1]
	l.free[n-1] = nil
	l.free = l.free[:n-1]
	return inst, true
}

func (l *freeList) len() int {
	return len(l.free)
}

// PoolStats is a point-in-time view of one prefab's pooling counters.
type PoolStats struct {
	PrefabID PrefabID `json:"prefab_id"`
	Prefab   string   `json:"prefab"`
	// Pooled is false for prefabs that have never had a pool created.
	Pooled bool `json:"pooled"`
	// Available is the number of inactive instances ready to spawn.
	Available int `json:"available"`
	// MaxSize is the free-list ceiling, 0 when unbounded.
	MaxSize int `json:"max_size"`
	// InUse counts spawned instances not yet recycled.
	InUse int64 `json:"in_use"`
	// Constructed counts Host.Construct calls, including pre-warming.
	Constructed int64 `json:"constructed"`
	// Hits counts spawns served from the free list.
	Hits int64 `json:"hits"`
	// Misses counts spawns that had to construct.
	Misses int64 `json:"misses"`
	// Destroyed counts Host.Destroy calls.
	Destroyed int64 `json:"destroyed"`
}

// HitRate returns Hits / (Hits + Misses), or 0 before the first spawn.
func (s PoolStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// statsLocked builds a PoolStats for p. l may be nil.
func statsLocked(p *Prefab, l *freeList) PoolStats {
	s := PoolStats{
		PrefabID:    p.id,
		Prefab:      p.name,
		InUse:       p.stats.inUse,
		Constructed: p.stats.constructed,
		Hits:        p.stats.hits,
		Misses:      p.stats.misses,
		Destroyed:   p.stats.destroyed,
	}
	if l != nil {
		s.Pooled = true
		s.Available = l.len()
		s.MaxSize = l.maxSize
	}
	return s
}
