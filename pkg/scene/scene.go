// Package scene is an in-memory host for the pool registry: a flat entity
// table with active flags and transforms. It stands in for an engine scene
// graph in the simulation, the CLI and tests.
package scene

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/logger"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/transform"
)

// Behaviour is the per-entity script attached by a Template.
type Behaviour interface {
	OnActivate(e *Entity)
	OnDeactivate(e *Entity)
}

// Template is the prefab template understood by Scene.Construct.
type Template struct {
	// Name is copied to every entity built from the template.
	Name string
	// Behaviour, if set, builds the script for a new entity.
	Behaviour func(e *Entity) Behaviour
}

// Entity is a scene object. Position and rotation are owned by the scene
// while the entity is being spawned and by its behaviour afterwards.
type Entity struct {
	ID        uint64
	Name      string
	Position  transform.Vec3
	Rotation  transform.Quat
	Behaviour Behaviour

	active    bool
	destroyed bool
}

// Active reports whether the entity is enabled.
func (e *Entity) Active() bool { return e.active }

// Destroyed reports whether the entity was destroyed.
func (e *Entity) Destroyed() bool { return e.destroyed }

// OnActivate implements pool.Activatable.
func (e *Entity) OnActivate() {
	if e.Behaviour != nil {
		e.Behaviour.OnActivate(e)
	}
}

// OnDeactivate implements pool.Activatable.
func (e *Entity) OnDeactivate() {
	if e.Behaviour != nil {
		e.Behaviour.OnDeactivate(e)
	}
}

// Scene implements pool.Host.
type Scene struct {
	name   string
	logger *zap.Logger

	mu          sync.Mutex
	nextID      uint64
	live        map[uint64]*Entity
	constructed int64
	destroyed   int64
}

var _ pool.Host = (*Scene)(nil)

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{
		name:   name,
		logger: logger.Get().With(zap.String("component", "scene"), zap.String("scene", name)),
		live:   make(map[uint64]*Entity),
	}
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// Construct builds an inactive entity from a *Template prefab template.
func (s *Scene) Construct(p *pool.Prefab) (any, error) {
	tmpl, ok := p.Template().(*Template)
	if !ok || tmpl == nil {
		return nil, errors.New(errors.ErrorTypeValidation, fmt.Sprintf("prefab %s has no scene template", p.Name())).
			WithDetail("template_type", fmt.Sprintf("%T", p.Template()))
	}

	s.mu.Lock()
	s.nextID++
	e := &Entity{
		ID:       s.nextID,
		Name:     tmpl.Name,
		Rotation: transform.Identity(),
	}
	s.live[e.ID] = e
	s.constructed++
	s.mu.Unlock()

	if tmpl.Behaviour != nil {
		e.Behaviour = tmpl.Behaviour(e)
	}
	s.logger.Debug("entity constructed", zap.Uint64("entity", e.ID), zap.String("name", e.Name))
	return e, nil
}

// Destroy removes the entity from the scene for good.
func (s *Scene) Destroy(obj any) {
	e := obj.(*Entity)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.active = false
	delete(s.live, e.ID)
	s.destroyed++
}

// SetActive toggles the entity's active flag.
func (s *Scene) SetActive(obj any, active bool) {
	e := obj.(*Entity)
	s.mu.Lock()
	e.active = active
	s.mu.Unlock()
}

// SetTransform places the entity.
func (s *Scene) SetTransform(obj any, pos transform.Vec3, rot transform.Quat) {
	e := obj.(*Entity)
	s.mu.Lock()
	e.Position = pos
	e.Rotation = rot
	s.mu.Unlock()
}

// Constructed returns the number of entities ever built.
func (s *Scene) Constructed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constructed
}

// Destroyed returns the number of entities destroyed.
func (s *Scene) Destroyed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Live returns the number of entities not destroyed, active or not.
func (s *Scene) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// ActiveCount returns the number of active entities.
func (s *Scene) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.live {
		if e.active {
			n++
		}
	}
	return n
}

// Entities returns the active entities ordered by id.
func (s *Scene) Entities() []*Entity {
	s.mu.Lock()
	out := make([]*Entity, 0, len(s.live))
	for _, e := range s.live {
		if e.active {
			out = append(out, e)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
