package pool

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/transform"
)

// RecyclePolicy decides what Recycle does with an instance that is not
// currently active: a second recycle, a destroyed instance, nil, or an
// instance owned by another registry.
type RecyclePolicy int

const (
	// PolicyWarn logs a warning and returns nil.
	PolicyWarn RecyclePolicy = iota
	// PolicyIgnore returns nil without logging.
	PolicyIgnore
	// PolicyStrict returns a conflict or validation error.
	PolicyStrict
)

func (p RecyclePolicy) String() string {
	switch p {
	case PolicyWarn:
		return "warn"
	case PolicyIgnore:
		return "ignore"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseRecyclePolicy maps "warn", "ignore" and "strict" to a policy.
// The empty string selects PolicyWarn.
func ParseRecyclePolicy(s string) (RecyclePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return PolicyWarn, nil
	case "ignore":
		return PolicyIgnore, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyWarn, errors.Newf(errors.ErrorTypeConfig, "unknown recycle policy %q", s)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver installs an event observer, e.g. a metrics collector.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithRecyclePolicy sets how misuse of Recycle is handled.
func WithRecyclePolicy(p RecyclePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithAutoPool makes the first Spawn of an unpooled prefab register an
// empty pool for it, so later recycles of that prefab are kept instead of
// destroyed.
func WithAutoPool(enabled bool) Option {
	return func(r *Registry) {
		r.autoPool = enabled
	}
}

// SpawnOption places a spawned instance.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	position transform.Vec3
	rotation transform.Quat
}

func defaultSpawnOptions() spawnOptions {
	return spawnOptions{
		position: transform.Origin,
		rotation: transform.Identity(),
	}
}

// At sets the spawn position. Default: transform.Origin.
func At(pos transform.Vec3) SpawnOption {
	return func(o *spawnOptions) {
		o.position = pos
	}
}

// Rotated sets the spawn rotation. Default: transform.Identity().
func Rotated(rot transform.Quat) SpawnOption {
	return func(o *spawnOptions) {
		o.rotation = rot
	}
}

// PoolOption configures a pool at creation.
type PoolOption func(*poolOptions)

type poolOptions struct {
	maxSize int
}

// WithMaxSize caps the free list. Recycles that would exceed it destroy the
// instance instead. 0 means unbounded.
func WithMaxSize(n int) PoolOption {
	return func(o *poolOptions) {
		o.maxSize = n
	}
}
