// Package pool implements per-prefab instance pooling for game entities.
// Instead of constructing and destroying an entity every time one is needed
// (a bullet fired by a turret, a spark, a pickup), callers spawn it from a
// pool of pre-instantiated, deactivated instances and recycle it back when
// done, which keeps allocation churn and GC pauses out of the frame loop.
//
// Architecture
//
// A Registry maps each Prefab (by its opaque PrefabID) to a LIFO free list of
// inactive Instances. The Registry never constructs, positions or activates
// anything on its own: it drives a Host, which wraps the engine's object
// model (construction, destruction, active flag, transform).
//
// Core Types:
//
//   - Prefab: registered template and pool key
//   - Instance: registry-owned handle around a host object
//   - Registry: prefab table, free lists and statistics
//   - Host / Activatable: engine collaborators
//
// Opt-in pooling
//
// Spawn and Recycle work for every registered prefab whether or not a pool
// exists. Without a pool, Spawn constructs a fresh object and Recycle
// destroys it, so pooling can be introduced later without touching callers:
//
//	bullet, _ := reg.RegisterPrefab("bullet", tmpl)
//
//	// Optional: pre-instantiate 64 inactive bullets
//	_ = bullet.CreatePool(64)
//
//	b, err := bullet.Spawn(pool.At(muzzle), pool.Rotated(aim))
//	if err != nil {
//		return err
//	}
//	// ... later
//	_ = b.Recycle()
//
// Lifecycle hooks
//
// Host objects that implement Activatable receive OnActivate exactly once per
// Spawn and OnDeactivate exactly once per Recycle. The registry does not reset
// instance-owned data; OnActivate is the place to do it.
//
// Misuse
//
// Recycling an instance twice, or recycling a nil or foreign instance, never
// corrupts a pool. What happens instead is chosen by RecyclePolicy: log a
// warning (default), ignore silently, or return an error.
//
// Concurrency
//
// A Registry is safe for concurrent use. Host calls and hooks run without the
// registry lock held, so hooks may spawn or recycle other instances.
package pool
