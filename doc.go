// Package prefabpool keeps inactive instances of spawnable scene objects
// ("prefabs") around so that spawning reuses them instead of constructing
// new ones.
//
// # Architecture
//
//   - pkg/pool: the registry. Prefabs are registered once, pools are
//     pre-warmed with CreatePool, and Spawn/Recycle move instances between
//     the scene and a LIFO free list.
//   - pkg/scene: an in-memory Host that builds, enables and places entities.
//   - pkg/metrics and pkg/observability: Prometheus counters fed by the
//     registry's Observer hook, and OpenTelemetry frame spans.
//   - internal/simulation: a turret firing bullets frame by frame.
//   - cmd/prefabpool: the CLI.
//
// # Quick Start
//
//	sc := scene.New("arena")
//	reg, _ := pool.NewRegistry(sc)
//	bullet, _ := reg.RegisterPrefab("bullet", &scene.Template{Name: "bullet"})
//	_ = reg.CreatePool(bullet, 64)
//
//	inst, _ := reg.Spawn(bullet, pool.At(muzzle), pool.Rotated(aim))
//	// ... later
//	_ = reg.Recycle(inst)
//
// Or from the command line:
//
//	prefabpool simulate --frames 600 --warm 64 --output json
package prefabpool
