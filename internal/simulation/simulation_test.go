package simulation

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/prefabpool/pkg/config"
	"github.com/ajitpratap0/prefabpool/pkg/observability"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/scene"
	"github.com/ajitpratap0/prefabpool/pkg/testutil"
)

func testConfig() config.SimulationConfig {
	return config.SimulationConfig{
		FireRate: 2,
		Lifetime: 3,
		Speed:    0.5,
		TurnRate: math.Pi / 8,
	}
}

func newTestSimulation(t *testing.T, cfg config.SimulationConfig, regOpts []pool.Option, opts ...Option) (*Simulation, *pool.Registry, *scene.Scene) {
	t.Helper()
	sc, reg := testutil.NewSceneRegistry(t, "arena", regOpts...)
	sim, err := New(reg, sc, cfg, append([]Option{WithLogger(testutil.TestLogger(t))}, opts...)...)
	require.NoError(t, err)
	return sim, reg, sc
}

func TestRun_WarmPoolServesEverySpawn(t *testing.T) {
	sim, reg, sc := newTestSimulation(t, testConfig(), nil)
	require.NoError(t, reg.Warm([]pool.PoolSpec{{Prefab: BulletPrefab, Initial: 8}}))

	report, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)

	// Bullets spawned on frame f are recycled on frame f+3, so six are in
	// flight at any time and the eight warmed instances cover every spawn.
	assert.Equal(t, 10, report.Frames)
	assert.Equal(t, int64(20), report.Spawned)
	assert.Equal(t, int64(20), report.Reused)
	assert.Equal(t, int64(0), report.Constructed)
	assert.Equal(t, int64(14), report.Recycled)
	assert.Equal(t, int64(0), report.Destroyed)
	assert.Equal(t, 6, report.InFlight)
	assert.Equal(t, 6, report.PeakActive)
	assert.InDelta(t, 1.0, report.ReuseRate(), 1e-9)

	assert.Equal(t, int64(8), sc.Constructed())
	assert.Equal(t, 6, sc.ActiveCount())

	require.Len(t, report.Pools, 1)
	assert.Equal(t, 2, report.Pools[0].Available)
	assert.Equal(t, int64(6), report.Pools[0].InUse)
	assert.NotZero(t, report.Memory.HeapAllocBytes)
}

func TestRun_WithoutPoolConstructsAndDestroys(t *testing.T) {
	sim, _, sc := newTestSimulation(t, testConfig(), nil)

	report, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(20), report.Spawned)
	assert.Equal(t, int64(0), report.Reused)
	assert.Equal(t, int64(20), report.Constructed)
	assert.Equal(t, int64(14), report.Destroyed)
	assert.Equal(t, int64(14), sc.Destroyed())
	assert.Equal(t, 6, sc.Live())
	require.Len(t, report.Pools, 1)
	assert.False(t, report.Pools[0].Pooled)
}

func TestRun_AutoPool(t *testing.T) {
	sim, reg, _ := newTestSimulation(t, testConfig(), []pool.Option{pool.WithAutoPool(true)})

	report, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)

	// The first three frames construct, afterwards recycled bullets cover
	// each volley.
	assert.Equal(t, int64(6), report.Constructed)
	assert.Equal(t, int64(14), report.Reused)
	assert.Equal(t, int64(0), report.Destroyed)
	assert.True(t, reg.HasPool(sim.Prefab()))
}

func TestRun_ReportsAreDeltas(t *testing.T) {
	sim, reg, _ := newTestSimulation(t, testConfig(), nil)
	require.NoError(t, reg.Warm([]pool.PoolSpec{{Prefab: BulletPrefab, Initial: 8}}))

	_, err := sim.Run(context.Background(), 5)
	require.NoError(t, err)
	second, err := sim.Run(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, second.Frames)
	assert.Equal(t, int64(10), second.Spawned)
	assert.Equal(t, int64(10), second.Recycled)
}

func TestRun_ZeroFrames(t *testing.T) {
	sim, _, _ := newTestSimulation(t, testConfig(), nil)
	report, err := sim.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Frames)
	assert.Equal(t, int64(0), report.Spawned)

	_, err = sim.Run(context.Background(), -1)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	sim, _, _ := newTestSimulation(t, testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := sim.Run(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Frames)
}

func TestRun_FrameIntervalHonoursDeadline(t *testing.T) {
	cfg := testConfig()
	cfg.FrameInterval = time.Hour
	sim, _, _ := newTestSimulation(t, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report, err := sim.Run(ctx, 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, report.Frames)
}

func TestBullet_ResetOnReuse(t *testing.T) {
	cfg := testConfig()
	cfg.FireRate = 1
	cfg.Lifetime = 1
	sim, reg, _ := newTestSimulation(t, cfg, nil)
	require.NoError(t, reg.Warm([]pool.PoolSpec{{Prefab: BulletPrefab, Initial: 1}}))

	ctx := context.Background()
	require.NoError(t, sim.Step(ctx))
	require.Equal(t, 1, sim.InFlight())
	first := sim.live[0]
	e := first.Object().(*scene.Entity)
	b := e.Behaviour.(*Bullet)

	assert.Equal(t, 0, b.Age)
	assert.InDelta(t, cfg.Speed, b.Velocity.Len(), 1e-9)
	assert.InDelta(t, 1.0, e.Position.Len(), 1e-9, "spawned at the muzzle")

	// Next frame the bullet expires, is recycled, and the single pooled
	// instance is fired again with fresh state.
	require.NoError(t, sim.Step(ctx))
	require.Equal(t, 1, sim.InFlight())
	assert.Same(t, e, sim.live[0].Object())
	assert.Equal(t, 2, b.Activations)
	assert.Equal(t, 0, b.Age)
	assert.InDelta(t, cfg.Speed, b.Velocity.Len(), 1e-9)
	assert.True(t, e.Rotation.Forward().Sub(b.Velocity.Scale(1/cfg.Speed)).Len() < 1e-9)
}

func TestDrain(t *testing.T) {
	sim, reg, sc := newTestSimulation(t, testConfig(), nil)
	require.NoError(t, reg.Warm([]pool.PoolSpec{{Prefab: BulletPrefab, Initial: 8}}))

	_, err := sim.Run(context.Background(), 4)
	require.NoError(t, err)
	require.NoError(t, sim.Drain())

	assert.Equal(t, 0, sim.InFlight())
	assert.Equal(t, 0, sc.ActiveCount())
	stats, err := reg.Stats(sim.Prefab())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Available)
	assert.Equal(t, int64(0), stats.InUse)
}

func TestTurret_Turns(t *testing.T) {
	sim, _, _ := newTestSimulation(t, testConfig(), nil)
	turret := sim.Turret()
	for i := 0; i < 4; i++ {
		turret.Turn()
	}
	// four turns of pi/8 face +X
	fwd := turret.Rotation.Forward()
	assert.InDelta(t, 1.0, fwd.X, 1e-9)
	assert.InDelta(t, 0.0, fwd.Z, 1e-9)
}

func TestNew_Validation(t *testing.T) {
	sc, reg := testutil.NewSceneRegistry(t, "arena")

	_, err := New(nil, sc, testConfig())
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Lifetime = 0
	_, err = New(reg, sc, cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.FireRate = -1
	_, err = New(reg, sc, cfg)
	assert.Error(t, err)
}

func TestNew_ReusesRegisteredPrefab(t *testing.T) {
	sim, reg, sc := newTestSimulation(t, testConfig(), nil)
	again, err := New(reg, sc, testConfig(), WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)
	assert.Same(t, sim.Prefab(), again.Prefab())
}

type countingRecorder struct {
	frames int
	scene  string
}

func (r *countingRecorder) ObserveFrame(scene string, _ time.Duration) {
	r.frames++
	r.scene = scene
}

func TestRun_TracesAndRecordsFrames(t *testing.T) {
	var out bytes.Buffer
	tcfg := observability.DefaultConfig()
	tcfg.Enabled = true
	tcfg.Writer = &out
	provider, err := observability.Initialize(tcfg)
	require.NoError(t, err)
	ft, err := observability.NewFrameTracer(provider, "arena")
	require.NoError(t, err)

	rec := &countingRecorder{}
	sim, _, _ := newTestSimulation(t, testConfig(), nil, WithFrameTracer(ft), WithFrameRecorder(rec))

	_, err = sim.Run(context.Background(), 3)
	require.NoError(t, err)
	require.NoError(t, provider.Shutdown(context.Background()))

	assert.Equal(t, 3, rec.frames)
	assert.Equal(t, "arena", rec.scene)
	assert.Equal(t, 3, strings.Count(out.String(), `"Name": "frame"`))
}

func TestReport_WriteText(t *testing.T) {
	sim, reg, _ := newTestSimulation(t, testConfig(), nil)
	require.NoError(t, reg.Warm([]pool.PoolSpec{{Prefab: BulletPrefab, Initial: 8, MaxSize: 16}}))
	report, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	text := buf.String()
	assert.Contains(t, text, "reused")
	assert.Contains(t, text, "(100.0%)")
	assert.Contains(t, text, "PREFAB")
	assert.Contains(t, text, "bullet")
	assert.Contains(t, text, "16")
}
