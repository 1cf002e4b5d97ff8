// Package simulation drives a pool registry with the turret workload: a
// turret spins in place firing bullets that fly for a fixed number of
// frames and are then recycled. It is the end-to-end exercise behind the
// CLI's simulate command.
package simulation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/prefabpool/pkg/config"
	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/logger"
	"github.com/ajitpratap0/prefabpool/pkg/observability"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/scene"
	"github.com/ajitpratap0/prefabpool/pkg/transform"
)

// BulletPrefab is the prefab name the simulation registers.
const BulletPrefab = "bullet"

// FrameRecorder receives frame durations. metrics.PoolCollector
// implements it.
type FrameRecorder interface {
	ObserveFrame(scene string, d time.Duration)
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the simulation logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFrameTracer wraps every frame in an OpenTelemetry span.
func WithFrameTracer(ft *observability.FrameTracer) Option {
	return func(s *Simulation) { s.tracer = ft }
}

// WithFrameRecorder reports frame durations to r.
func WithFrameRecorder(r FrameRecorder) Option {
	return func(s *Simulation) { s.recorder = r }
}

// Simulation owns a turret and the bullets it has in flight.
type Simulation struct {
	cfg      config.SimulationConfig
	registry *pool.Registry
	scene    *scene.Scene
	bullet   *pool.Prefab
	turret   *Turret

	logger   *zap.Logger
	tracer   *observability.FrameTracer
	recorder FrameRecorder
	monitor  *resourceMonitor

	live     []*pool.Instance
	frame    int
	recycled int64
	peak     int
}

// New registers the bullet prefab on reg, unless a prefab of that name
// exists already, and returns a simulation ready to Run. Pools are left to
// the caller: warm them with reg.Warm before running, or enable AutoPool.
func New(reg *pool.Registry, sc *scene.Scene, cfg config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if reg == nil || sc == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "simulation needs a registry and a scene")
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "bullet lifetime must be positive")
	}
	if cfg.FireRate < 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "fire rate cannot be negative")
	}

	bullet, ok := reg.PrefabByName(BulletPrefab)
	if !ok {
		var err error
		bullet, err = reg.RegisterPrefab(BulletPrefab, BulletTemplate(cfg.Speed))
		if err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		cfg:      cfg,
		registry: reg,
		scene:    sc,
		bullet:   bullet,
		turret: &Turret{
			Position: transform.Origin,
			Rotation: transform.Identity(),
			TurnRate: cfg.TurnRate,
		},
		logger:  logger.Get().With(zap.String("component", "simulation")),
		monitor: newResourceMonitor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Prefab returns the bullet prefab.
func (s *Simulation) Prefab() *pool.Prefab { return s.bullet }

// Turret returns the simulated turret.
func (s *Simulation) Turret() *Turret { return s.turret }

// InFlight returns the number of active bullets.
func (s *Simulation) InFlight() int { return len(s.live) }

// Run advances frames until the count is reached or ctx is done. It
// returns the report for the frames that ran; on cancellation the error is
// ctx.Err().
func (s *Simulation) Run(ctx context.Context, frames int) (*Report, error) {
	if frames < 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "frame count cannot be negative")
	}

	before, err := s.registry.Stats(s.bullet)
	if err != nil {
		return nil, err
	}
	recycledBefore := s.recycled
	start := time.Now()

	var ticker *time.Ticker
	if s.cfg.FrameInterval > 0 {
		ticker = time.NewTicker(s.cfg.FrameInterval)
		defer ticker.Stop()
	}

	s.logger.Info("simulation starting",
		zap.String("scene", s.scene.Name()),
		zap.Int("frames", frames),
		zap.Int("fire_rate", s.cfg.FireRate),
		zap.Int("lifetime", s.cfg.Lifetime))

	ran := 0
	var runErr error
loop:
	for ran < frames {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		default:
		}
		if ticker != nil && ran > 0 {
			select {
			case <-ctx.Done():
				runErr = ctx.Err()
				break loop
			case <-ticker.C:
			}
		}

		if err := s.runFrame(ctx); err != nil {
			runErr = err
			break
		}
		ran++
	}

	report, err := s.report(before, recycledBefore, ran, time.Since(start))
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Int("frames", report.Frames),
		zap.Int64("spawned", report.Spawned),
		zap.Int64("reused", report.Reused),
		zap.Int64("constructed", report.Constructed),
		zap.Int("peak_active", report.PeakActive),
		zap.Duration("duration", report.Duration),
	}
	if runErr != nil {
		s.logger.Warn("simulation stopped early", append(fields, zap.Error(runErr))...)
		return report, runErr
	}
	s.logger.Info("simulation completed", fields...)
	return report, nil
}

// Step runs a single frame.
func (s *Simulation) Step(ctx context.Context) error {
	return s.runFrame(ctx)
}

// Drain recycles every bullet in flight.
func (s *Simulation) Drain() error {
	var errs []error
	for _, inst := range s.live {
		if err := s.registry.Recycle(inst); err != nil {
			errs = append(errs, err)
			continue
		}
		s.recycled++
	}
	s.live = s.live[:0]
	return errors.Join(errs...)
}

func (s *Simulation) runFrame(ctx context.Context) error {
	s.frame++
	frame := s.frame
	start := time.Now()

	var err error
	if s.tracer != nil {
		err = s.tracer.TraceFrame(ctx, frame, s.update)
	} else {
		err = s.update(ctx)
	}

	if s.recorder != nil {
		s.recorder.ObserveFrame(s.scene.Name(), time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	return nil
}

// update moves bullets, recycles the expired ones, then turns the turret
// and fires.
func (s *Simulation) update(ctx context.Context) error {
	kept := s.live[:0]
	expired := 0
	for _, inst := range s.live {
		e := inst.Object().(*scene.Entity)
		b := e.Behaviour.(*Bullet)
		b.Step(e)
		if !b.Expired(s.cfg.Lifetime) {
			kept = append(kept, inst)
			continue
		}
		if err := s.registry.Recycle(inst); err != nil {
			return err
		}
		s.recycled++
		expired++
	}
	s.live = kept

	s.turret.Turn()
	for i := 0; i < s.cfg.FireRate; i++ {
		inst, err := s.registry.Spawn(s.bullet,
			pool.At(s.turret.Muzzle()),
			pool.Rotated(s.turret.Rotation))
		if err != nil {
			return err
		}
		s.live = append(s.live, inst)
	}
	if len(s.live) > s.peak {
		s.peak = len(s.live)
	}

	observability.AddEvent(ctx, "volley",
		attribute.Int("fired", s.cfg.FireRate),
		attribute.Int("expired", expired),
		attribute.Int("in_flight", len(s.live)))
	if ce := s.logger.Check(zap.DebugLevel, "frame"); ce != nil {
		fields := append([]zap.Field{
			zap.Int("frame", s.frame),
			zap.Int("fired", s.cfg.FireRate),
			zap.Int("expired", expired),
			zap.Int("in_flight", len(s.live)),
		}, observability.LogFields(ctx)...)
		ce.Write(fields...)
	}
	return nil
}
