package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/prefabpool/internal/simulation"
	"github.com/ajitpratap0/prefabpool/pkg/config"
	"github.com/ajitpratap0/prefabpool/pkg/json"
	"github.com/ajitpratap0/prefabpool/pkg/logger"
	"github.com/ajitpratap0/prefabpool/pkg/metrics"
	"github.com/ajitpratap0/prefabpool/pkg/observability"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/scene"
)

const (
	outputText  = "text"
	outputJSON  = "json"
	outputStats = "stats"
)

// resolveConfig loads the configuration file, if any, and applies flag and
// environment overrides on top.
func resolveConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("frames") {
		cfg.Simulation.Frames = v.GetInt("frames")
	}
	if v.IsSet("fire-rate") {
		cfg.Simulation.FireRate = v.GetInt("fire-rate")
	}
	if v.IsSet("lifetime") {
		cfg.Simulation.Lifetime = v.GetInt("lifetime")
	}
	if v.IsSet("speed") {
		cfg.Simulation.Speed = v.GetFloat64("speed")
	}
	if v.IsSet("frame-interval") {
		cfg.Simulation.FrameInterval = v.GetDuration("frame-interval")
	}
	if v.IsSet("auto-pool") {
		cfg.Registry.AutoPool = v.GetBool("auto-pool")
	}
	if v.IsSet("recycle-policy") {
		cfg.Registry.RecyclePolicy = v.GetString("recycle-policy")
	}
	if v.IsSet("log-level") {
		cfg.Log.Level = v.GetString("log-level")
	}
	if v.IsSet("tracing") {
		cfg.Tracing.Enabled = v.GetBool("tracing")
	}
	if v.IsSet("metrics-addr") {
		cfg.Metrics.Enabled = v.GetString("metrics-addr") != ""
		cfg.Metrics.Addr = v.GetString("metrics-addr")
	}
	if v.IsSet("warm") || v.IsSet("max-size") {
		entry, _ := cfg.Pool(simulation.BulletPrefab)
		entry.Prefab = simulation.BulletPrefab
		if v.IsSet("warm") {
			entry.Initial = v.GetInt("warm")
		}
		if v.IsSet("max-size") {
			entry.MaxSize = v.GetInt("max-size")
		}
		setPool(cfg, entry)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setPool(cfg *config.Config, entry config.PoolConfig) {
	for i := range cfg.Pools {
		if cfg.Pools[i].Prefab == entry.Prefab {
			cfg.Pools[i] = entry
			return
		}
	}
	cfg.Pools = append(cfg.Pools, entry)
}

// runSimulation wires the registry, scene, metrics and tracing for cfg,
// runs the simulation and writes the report to out.
func runSimulation(ctx context.Context, cfg *config.Config, output string, out, errOut io.Writer) error {
	switch output {
	case outputText, outputJSON, outputStats:
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.SceneKey, cfg.Name)
	log := logger.WithContext(ctx).With(zap.String("component", "prefabpool-cli"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPoolCollector(promReg)

	if cfg.Metrics.Enabled {
		_, shutdown, err := serveMetrics(cfg.Metrics.Addr, promReg, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	tcfg := observability.DefaultConfig()
	tcfg.Enabled = cfg.Tracing.Enabled
	tcfg.ServiceVersion = version
	tcfg.SamplingRate = cfg.Tracing.SampleRate
	tcfg.Writer = errOut
	provider, err := observability.Initialize(tcfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracing", zap.Error(err))
		}
	}()
	frameTracer, err := observability.NewFrameTracer(provider, cfg.Name)
	if err != nil {
		return err
	}

	sc := scene.New(cfg.Name)
	reg, err := pool.NewRegistry(sc,
		pool.WithLogger(logger.Get()),
		pool.WithObserver(collector),
		pool.WithRecyclePolicy(cfg.RecyclePolicy()),
		pool.WithAutoPool(cfg.Registry.AutoPool),
	)
	if err != nil {
		return err
	}

	sim, err := simulation.New(reg, sc, cfg.Simulation,
		simulation.WithFrameTracer(frameTracer),
		simulation.WithFrameRecorder(collector),
	)
	if err != nil {
		return err
	}
	if err := reg.Warm(cfg.PoolSpecs()); err != nil {
		return fmt.Errorf("failed to warm pools: %w", err)
	}

	report, err := sim.Run(ctx, cfg.Simulation.Frames)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Info("simulation interrupted", zap.Int("frames", report.Frames))
	}

	switch output {
	case outputJSON:
		return json.Encode(out, report, true)
	case outputStats:
		return json.Encode(out, report.Pools, true)
	default:
		return report.WriteText(out)
	}
}

// serveMetrics exposes reg on addr until the returned func is called. It
// returns the address actually bound.
func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
