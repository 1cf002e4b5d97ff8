// Package config provides the configuration for prefabpool: logging,
// metrics, tracing, registry policy, the pool warm-up manifest and the
// turret simulation.
//
// Example usage:
//
//	cfg, err := config.Load("prefabpool.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, _ := pool.NewRegistry(host, pool.WithAutoPool(cfg.Registry.AutoPool))
//	_ = reg.Warm(cfg.PoolSpecs())
package config

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
)

// Config is the root configuration document.
type Config struct {
	// Name identifies the scene or deployment
	Name string `yaml:"name" json:"name"`

	Log        LogConfig        `yaml:"log" json:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing" json:"tracing"`
	Registry   RegistryConfig   `yaml:"registry" json:"registry"`
	Pools      []PoolConfig     `yaml:"pools" json:"pools"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Encoding    string `yaml:"encoding" json:"encoding"` // json or console
	Development bool   `yaml:"development" json:"development"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// TracingConfig configures OpenTelemetry span export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled"`
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
}

// RegistryConfig configures pool registry behaviour.
type RegistryConfig struct {
	// AutoPool registers an empty pool on the first spawn of an unpooled prefab
	AutoPool bool `yaml:"auto_pool" json:"auto_pool"`
	// RecyclePolicy is warn, ignore or strict
	RecyclePolicy string `yaml:"recycle_policy" json:"recycle_policy"`
}

// PoolConfig is one entry of the warm-up manifest.
type PoolConfig struct {
	Prefab  string `yaml:"prefab" json:"prefab"`
	Initial int    `yaml:"initial" json:"initial"`
	MaxSize int    `yaml:"max_size" json:"max_size"`
}

// SimulationConfig drives the turret scenario.
type SimulationConfig struct {
	Frames   int     `yaml:"frames" json:"frames"`
	FireRate int     `yaml:"fire_rate" json:"fire_rate"` // bullets per frame
	Lifetime int     `yaml:"lifetime" json:"lifetime"`   // frames a bullet lives
	Speed    float64 `yaml:"speed" json:"speed"`         // units per frame
	TurnRate float64 `yaml:"turn_rate" json:"turn_rate"` // radians per frame
	// FrameInterval paces the loop; 0 runs frames back to back
	FrameInterval time.Duration `yaml:"frame_interval" json:"frame_interval"`
}

// Default returns a configuration that runs the turret demo with a
// pre-warmed bullet pool.
func Default() *Config {
	return &Config{
		Name: "turret-demo",
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 1.0,
		},
		Registry: RegistryConfig{
			AutoPool:      false,
			RecyclePolicy: "warn",
		},
		Pools: []PoolConfig{
			{Prefab: "bullet", Initial: 64},
		},
		Simulation: SimulationConfig{
			Frames:   600,
			FireRate: 4,
			Lifetime: 45,
			Speed:    0.5,
			TurnRate: 0.05,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Name == "" {
		return configError("name is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return configError(fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return configError(fmt.Sprintf("invalid log encoding %q", c.Log.Encoding))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return configError("metrics.addr is required when metrics are enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return configError("tracing.sample_rate must be between 0 and 1")
	}
	if _, err := pool.ParseRecyclePolicy(c.Registry.RecyclePolicy); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Pools))
	for i, p := range c.Pools {
		if p.Prefab == "" {
			return configError(fmt.Sprintf("pools[%d].prefab is required", i))
		}
		if seen[p.Prefab] {
			return configError(fmt.Sprintf("pools[%d]: duplicate prefab %q", i, p.Prefab))
		}
		seen[p.Prefab] = true
		if p.Initial < 0 || p.MaxSize < 0 {
			return configError(fmt.Sprintf("pools[%d]: counts cannot be negative", i))
		}
		if p.MaxSize > 0 && p.Initial > p.MaxSize {
			return configError(fmt.Sprintf("pools[%d]: initial %d exceeds max_size %d", i, p.Initial, p.MaxSize))
		}
	}

	s := c.Simulation
	if s.Frames < 0 {
		return configError("simulation.frames cannot be negative")
	}
	if s.FireRate < 0 {
		return configError("simulation.fire_rate cannot be negative")
	}
	if s.Lifetime <= 0 {
		return configError("simulation.lifetime must be positive")
	}
	if s.Speed < 0 {
		return configError("simulation.speed cannot be negative")
	}
	if s.FrameInterval < 0 {
		return configError("simulation.frame_interval cannot be negative")
	}
	return nil
}

// RecyclePolicy returns the parsed registry policy.
func (c *Config) RecyclePolicy() pool.RecyclePolicy {
	p, _ := pool.ParseRecyclePolicy(c.Registry.RecyclePolicy)
	return p
}

// PoolSpecs converts the manifest for pool.Registry.Warm.
func (c *Config) PoolSpecs() []pool.PoolSpec {
	specs := make([]pool.PoolSpec, 0, len(c.Pools))
	for _, p := range c.Pools {
		specs = append(specs, pool.PoolSpec{
			Prefab:  p.Prefab,
			Initial: p.Initial,
			MaxSize: p.MaxSize,
		})
	}
	return specs
}

// Pool returns the manifest entry for prefab.
func (c *Config) Pool(prefab string) (PoolConfig, bool) {
	for _, p := range c.Pools {
		if p.Prefab == prefab {
			return p, true
		}
	}
	return PoolConfig{}, false
}

func configError(msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg)
}
