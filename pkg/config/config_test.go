package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
	"github.com/ajitpratap0/prefabpool/pkg/pool"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, pool.PolicyWarn, cfg.RecyclePolicy())
	assert.False(t, cfg.Registry.AutoPool)

	p, ok := cfg.Pool("bullet")
	require.True(t, ok)
	assert.Equal(t, 64, p.Initial)

	_, ok = cfg.Pool("missile")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing name", func(c *Config) { c.Name = "" }, "name is required"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad encoding", func(c *Config) { c.Log.Encoding = "xml" }, "invalid log encoding"},
		{"metrics without addr", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Addr = ""
		}, "metrics.addr is required"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"policy", func(c *Config) { c.Registry.RecyclePolicy = "panic" }, "unknown recycle policy"},
		{"unnamed pool", func(c *Config) { c.Pools = []PoolConfig{{Initial: 1}} }, "pools[0].prefab is required"},
		{"duplicate pool", func(c *Config) {
			c.Pools = []PoolConfig{{Prefab: "bullet"}, {Prefab: "bullet"}}
		}, "duplicate prefab"},
		{"negative initial", func(c *Config) { c.Pools[0].Initial = -1 }, "cannot be negative"},
		{"initial over max", func(c *Config) { c.Pools[0].MaxSize = 8 }, "exceeds max_size"},
		{"negative frames", func(c *Config) { c.Simulation.Frames = -1 }, "frames"},
		{"negative fire rate", func(c *Config) { c.Simulation.FireRate = -2 }, "fire_rate"},
		{"zero lifetime", func(c *Config) { c.Simulation.Lifetime = 0 }, "lifetime"},
		{"negative speed", func(c *Config) { c.Simulation.Speed = -1 }, "speed"},
		{"negative interval", func(c *Config) { c.Simulation.FrameInterval = -time.Second }, "frame_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
name: arena
simulation:
  frames: 10
  frame_interval: 16ms
`))
	require.NoError(t, err)

	assert.Equal(t, "arena", cfg.Name)
	assert.Equal(t, 10, cfg.Simulation.Frames)
	assert.Equal(t, 16*time.Millisecond, cfg.Simulation.FrameInterval)
	// untouched sections keep their defaults
	assert.Equal(t, 4, cfg.Simulation.FireRate)
	assert.Equal(t, "info", cfg.Log.Level)
	require.Len(t, cfg.Pools, 1)
	assert.Equal(t, "bullet", cfg.Pools[0].Prefab)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("name: arena\nbullets: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("registry:\n  recycle_policy: sometimes\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoad_SubstitutesEnv(t *testing.T) {
	t.Setenv("PREFABPOOL_TEST_SCENE", "hangar")
	t.Setenv("PREFABPOOL_TEST_WARM", "12")

	path := filepath.Join(t.TempDir(), "prefabpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: ${PREFABPOOL_TEST_SCENE}
pools:
  - prefab: bullet
    initial: ${PREFABPOOL_TEST_WARM}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hangar", cfg.Name)
	assert.Equal(t, []pool.PoolSpec{{Prefab: "bullet", Initial: 12}}, cfg.PoolSpecs())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Name = "saved"
	cfg.Pools = append(cfg.Pools, PoolConfig{Prefab: "spark", Initial: 2, MaxSize: 8})

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("PP_A", "one")
	assert.Equal(t, "x one y", substituteEnvVars("x ${PP_A} y"))
	assert.Equal(t, "x  y", substituteEnvVars("x ${PP_UNSET_VAR} y"))
	assert.Equal(t, "x ${PP_A", substituteEnvVars("x ${PP_A"))
}
