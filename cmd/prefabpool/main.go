package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/prefabpool/pkg/config"
)

var version = "0.1.0"

const envPrefix = "PREFABPOOL"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prefabpool",
		Short: "prefabpool - object pooling for spawned scene objects",
		Long: `prefabpool keeps inactive instances of prefabs around so spawning reuses
them instead of constructing new ones. The simulate command drives a pool
registry with a turret firing bullets and reports how spawns were served.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "prefabpool v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSimulateCmd("simulate", false))
	root.AddCommand(newStatsCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate loads a YAML configuration, substitutes ${VAR} references from the
environment and checks every section.

Example:
  prefabpool validate --config prefabpool.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("config")
			if path == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d pools, %d frames)\n", path, len(cfg.Pools), cfg.Simulation.Frames)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to YAML configuration file")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := newSimulateCmd("stats", true)
	cmd.Short = "Run the simulation and print only the pool snapshot as JSON"
	cmd.Long = ""
	return cmd
}

func newSimulateCmd(use string, statsOnly bool) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   use,
		Short: "Run the turret simulation against a pool registry",
		Long: `Simulate spins a turret that fires bullets through the pool registry. Bullets
live for a fixed number of frames and are then recycled. Configuration comes
from --config (or defaults) and can be overridden by flags or by
PREFABPOOL_* environment variables, e.g. PREFABPOOL_FRAMES=1000.

Example:
  prefabpool simulate --config prefabpool.yaml --frames 600 --warm 64 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v)
			if err != nil {
				return err
			}
			output := v.GetString("output")
			if statsOnly {
				output = outputStats
			}
			return runSimulation(cmd.Context(), cfg, output, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Path to YAML configuration file (defaults are used when empty)")
	flags.Int("frames", 0, "Number of frames to simulate")
	flags.Int("fire-rate", 0, "Bullets fired per frame")
	flags.Int("lifetime", 0, "Frames a bullet lives before it is recycled")
	flags.Float64("speed", 0, "Bullet speed in units per frame")
	flags.Duration("frame-interval", 0, "Wall-clock time per frame (0 runs flat out)")
	flags.Int("warm", 0, "Bullets to pre-instantiate")
	flags.Int("max-size", 0, "Maximum pooled bullets, 0 for unbounded")
	flags.Bool("auto-pool", false, "Create a pool on first spawn of an unpooled prefab")
	flags.String("recycle-policy", "", "Misused recycle handling: warn, ignore or strict")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("tracing", false, "Export frame spans to stderr")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	if !statsOnly {
		flags.StringP("output", "o", outputText, "Report format: text or json")
	}
	_ = v.BindPFlags(flags)
	return cmd
}

// newViper returns a viper instance reading PREFABPOOL_* variables, with
// dashes in flag names mapped to underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
