package config_test

import (
	"fmt"

	"github.com/ajitpratap0/prefabpool/pkg/config"
)

// ExampleDefault shows the built-in turret configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Scene: %s\n", cfg.Name)
	fmt.Printf("Policy: %s\n", cfg.RecyclePolicy())
	fmt.Printf("Bullets warmed: %d\n", cfg.Pools[0].Initial)

	// Output:
	// Scene: turret-demo
	// Policy: warn
	// Bullets warmed: 64
}

// ExampleParse decodes a manifest and hands it to the registry.
func ExampleParse() {
	cfg, err := config.Parse([]byte(`
name: arena
registry:
  recycle_policy: strict
pools:
  - prefab: bullet
    initial: 32
    max_size: 128
  - prefab: spark
`))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, spec := range cfg.PoolSpecs() {
		fmt.Printf("%s initial=%d max=%d\n", spec.Prefab, spec.Initial, spec.MaxSize)
	}

	// Output:
	// bullet initial=32 max=128
	// spark initial=0 max=0
}

// ExampleConfig_Validate shows a manifest rejected before use.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Pools = append(cfg.Pools, config.PoolConfig{Prefab: "spark", Initial: 10, MaxSize: 4})

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
	}

	// Output:
	// config: pools[1]: initial 10 exceeds max_size 4
}
