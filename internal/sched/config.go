package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	MaxCPUs          int  `yaml:"max_cpus"`          // 8 (by default)
	TickMS           int  `yaml:"tick_ms"`           // 5 (by default)
	SliceTicks       int  `yaml:"slice_ticks"`       // 5 (by default)
	IsolationEnabled bool `yaml:"isolation_enabled"` // false (by default)
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		MaxCPUs:    8,
		TickMS:     5,
		SliceTicks: 5,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.MaxCPUs < 1 {
		cfg.MaxCPUs = 8
	}
	if cfg.MaxCPUs > MaxCPUs {
		cfg.MaxCPUs = MaxCPUs
	}
	if cfg.TickMS <= 0 {
		cfg.TickMS = 5
	}
	if cfg.SliceTicks <= 0 {
		cfg.SliceTicks = 5
	}

	return cfg
}
