// Package molconfig provides the simulator's ambient engine
// configuration — the knobs a scenario file never sets: default
// worker counts, benchmark replication count, statistics sampling, and
// logging. Layout and load order follow the teacher's config package:
// embedded YAML defaults, optionally overridden by a user file.
package molconfig

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds engine-level defaults not carried by a scenario file.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Stats     StatsConfig     `yaml:"stats"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EngineConfig holds defaults for the integrator's parallel strategies.
type EngineConfig struct {
	// Workers is the goroutine count CellLock/SpatialDecomposition split
	// work across. 0 means runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers"`
	// DefaultStrategy is loaded from the config file, but nothing reads
	// it: the strategy always comes from the scenario's general: parallel
	// strategy field, which the TXT reader requires.
	DefaultStrategy int `yaml:"default_strategy"`
	// TargetBlocks sizes SpatialDecomposition's block grid (grid.BuildBlocks).
	TargetBlocks int `yaml:"target_blocks"`
}

// BenchmarkConfig holds -b benchmark-mode defaults.
type BenchmarkConfig struct {
	Replications int `yaml:"replications"`
}

// StatsConfig holds the binned-statistics sampler's defaults.
type StatsConfig struct {
	Bins        int     `yaml:"bins"`
	Axis        int     `yaml:"axis"`
	SliceVolume float64 `yaml:"slice_volume"`
}

// LoggingConfig holds structured-logging defaults.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

var global *Config

// Init loads configuration from path (embedded defaults if path is
// empty) and stores it as the package-global config. Must be called
// before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error, for use in cmd/molsim's
// main before flag parsing can report errors cleanly.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("molconfig: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("molconfig: Cfg() called before Init()")
	}
	return global
}

// Load reads embedded defaults, then overlays path (if non-empty) on
// top — only the fields path sets are overwritten.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded molconfig defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading molconfig file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing molconfig file: %w", err)
		}
	}
	return cfg, nil
}
