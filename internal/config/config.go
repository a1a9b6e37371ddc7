package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level TOML configuration for an ecsdb process:
// tuning knobs for the registry's backing maps, logging, and the
// directories the optional scripting/schema layers load from.
type Config struct {
	Registry  RegistryConfig  `toml:"registry"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
}

// RegistryConfig tunes the open-addressing map / flat map backing every
// pool (spec §4.B, §4.C). Whatever constructs an ecs.Registry is expected
// to forward these fields into an ecs.RegistryOptions — config itself
// stays free of any ecs import, matching the teacher's layering where
// config only describes values, never wires them.
type RegistryConfig struct {
	InitialCapacityHint int     `toml:"initial_capacity_hint"`
	MaxLoadFactor       float64 `toml:"max_load_factor"`
	// StrictTypeIDs selects blake2b-based hashing (ecs.HashNameStrict)
	// over the spec-mandated FNV-1a default (spec §4.A open question).
	// Forwarded into ecs.RegistryOptions.StrictTypeIDs by whatever
	// constructs the Registry.
	StrictTypeIDs bool `toml:"strict_type_ids"`
}

// LoggingConfig selects zap's production/development presets.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// ScriptingConfig points at the predicate script directory
// internal/predicate loads from and the manifest file internal/schema
// loads.
type ScriptingConfig struct {
	PredicateDir string `toml:"predicate_dir"`
	SchemaFile   string `toml:"schema_file"`
}

// Load reads and parses a TOML config file, filling in defaults for any
// field the file doesn't set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			InitialCapacityHint: 16,
			MaxLoadFactor:       0.6,
			StrictTypeIDs:       false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			PredicateDir: "./scripts/predicates",
			SchemaFile:   "./schema/components.yaml",
		},
	}
}
