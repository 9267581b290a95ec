package bramble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the read-only configuration a Tree is built with.
type Config struct {
	// ComponentIDsAsTags makes Is and tag queries also match component identities.
	ComponentIDsAsTags bool `toml:"component_ids_as_tags" yaml:"component_ids_as_tags"`
	// DefaultLayer is the draw layer index of objects with no explicit layer
	// on themselves or any ancestor.
	DefaultLayer int `toml:"default_layer" yaml:"default_layer"`
	// Layers optionally names draw layers; index i is layer i.
	Layers []string `toml:"layers" yaml:"layers"`
	// FixedDT is the fixed-step delta in seconds used by Step.
	FixedDT float64 `toml:"fixed_dt" yaml:"fixed_dt"`
	// MaxFixedSteps clamps how many fixed updates Step runs per frame.
	MaxFixedSteps int `toml:"max_fixed_steps" yaml:"max_fixed_steps"`
	// Debug enables frame timing logs and tree shape warnings.
	Debug   bool          `toml:"debug" yaml:"debug"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// LoggingConfig selects the logger level and encoding.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultLayer:  0,
		FixedDT:       1.0 / 50.0,
		MaxFixedSteps: 8,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML or YAML file (chosen by extension) over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("parse config %s: unsupported extension", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// withDefaults fills the timing fields a zero Config leaves unset.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FixedDT <= 0 {
		c.FixedDT = def.FixedDT
	}
	if c.MaxFixedSteps <= 0 {
		c.MaxFixedSteps = def.MaxFixedSteps
	}
	return c
}

func (c *Config) validate() error {
	if c.FixedDT <= 0 {
		return fmt.Errorf("fixed_dt must be positive, got %v", c.FixedDT)
	}
	if c.MaxFixedSteps <= 0 {
		return fmt.Errorf("max_fixed_steps must be positive, got %d", c.MaxFixedSteps)
	}
	if len(c.Layers) > 0 && (c.DefaultLayer < 0 || c.DefaultLayer >= len(c.Layers)) {
		return fmt.Errorf("default_layer %d out of range for %d named layers", c.DefaultLayer, len(c.Layers))
	}
	return nil
}
