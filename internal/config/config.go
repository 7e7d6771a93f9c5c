package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Pool    PoolConfig    `toml:"pool"`
	Logging LoggingConfig `toml:"logging"`
}

type PoolConfig struct {
	Layout     string        `toml:"layout"`      // yaml file with groups, systems and seed entities
	ScriptsDir string        `toml:"scripts_dir"` // root for `script:` entries in the layout
	TickRate   time.Duration `toml:"tick_rate"`
	Phases     []string      `toml:"phases"` // tick events in emission order
	Watch      bool          `toml:"watch"`  // rebuild the pool when scripts or layout change
	InitArgs   []string      `toml:"init_args"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pool.Layout == "" {
		return errors.New("pool.layout is required")
	}
	if c.Pool.TickRate <= 0 {
		return fmt.Errorf("pool.tick_rate must be positive, got %s", c.Pool.TickRate)
	}
	if len(c.Pool.Phases) == 0 {
		return errors.New("pool.phases must name at least one event")
	}
	for i, p := range c.Pool.Phases {
		if p == "" {
			return fmt.Errorf("pool.phases[%d] is empty", i)
		}
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Pool: PoolConfig{
			Layout:     "data/pool.yaml",
			ScriptsDir: "scripts",
			TickRate:   16 * time.Millisecond,
			Phases:     []string{"update", "draw"},
			Watch:      true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
