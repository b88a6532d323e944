// Package config loads argviz service configuration from a TOML file,
// layering file values over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/argviz/argviz/pkg/layout"
)

// ErrInvalidConfig indicates a configuration file that parsed but failed
// validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Server holds the HTTP listener settings.
type Server struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the layout cache backend.
// Backend is one of "none", "file", or "redis".
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Redis   Redis  `toml:"redis"`
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects and configures the snapshot store backend.
// Backend is one of "memory" or "mongo".
type StoreConfig struct {
	Backend string `toml:"backend"`
	Mongo   Mongo  `toml:"mongo"`
}

// Mongo holds connection settings for the mongo store backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CanvasConfig sets the default drawing area for layout requests that do
// not specify their own dimensions.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// RelaxConfig tunes the force-directed relaxation applied to layout
// requests that enable it without supplying their own parameters.
type RelaxConfig struct {
	MaxTicks        int     `toml:"max_ticks"`
	EnergyThreshold float64 `toml:"energy_threshold"`
	EnergyDecay     float64 `toml:"energy_decay"`
}

// Config is the root configuration object.
type Config struct {
	Server Server       `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Canvas CanvasConfig `toml:"canvas"`
	Relax  RelaxConfig  `toml:"relax"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Cache:  CacheConfig{Backend: "none", Redis: Redis{Addr: "localhost:6379"}},
		Store: StoreConfig{
			Backend: "memory",
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: "argviz", Collection: "snapshots"},
		},
		Canvas: CanvasConfig{Width: layout.DefaultWidth, Height: layout.DefaultHeight},
		Relax: RelaxConfig{
			MaxTicks:        layout.DefaultMaxTicks,
			EnergyThreshold: layout.DefaultEnergyThreshold,
			EnergyDecay:     layout.DefaultEnergyDecay,
		},
	}
}

// Load reads a TOML configuration file, applying its values over the
// defaults and environment overrides over both. An empty path skips the
// file and applies environment overrides to the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides connection secrets from the environment so they can
// stay out of configuration files.
func (c *Config) applyEnv() {
	if v := os.Getenv("ARGVIZ_REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("ARGVIZ_MONGO_URI"); v != "" {
		c.Store.Mongo.URI = v
	}
}

// Validate checks that backend selectors and dimensions are usable.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "none", "file", "redis":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.Backend == "file" && c.Cache.Dir == "" {
		return fmt.Errorf("%w: file cache requires cache.dir", ErrInvalidConfig)
	}

	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas dimensions must be positive", ErrInvalidConfig)
	}

	if c.Relax.MaxTicks < 0 {
		return fmt.Errorf("%w: relax.max_ticks must be non-negative", ErrInvalidConfig)
	}
	if c.Relax.EnergyThreshold < 0 {
		return fmt.Errorf("%w: relax.energy_threshold must be non-negative", ErrInvalidConfig)
	}
	if c.Relax.EnergyDecay < 0 || c.Relax.EnergyDecay >= 1 {
		return fmt.Errorf("%w: relax.energy_decay must be in [0, 1)", ErrInvalidConfig)
	}
	return nil
}
