package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argviz.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "memory")
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Errorf("Canvas = %vx%v, want 800x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Relax.MaxTicks != 300 {
		t.Errorf("Relax.MaxTicks = %d, want 300", cfg.Relax.MaxTicks)
	}
}

func TestLoad_RelaxSection(t *testing.T) {
	path := writeConfig(t, `
[relax]
max_ticks = 50
energy_threshold = 0.01
energy_decay = 0.9
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Relax.MaxTicks != 50 || cfg.Relax.EnergyThreshold != 0.01 || cfg.Relax.EnergyDecay != 0.9 {
		t.Errorf("Relax = %+v, want file overrides applied", cfg.Relax)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"

[cache]
backend = "redis"

[cache.redis]
addr = "redis:6379"
db = 2

[store]
backend = "mongo"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v, want redis overrides applied", cfg.Cache)
	}
	// Untouched sections keep their defaults.
	if cfg.Store.Mongo.Database != "argviz" {
		t.Errorf("Store.Mongo.Database = %q, want default %q", cfg.Store.Mongo.Database, "argviz")
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "redis"

[cache.redis]
password = "from-file"
`)
	t.Setenv("ARGVIZ_REDIS_PASSWORD", "from-env")
	t.Setenv("ARGVIZ_MONGO_URI", "mongodb://db.internal:27017")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Redis.Password != "from-env" {
		t.Errorf("Redis.Password = %q, want %q", cfg.Cache.Redis.Password, "from-env")
	}
	if cfg.Store.Mongo.URI != "mongodb://db.internal:27017" {
		t.Errorf("Mongo.URI = %q, want env override", cfg.Store.Mongo.URI)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/file.toml"); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed toml", "[server\naddr = 1"},
		{"unknown cache backend", "[cache]\nbackend = \"memcached\""},
		{"file cache without dir", "[cache]\nbackend = \"file\""},
		{"unknown store backend", "[store]\nbackend = \"postgres\""},
		{"bad canvas", "[canvas]\nwidth = -1.0"},
		{"negative relax ticks", "[relax]\nmax_ticks = -1"},
		{"bad energy decay", "[relax]\nenergy_decay = 1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
