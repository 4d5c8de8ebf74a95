package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Layouts   LayoutsConfig   `koanf:"layouts"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Engine    EngineConfig    `koanf:"engine"`
	Benchmark BenchmarkConfig `koanf:"benchmark"`
	Render    RenderConfig    `koanf:"render"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// DatabaseConfig configures run persistence. An empty type keeps runs in memory.
type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// LayoutsConfig selects where dataset layouts are registered.
type LayoutsConfig struct {
	Source    string `koanf:"source"` // filesystem | memory
	Path      string `koanf:"path"`
	CacheSize int    `koanf:"cache_size"`
}

type DatasetConfig struct {
	Input         string `koanf:"input"`
	Root          string `koanf:"root"` // inputs served over HTTP must lie under it
	Layout        string `koanf:"layout"`
	LayoutVersion int    `koanf:"layout_version"` // 0 selects the latest active version
	Synthetic     int    `koanf:"synthetic_events"`
	Seed          uint64 `koanf:"seed"`
}

type EngineConfig struct {
	Concurrency    int `koanf:"concurrency"`     // 0 means one worker per CPU
	MaxConcurrency int `koanf:"max_concurrency"` // cap for API requests; 0 means runtime.NumCPU()
}

type BenchmarkConfig struct {
	Repetitions int    `koanf:"repetitions"`
	LogPath     string `koanf:"log_path"`
	Timeout     string `koanf:"timeout"`
}

type RenderConfig struct {
	Enabled bool    `koanf:"enabled"`
	Dir     string  `koanf:"dir"`
	Width   float64 `koanf:"width_cm"`
	Height  float64 `koanf:"height_cm"`
}

// TimeoutDuration returns the per-run timeout; zero means none.
func (c BenchmarkConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Database.Type {
	case "":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	switch c.Layouts.Source {
	case "memory":
	case "filesystem":
		if strings.TrimSpace(c.Layouts.Path) == "" {
			return fmt.Errorf("layouts.path is required")
		}
		if c.Dataset.Layout != "" {
			if _, err := os.Stat(c.Layouts.Path); err != nil {
				return fmt.Errorf("layouts.path %q is not accessible: %w", c.Layouts.Path, err)
			}
		}
	default:
		return fmt.Errorf("unsupported layouts.source %q", c.Layouts.Source)
	}
	if c.Layouts.CacheSize < 0 {
		return fmt.Errorf("layouts.cache_size must be >= 0")
	}

	if c.Dataset.LayoutVersion < 0 {
		return fmt.Errorf("dataset.layout_version must be >= 0")
	}
	if c.Dataset.Synthetic < 0 {
		return fmt.Errorf("dataset.synthetic_events must be >= 0")
	}

	if strings.TrimSpace(c.Dataset.Root) == "" {
		return fmt.Errorf("dataset.root is required")
	}

	if c.Engine.Concurrency < 0 {
		return fmt.Errorf("engine.concurrency must be >= 0")
	}
	if c.Engine.MaxConcurrency < 0 {
		return fmt.Errorf("engine.max_concurrency must be >= 0")
	}

	if c.Benchmark.Repetitions <= 0 {
		return fmt.Errorf("benchmark.repetitions must be > 0")
	}
	if c.Benchmark.Timeout != "" {
		d, err := time.ParseDuration(c.Benchmark.Timeout)
		if err != nil {
			return fmt.Errorf("invalid benchmark.timeout %q: %w", c.Benchmark.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("benchmark.timeout must be >= 0")
		}
	}

	if c.Render.Enabled {
		if strings.TrimSpace(c.Render.Dir) == "" {
			return fmt.Errorf("render.dir is required when rendering is enabled")
		}
		if c.Render.Width <= 0 || c.Render.Height <= 0 {
			return fmt.Errorf("render.width_cm and render.height_cm must be > 0")
		}
	}

	return nil
}

// Load parses config from defaults, an optional file and HEPFRAME_ env vars,
// then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.max_body_size_mb":  1,
		"server.mode":              "release",
		"database.type":            "",
		"database.dsn":             "",
		"database.max_open_conns":  10,
		"database.max_idle_conns":  10,
		"database.auto_migrate":    true,
		"layouts.source":           "filesystem",
		"layouts.path":             "./layouts",
		"layouts.cache_size":       256,
		"dataset.input":            "",
		"dataset.root":             "./data",
		"dataset.layout":           "",
		"dataset.layout_version":   0,
		"dataset.synthetic_events": 0,
		"dataset.seed":             1,
		"engine.concurrency":       0,
		"engine.max_concurrency":   0,
		"benchmark.repetitions":    1,
		"benchmark.log_path":       "reports/LOG.txt",
		"benchmark.timeout":        "",
		"render.enabled":           false,
		"render.dir":               "reports/plots",
		"render.width_cm":          16,
		"render.height_cm":         12,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("HEPFRAME_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "HEPFRAME_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
