package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Schedules SchedulesConfig `toml:"schedules"`
	Snapshots SnapshotsConfig `toml:"snapshots"`
	Generate  GenerateConfig  `toml:"generate"`
	Serve     ServeConfig     `toml:"serve"`
	Logging   LoggingConfig   `toml:"logging"`
}

type SchedulesConfig struct {
	Dir string `toml:"dir"`
}

type SnapshotsConfig struct {
	DBPath string `toml:"db_path"`
}

type GenerateConfig struct {
	DefaultClient string `toml:"default_client"`
	OutputDir     string `toml:"output_dir"`
}

type ServeConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

func Default(schedulesDir, dbPath string) Config {
	return Config{
		Schedules: SchedulesConfig{
			Dir: schedulesDir,
		},
		Snapshots: SnapshotsConfig{
			DBPath: dbPath,
		},
		Generate: GenerateConfig{
			DefaultClient: "geth",
			OutputDir:     "generated",
		},
		Serve: ServeConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Schedules.Dir) == "" {
		return errors.New("schedules dir is required")
	}
	if strings.TrimSpace(c.Snapshots.DBPath) == "" {
		return errors.New("snapshots db_path is required")
	}

	// Client names are validated where the generator is selected, so config
	// stays ignorant of the supported client set.
	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	api := strings.TrimSpace(c.Serve.APIEndpoint)
	mcp := strings.TrimSpace(c.Serve.MCPEndpoint)
	if api != "" && api == mcp {
		return errors.New("serve.api_endpoint and serve.mcp_endpoint must differ")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
