package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/schedules", "/tmp/pitstop.db")
	if cfg.Schedules.Dir != "/tmp/schedules" {
		t.Fatalf("unexpected schedules dir %q", cfg.Schedules.Dir)
	}
	if cfg.Snapshots.DBPath != "/tmp/pitstop.db" {
		t.Fatalf("unexpected db path %q", cfg.Snapshots.DBPath)
	}
	if cfg.Generate.DefaultClient != "geth" {
		t.Fatalf("unexpected default client %q", cfg.Generate.DefaultClient)
	}
	if cfg.Serve.HTTPBind != "127.0.0.1:8080" {
		t.Fatalf("unexpected bind %q", cfg.Serve.HTTPBind)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/schedules", "/tmp/pitstop.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Schedules.Dir != defaults.Schedules.Dir {
		t.Fatalf("expected default schedules dir, got %q", cfg.Schedules.Dir)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[schedules]
dir = "/custom/schedules"

[generate]
default_client = "erigon"
output_dir = "out"

[serve]
http_bind = "0.0.0.0:9090"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/schedules", "/tmp/pitstop.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Schedules.Dir != "/custom/schedules" {
		t.Fatalf("unexpected schedules dir %q", cfg.Schedules.Dir)
	}
	if cfg.Generate.DefaultClient != "erigon" {
		t.Fatalf("unexpected client %q", cfg.Generate.DefaultClient)
	}
	if cfg.Serve.HTTPBind != "0.0.0.0:9090" {
		t.Fatalf("unexpected bind %q", cfg.Serve.HTTPBind)
	}
	if cfg.Snapshots.DBPath != "/tmp/pitstop.db" {
		t.Fatalf("expected default db path to survive, got %q", cfg.Snapshots.DBPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level %q", cfg.Logging.Level)
	}
}

func TestLoadPassesClientNameThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[generate]
default_client = "besu"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	// Config does not know the supported client set; generator selection does.
	cfg, err := Load(path, Default("/tmp/schedules", "/tmp/pitstop.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Generate.DefaultClient != "besu" {
		t.Fatalf("unexpected client %q", cfg.Generate.DefaultClient)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
level = "verbose"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/schedules", "/tmp/pitstop.db")); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestValidateRejectsEndpointCollision(t *testing.T) {
	cfg := Default("/tmp/schedules", "/tmp/pitstop.db")
	cfg.Serve.APIEndpoint = "/x"
	cfg.Serve.MCPEndpoint = "/x"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for colliding endpoints")
	}
}
