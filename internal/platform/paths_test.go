package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_DATA_HOME":   "/xdg/data",
	}, "/fallback/config", "/fallback/data", "pitstop")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/xdg/config", "pitstop", "config.toml")
	wantDB := filepath.Join("/xdg/data", "pitstop", "snapshots.db")
	wantSchedules := filepath.Join("/xdg/data", "pitstop", "schedules")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
	if p.SchedulesDir != wantSchedules {
		t.Fatalf("unexpected schedules dir %q", p.SchedulesDir)
	}
}

func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
	}, `C:\fallback\config`, `C:\fallback\data`, "pitstop")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join(`C:\Users\me\AppData\Roaming`, "pitstop", "config.toml")
	wantDB := filepath.Join(`C:\Users\me\AppData\Local`, "pitstop", "snapshots.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

func TestPathsForEmptyDirsFails(t *testing.T) {
	_, err := PathsFor("darwin", nil, "", "/tmp/data", "pitstop")
	if err == nil {
		t.Fatal("expected error for empty dirs")
	}
}

func TestPathsForEmptyAppNameFails(t *testing.T) {
	_, err := PathsFor("linux", nil, "/tmp/config", "/tmp/data", "   ")
	if err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestPathsForDarwinIgnoresXDG(t *testing.T) {
	base := "/Users/me/Library/Application Support"
	p, err := PathsFor("darwin", map[string]string{
		"XDG_CONFIG_HOME": "/ignored",
		"XDG_DATA_HOME":   "/ignored",
	}, base, base, "pitstop")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if p.ConfigPath != filepath.Join(base, "pitstop", "config.toml") {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
}
