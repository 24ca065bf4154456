package mcpapi

import (
	"testing"

	"github.com/raceday/pitstop/internal/domain"
)

type stubService struct{}

func (stubService) Resolve(forkID string) (domain.ResolvedSchedule, error) {
	return domain.ResolvedSchedule{Fork: forkID}, nil
}

func (stubService) Explain(forkID, category, member string) ([]domain.ProvenanceEntry, error) {
	return nil, nil
}

func (stubService) ForkIDs() []string { return nil }

func (stubService) ChangeIDsLoaded() []string { return nil }

func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error for nil schedule service")
	}
}

func TestNewHandlerBuilds(t *testing.T) {
	handler, err := NewHandler(Config{}, stubService{})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if handler == nil {
		t.Fatal("handler is nil")
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := normalizeConfig(Config{})
	if cfg.ServerName != "pitstop" || cfg.ServerVersion != "dev" || cfg.EndpointPath != "/mcp" {
		t.Fatalf("defaults = %+v", cfg)
	}

	cfg = normalizeConfig(Config{ServerName: " x ", ServerVersion: "1.0", EndpointPath: "tools/"})
	if cfg.ServerName != "x" || cfg.ServerVersion != "1.0" || cfg.EndpointPath != "/tools" {
		t.Fatalf("normalized = %+v", cfg)
	}
}
