package app

import (
	"strings"
	"testing"

	"github.com/raceday/pitstop/internal/domain"
)

func scheduleFor(fork string, eips []string, categories map[string]map[string]int64) domain.ResolvedSchedule {
	return domain.ResolvedSchedule{
		Fork:       fork,
		Ancestry:   []string{fork},
		EIPs:       eips,
		Categories: categories,
	}
}

func TestCompareIdenticalSchedules(t *testing.T) {
	left := scheduleFor("cancun", []string{"base"}, map[string]map[string]int64{
		domain.CategoryOperations: {"SLOAD": 2100},
	})
	comparison := Compare(left, left)
	if comparison.HasDifferences() {
		t.Fatalf("identical schedules reported differences: %+v", comparison)
	}
}

func TestCompareChangedAddedRemoved(t *testing.T) {
	left := scheduleFor("cancun", []string{"base"}, map[string]map[string]int64{
		domain.CategoryOperations: {"SLOAD": 2100, "SSTORE": 20000},
		domain.CategoryStorage:    {"REFUND": 4800},
	})
	right := scheduleFor("prague", []string{"base", "7002"}, map[string]map[string]int64{
		domain.CategoryOperations: {"SLOAD": 100, "ADD": 3},
		domain.CategoryMemory:     {"WORD": 3},
	})

	comparison := Compare(left, right)
	if !comparison.HasDifferences() {
		t.Fatal("expected differences")
	}
	if !comparison.EIPsChanged {
		t.Fatal("expected eips change to be reported")
	}

	operations := comparison.Categories[domain.CategoryOperations]
	if diff := operations.Changed["SLOAD"]; diff.Old != 2100 || diff.New != 100 {
		t.Fatalf("unexpected SLOAD diff %+v", diff)
	}
	if operations.Added["ADD"] != 3 {
		t.Fatalf("expected ADD in added, got %+v", operations.Added)
	}
	if operations.Removed["SSTORE"] != 20000 {
		t.Fatalf("expected SSTORE in removed, got %+v", operations.Removed)
	}

	if storage := comparison.Categories[domain.CategoryStorage]; len(storage.Removed) != 1 {
		t.Fatalf("expected storage category removal, got %+v", storage)
	}
	if memory := comparison.Categories[domain.CategoryMemory]; len(memory.Added) != 1 {
		t.Fatalf("expected memory category addition, got %+v", memory)
	}

	names := comparison.CategoryNames()
	if len(names) != 3 {
		t.Fatalf("unexpected category names %v", names)
	}
}

func TestCompareForkRenameOnly(t *testing.T) {
	categories := map[string]map[string]int64{
		domain.CategoryOperations: {"SLOAD": 2100},
	}
	left := scheduleFor("cancun", []string{"base"}, categories)
	right := scheduleFor("prague", []string{"base"}, categories)

	comparison := Compare(left, right)
	if !comparison.HasDifferences() {
		t.Fatal("fork rename alone should count as a difference")
	}
	if comparison.EIPsChanged {
		t.Fatal("eips did not change")
	}
	for name, diff := range comparison.Categories {
		if !diff.Empty() {
			t.Fatalf("category %s unexpectedly differs: %+v", name, diff)
		}
	}
}

func TestVerifyMatch(t *testing.T) {
	ok, diff := Verify("expected", "actual", "same\n", "same\n")
	if !ok || diff != "" {
		t.Fatalf("expected clean match, got ok=%t diff=%q", ok, diff)
	}
}

func TestVerifyMismatchProducesUnifiedDiff(t *testing.T) {
	ok, diff := Verify("expected (params.go)", "actual (params.go)", "SLOAD = 200\n", "SLOAD = 999\n")
	if ok {
		t.Fatal("expected mismatch")
	}
	if diff == "" {
		t.Fatal("expected non-empty diff")
	}
	for _, want := range []string{"expected (params.go)", "actual (params.go)", "-SLOAD = 200", "+SLOAD = 999"} {
		if !strings.Contains(diff, want) {
			t.Fatalf("diff missing %q:\n%s", want, diff)
		}
	}
}
