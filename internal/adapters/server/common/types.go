// Package common holds the app-facing service surface and shared types the
// server transports consume.
package common

import (
	"errors"
	"net/http"

	"github.com/raceday/pitstop/internal/app"
	"github.com/raceday/pitstop/internal/domain"
)

// ScheduleService is the slice of the application service the transports
// need: pure reads over one loaded universe.
type ScheduleService interface {
	Resolve(forkID string) (domain.ResolvedSchedule, error)
	Explain(forkID, category, member string) ([]domain.ProvenanceEntry, error)
	ForkIDs() []string
	ChangeIDsLoaded() []string
}

// ComparisonResult pairs the diff report with the convenience flag clients
// branch on.
type ComparisonResult struct {
	Comparison app.Comparison `json:"comparison"`
	Differs    bool           `json:"differs"`
}

// CompareForks resolves both forks and diffs the results.
func CompareForks(svc ScheduleService, left, right string) (ComparisonResult, error) {
	leftSchedule, err := svc.Resolve(left)
	if err != nil {
		return ComparisonResult{}, err
	}
	rightSchedule, err := svc.Resolve(right)
	if err != nil {
		return ComparisonResult{}, err
	}
	comparison := app.Compare(leftSchedule, rightSchedule)
	return ComparisonResult{Comparison: comparison, Differs: comparison.HasDifferences()}, nil
}

// StatusFromError maps resolution errors onto HTTP status codes. Structural
// not-found conditions are client errors; everything else is a 422 because
// the universe itself is malformed, not the request.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrForkNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCycleDetected),
		errors.Is(err, domain.ErrChangeNotFound),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrConstantNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromError maps resolution errors onto stable machine-readable codes.
func CodeFromError(err error) string {
	switch {
	case errors.Is(err, domain.ErrForkNotFound):
		return "fork_not_found"
	case errors.Is(err, domain.ErrChangeNotFound):
		return "change_not_found"
	case errors.Is(err, domain.ErrCycleDetected):
		return "cycle_detected"
	case errors.Is(err, domain.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, domain.ErrConstantNotFound):
		return "constant_not_found"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "category_not_found"
	case errors.Is(err, domain.ErrMemberNotFound):
		return "member_not_found"
	default:
		return "internal"
	}
}
