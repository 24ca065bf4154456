// Package app implements the schedule resolution engine: ancestry
// linearization, incremental constant resolution, last-wins merging with
// provenance, and the comparison/verification services built on top.
package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raceday/pitstop/internal/domain"
)

// IDGenerator returns unique identifiers for new snapshots.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service exposes resolution and the operations layered on it. It holds an
// immutable universe and performs no I/O outside the optional snapshot store.
type Service struct {
	universe  Universe
	snapshots SnapshotStore
	idGen     IDGenerator
	clock     Clock
}

// ServiceConfig holds optional collaborators for a Service.
type ServiceConfig struct {
	Snapshots SnapshotStore
	IDGen     IDGenerator
	Clock     Clock
}

// NewService constructs a service over one loaded universe.
func NewService(universe Universe, cfg ServiceConfig) *Service {
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = func() string { return "" }
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		universe:  universe,
		snapshots: cfg.Snapshots,
		idGen:     idGen,
		clock:     clock,
	}
}

// ForkIDs lists the loaded fork ids, sorted.
func (s *Service) ForkIDs() []string {
	return s.universe.ForkIDs()
}

// ChangeIDsLoaded lists the loaded change ids, sorted.
func (s *Service) ChangeIDsLoaded() []string {
	return s.universe.ChangeIDs()
}

// Explain returns the ordered write history for one (category, member) key of
// one fork's resolved schedule. An untouched key yields MemberNotFound (or
// CategoryNotFound) rather than an empty history.
func (s *Service) Explain(forkID, category, member string) ([]domain.ProvenanceEntry, error) {
	schedule, err := s.Resolve(forkID)
	if err != nil {
		return nil, err
	}
	if _, err := schedule.Value(category, member); err != nil {
		return nil, err
	}
	return schedule.Trace.Chain(category, member), nil
}

// Digest computes the canonical digest of one resolved schedule. JSON
// marshaling sorts map keys, so equal schedules digest identically.
func Digest(schedule domain.ResolvedSchedule) (string, error) {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return "", fmt.Errorf("encode schedule: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// TakeSnapshot resolves forkID and persists the result with its digest.
func (s *Service) TakeSnapshot(ctx context.Context, forkID string) (domain.Snapshot, error) {
	if s.snapshots == nil {
		return domain.Snapshot{}, ErrNoSnapshotStore
	}
	schedule, err := s.Resolve(forkID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	digest, err := Digest(schedule)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot := domain.Snapshot{
		ID:       s.idGen(),
		Fork:     forkID,
		Digest:   digest,
		TakenAt:  s.clock().UTC(),
		Schedule: schedule,
	}
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snapshot, nil
}

// CheckDrift resolves forkID and compares the digest against the latest
// recorded snapshot. ErrSnapshotDrift reports a mismatch; ErrNotFound means
// no snapshot has been taken yet.
func (s *Service) CheckDrift(ctx context.Context, forkID string) (domain.Snapshot, error) {
	if s.snapshots == nil {
		return domain.Snapshot{}, ErrNoSnapshotStore
	}
	schedule, err := s.Resolve(forkID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	digest, err := Digest(schedule)
	if err != nil {
		return domain.Snapshot{}, err
	}
	latest, err := s.snapshots.LatestSnapshot(ctx, forkID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if latest.Digest != digest {
		return latest, fmt.Errorf("%w: recorded %s, current %s", ErrSnapshotDrift, latest.Digest, digest)
	}
	return latest, nil
}

// ListSnapshots returns the recorded snapshots for forkID, oldest first.
func (s *Service) ListSnapshots(ctx context.Context, forkID string) ([]domain.Snapshot, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	if _, ok := s.universe.Fork(forkID); !ok {
		return nil, &domain.ForkNotFoundError{ForkID: forkID, Available: s.universe.ForkIDs()}
	}
	return s.snapshots.ListSnapshots(ctx, forkID)
}
