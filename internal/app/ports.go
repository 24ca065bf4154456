package app

import (
	"context"

	"github.com/raceday/pitstop/internal/domain"
)

// Universe provides read access to one immutable loaded set of forks and
// changes. Implementations must not mutate in place; a host that reloads
// authored files swaps in a whole new Universe so in-flight resolutions keep
// observing one consistent snapshot.
type Universe interface {
	Fork(id string) (domain.Fork, bool)
	ForkIDs() []string // sorted
	Change(id string) (domain.Change, bool)
	ChangeIDs() []string // sorted
}

// SnapshotStore persists resolution snapshots for drift detection.
type SnapshotStore interface {
	SaveSnapshot(context.Context, domain.Snapshot) error
	LatestSnapshot(ctx context.Context, fork string) (domain.Snapshot, error)
	ListSnapshots(ctx context.Context, fork string) ([]domain.Snapshot, error)
}
