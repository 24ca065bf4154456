package domain

import "time"

// Snapshot is one persisted record of a resolution: the schedule itself plus
// a digest over its canonical form, used to detect drift between runs of the
// same authored universe.
type Snapshot struct {
	ID       string
	Fork     string
	Digest   string
	TakenAt  time.Time
	Schedule ResolvedSchedule
}
