package app

import "errors"

// ErrNotFound and related errors describe service-level failures outside the
// structural error taxonomy owned by the domain package.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoSnapshotStore  = errors.New("no snapshot store configured")
	ErrSchedulesDiffer  = errors.New("schedules differ")
	ErrVerificationFail = errors.New("file does not match generated output")
	ErrSnapshotDrift    = errors.New("resolved schedule drifted from last snapshot")
)
