package alarm

import "errors"

var (
	// ErrNotFound reports a stale or deleted alarm ID. Most operations
	// treat it as a benign no-op rather than a failure.
	ErrNotFound = errors.New("alarm not found")

	// ErrPermissionDenied reports that the platform refused to arm an
	// exact wake timer. The mutation that triggered the recompute must
	// be rolled back by the caller.
	ErrPermissionDenied = errors.New("exact wake timer permission denied")

	ErrInvalidTime    = errors.New("invalid wall-clock time")
	ErrInvalidWeekday = errors.New("invalid repeat day")
)
