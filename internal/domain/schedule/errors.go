package schedule

import "errors"

var (
	// ErrOverlapConflict marks a candidate assignment that overlaps another
	// ACTIVE assignment of the same employee.
	ErrOverlapConflict = errors.New("assignment overlaps an active assignment")

	ErrNotFound     = errors.New("assignment not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("invalid assignment data")
)
