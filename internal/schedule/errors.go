package schedule

import "errors"

var (
	// ErrInvalidSchedule wraps every schedule validation failure.
	ErrInvalidSchedule = errors.New("schedule: invalid configuration")

	// ErrUnknownScale is returned for an unrecognised temperature scale,
	// hold-time scale or gradient timebase.
	ErrUnknownScale = errors.New("schedule: unknown scale")
)
