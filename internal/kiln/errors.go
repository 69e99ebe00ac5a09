package kiln

import "errors"

// Domain errors for kiln construction and configuration.
//
// Configuration errors are fatal at startup: there is no degraded mode for
// a machine that switches mains power into heating elements.
var (
	// ErrInvalidConfig is returned when the kiln configuration fails
	// validation.
	ErrInvalidConfig = errors.New("kiln: invalid configuration")

	// ErrUnknownSensorType is returned for an unrecognised sensor variant.
	ErrUnknownSensorType = errors.New("kiln: unknown sensor type")

	// ErrUnknownControllerType is returned for an unrecognised controller
	// variant.
	ErrUnknownControllerType = errors.New("kiln: unknown controller type")

	// ErrUnknownHeaterType is returned for an unrecognised heater variant.
	ErrUnknownHeaterType = errors.New("kiln: unknown heater type")

	// ErrUnknownIsolatorType is returned for an unrecognised isolator
	// variant.
	ErrUnknownIsolatorType = errors.New("kiln: unknown isolator type")
)
