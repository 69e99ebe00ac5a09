package hal

import "errors"

// Domain errors for hardware capability resolution.
var (
	// ErrInvalidConnection is returned when a connection identifier is
	// missing or cannot be resolved to a driver.
	ErrInvalidConnection = errors.New("hal: invalid connection")

	// ErrInvalidDutyCycle is returned when a duty cycle is outside [0,1].
	ErrInvalidDutyCycle = errors.New("hal: invalid duty cycle")
)
