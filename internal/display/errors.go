package display

import "errors"

// ErrUnknownDisplay indicates an unrecognised display type in configuration.
var ErrUnknownDisplay = errors.New("display: unknown type")
