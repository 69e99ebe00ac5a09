// Package display renders firing progress for the operator.
//
// Displays sit on the observing side of the event bus, like telemetry:
// they fold segment, setpoint and power events into each temperature
// line but never publish anything. The kiln drives only the lifecycle
// (Initialise at firing start, Clear after cool-down) through the
// kiln.Display interface.
//
// Two implementations exist: Console writes human-readable lines to a
// writer (normally stdout), Virtual shows nothing.
package display
