// Package schedule implements the firing programme: the ordered segment
// sequence that computes the time-varying setpoint the control loop
// drives toward.
//
// # State Machine
//
// Each segment moves Inactive → Active → Finished. Activation happens
// exactly when a ScheduleNextSegment names the segment (by identity);
// naming any other segment deactivates it. Finished is terminal.
//
//	KilnInitialised ──► segment 0 active
//	SegmentFinished ──► cursor+1 ──► next segment active
//	                         └─ exhausted ──► ScheduleFinished
//
// Two segment laws exist: a ramp moves the setpoint linearly from the
// activation temperature toward its target and completes when the
// measured temperature comes within tolerance of the target, however long
// that takes; a hold pins the setpoint at the target and completes
// strictly by elapsed wall time, whatever the kiln measures.
//
// # Units
//
// Schedule files are written in the author's units (any mix of
// Kelvin/Celsius/Fahrenheit, hours/minutes/seconds). Normalisation to
// Kelvin and seconds happens exactly once, at construction; no segment
// ever sees the original units.
package schedule
