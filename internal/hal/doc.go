// Package hal defines the narrow hardware capabilities the control loop
// depends on, and simulated implementations of each.
//
// The control loop never talks to chips directly. Physical sensor,
// heater and isolator variants reach their hardware through three
// capabilities:
//
//   - ThermocoupleReader: read a temperature plus fault flags
//   - PWMDriver: set a duty-cycle fraction
//   - RelayDriver: set a relay state
//
// Connection identifiers from the kiln configuration (board pin names such
// as "D5") are resolved through a Registry. The default registry hands out
// simulated drivers keyed by pin name, so the full physical code path can
// run and be tested without hardware. A build for a real board registers
// an OpenFunc that constructs drivers for the actual chip (MAX31856 over
// SPI, GPIO-driven SSRs and contactors); those bit-level drivers live
// outside this module.
package hal
