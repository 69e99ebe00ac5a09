// Package kiln implements the physical side of a firing: the kiln
// aggregate, its zones, and the sensor/controller/heater triple inside
// each zone, plus the safety isolator that gates heater power.
//
// # Control Loop
//
// The kiln's periodic tick drives everything. One tick publishes
// KilnUpdateTriggered, and the synchronous bus cascades it through the
// pipeline before the tick returns:
//
//	tick ──► sensor ──► zone temp ──► kiln temp
//	                │
//	                └─► controller ──► heater ──► (virtual sensor model)
//
// Physical sensors read their hardware on the tick itself; the virtual
// sensor instead advances its thermal model on each heater power
// announcement, which keeps one model step per tick.
//
// # Key Types
//
//   - Kiln: owns the zones, isolator, display hook and tick loop
//   - Zone: one sensed, controlled and heated region
//   - Sensor, Controller, Heater: the per-zone component triple, each with
//     a virtual and a physical variant selected by configuration
//   - Isolator: the schedule-gated safety interlock
//
// Component variants are chosen by LoadConfig type selectors; hardware
// variants resolve their pins through a hal.Registry, so tests and virtual
// firings run the identical wiring with simulated drivers.
//
// # Safety
//
// Three independent paths end a firing early, all converging on the
// ordinary ScheduleFinished handling (heaters to zero, isolator open):
// an abortive thermocouple fault, a zone exceeding its configured maximum
// temperature, and operator interruption.
//
// # Thread Safety
//
// Component state is unsynchronised. The design relies on the single tick
// goroutine being the only publisher while a firing runs; see the bus
// package for the dispatch contract.
package kiln
