// Package telemetry turns control-loop events into external records.
//
// Three observers subscribe to the event bus:
//
//   - Publisher mirrors the firing onto MQTT topics so dashboards and
//     home automation can watch live.
//   - Recorder writes temperature, setpoint and heater power points to
//     InfluxDB for graphing.
//   - History persists each firing run, its segments and any alarms to
//     SQLite so past firings can be reviewed.
//
// # Boundary
//
// Telemetry observes the control loop; it never participates in it. All
// handlers log their own failures and return nil, so a dead broker, a
// full disk or a slow database can never abort a dispatch or stop a
// firing. The control loop remains correct with none of these observers
// attached.
package telemetry
