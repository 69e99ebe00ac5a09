// Package mqtt is the controller's outbound connection to an MQTT broker.
//
// The controller only ever publishes. Firing telemetry (temperature,
// setpoint, per-zone heater power, segment changes, alarms, firing state)
// flows out to dashboards and home automation; nothing flows back in —
// MQTT is not a control surface for the kiln.
//
//	Kiln Logic → MQTT Broker → Dashboards / Home Assistant
//
// The client maintains one broker connection with paho's auto-reconnect,
// announces itself on the retained kilnlogic/system/status topic, and
// installs a last-will message so observers can tell a crashed controller
// from a quiet one mid-firing. Topic construction lives in topics.go; the
// wildcard builders there document the patterns external consumers
// subscribe with.
//
// TLS and broker credentials come from configuration; anonymous plaintext
// is for local development only.
package mqtt
