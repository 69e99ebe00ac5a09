package mqtt

import "fmt"

// Topic prefixes for the Kiln Logic MQTT hierarchy.
//
// Firing topics use the scheme: kilnlogic/kiln/{kiln_id}/{subtopic}
// so one broker can carry several kilns side by side.
const (
	// TopicPrefixKiln is the base for all per-kiln firing topics.
	TopicPrefixKiln = "kilnlogic/kiln"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "kilnlogic/system"
)

// Topics provides builders for Kiln Logic MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	tempTopic := topics.KilnTemperature("workshop-kiln")
//	// Returns: "kilnlogic/kiln/workshop-kiln/temperature"
type Topics struct{}

// =============================================================================
// Firing Topics
// =============================================================================

// KilnTemperature returns the topic for kiln temperature readings.
//
// Example: kilnlogic/kiln/workshop-kiln/temperature
func (Topics) KilnTemperature(kilnID string) string {
	return fmt.Sprintf("%s/%s/temperature", TopicPrefixKiln, kilnID)
}

// KilnSetPoint returns the topic for the active segment's setpoint.
//
// Example: kilnlogic/kiln/workshop-kiln/setpoint
func (Topics) KilnSetPoint(kilnID string) string {
	return fmt.Sprintf("%s/%s/setpoint", TopicPrefixKiln, kilnID)
}

// KilnSegment returns the topic announcing the active segment's label.
//
// Example: kilnlogic/kiln/workshop-kiln/segment
func (Topics) KilnSegment(kilnID string) string {
	return fmt.Sprintf("%s/%s/segment", TopicPrefixKiln, kilnID)
}

// ZonePower returns the topic for one zone's applied heater power.
//
// Example: kilnlogic/kiln/workshop-kiln/power/main-chamber
func (Topics) ZonePower(kilnID, zoneID string) string {
	return fmt.Sprintf("%s/%s/power/%s", TopicPrefixKiln, kilnID, zoneID)
}

// KilnAlarm returns the topic for alarm notifications.
//
// Example: kilnlogic/kiln/workshop-kiln/alarm
func (Topics) KilnAlarm(kilnID string) string {
	return fmt.Sprintf("%s/%s/alarm", TopicPrefixKiln, kilnID)
}

// KilnFiringState returns the topic for firing lifecycle announcements
// (started, finished, cooling).
//
// Example: kilnlogic/kiln/workshop-kiln/firing
func (Topics) KilnFiringState(kilnID string) string {
	return fmt.Sprintf("%s/%s/firing", TopicPrefixKiln, kilnID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic, also used for the LWT.
//
// Example: kilnlogic/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllKilnTemperatures returns a pattern matching every kiln's temperature.
//
// Pattern: kilnlogic/kiln/+/temperature
func (Topics) AllKilnTemperatures() string {
	return fmt.Sprintf("%s/+/temperature", TopicPrefixKiln)
}

// AllZonePowers returns a pattern matching every zone power topic.
//
// Pattern: kilnlogic/kiln/+/power/+
func (Topics) AllZonePowers() string {
	return fmt.Sprintf("%s/+/power/+", TopicPrefixKiln)
}

// AllKilnAlarms returns a pattern matching every kiln's alarms.
//
// Pattern: kilnlogic/kiln/+/alarm
func (Topics) AllKilnAlarms() string {
	return fmt.Sprintf("%s/+/alarm", TopicPrefixKiln)
}

// AllTopics returns a pattern matching all Kiln Logic topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: kilnlogic/#
func (Topics) AllTopics() string {
	return "kilnlogic/#"
}
