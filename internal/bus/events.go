package bus

import "time"

// EventType identifies one event in the fixed control-loop taxonomy.
type EventType int

// The complete event taxonomy. The flow during a firing is:
//
//	tick → KilnUpdateTriggered → sensors read → ZoneSensorTemperatureChanged
//	     → kiln aggregates → KilnTemperatureChanged → active segment emits
//	     → SegmentSetPointChanged → controllers recompute
//	     → ZoneControllerOutputChanged → heaters apply → ZoneHeaterPowerChanged
//
// Segment completion advances the schedule via SegmentFinished and
// ScheduleNextSegment until ScheduleFinished disengages the isolator and
// forces the heaters off.
const (
	TypeKilnInitialised EventType = iota
	TypeKilnUpdateTriggered
	TypeKilnTemperatureChanged
	TypeScheduleNextSegment
	TypeScheduleFinished
	TypeCoolDownFinished
	TypeSegmentStarted
	TypeSegmentSetPointChanged
	TypeSegmentFinished
	TypeZoneSensorTemperatureChanged
	TypeZoneControllerOutputChanged
	TypeZoneHeaterPowerChanged
	TypeAlarmRaised
)

// String returns the event type name for logging and error messages.
func (t EventType) String() string {
	switch t {
	case TypeKilnInitialised:
		return "kiln_initialised"
	case TypeKilnUpdateTriggered:
		return "kiln_update_triggered"
	case TypeKilnTemperatureChanged:
		return "kiln_temperature_changed"
	case TypeScheduleNextSegment:
		return "schedule_next_segment"
	case TypeScheduleFinished:
		return "schedule_finished"
	case TypeCoolDownFinished:
		return "cool_down_finished"
	case TypeSegmentStarted:
		return "segment_started"
	case TypeSegmentSetPointChanged:
		return "segment_set_point_changed"
	case TypeSegmentFinished:
		return "segment_finished"
	case TypeZoneSensorTemperatureChanged:
		return "zone_sensor_temperature_changed"
	case TypeZoneControllerOutputChanged:
		return "zone_controller_output_changed"
	case TypeZoneHeaterPowerChanged:
		return "zone_heater_power_changed"
	case TypeAlarmRaised:
		return "alarm_raised"
	default:
		return "unknown"
	}
}

// Event is implemented by every payload struct in the taxonomy.
//
// Whether an event is global or zone-addressed is structural: zone events
// carry a Zone field (compared by identity by interested handlers), global
// events have none.
type Event interface {
	Type() EventType
}

// KilnInitialised announces that the kiln and schedule are wired and the
// firing may begin. The schedule activates its first segment on receipt.
type KilnInitialised struct{}

// KilnUpdateTriggered is published by the periodic tick source, once per
// tick. Sensors and controllers react to it.
type KilnUpdateTriggered struct {
	// Tick is the wall-clock time the tick fired.
	Tick time.Time
}

// KilnTemperatureChanged carries the kiln-level temperature, currently the
// most recent single-zone reading.
type KilnTemperatureChanged struct {
	Kelvin float64
}

// ScheduleNextSegment activates the named segment. Every segment receives
// it; the one whose identity matches Segment becomes active, all others
// deactivate.
type ScheduleNextSegment struct {
	// Segment is the segment to activate, compared by identity.
	Segment any
	// Label is the segment's configured label, for observers that only
	// need to name the segment (telemetry, display, history).
	Label string
}

// ScheduleFinished announces the end of the firing, whether by completing
// the final segment, a hardware fault, or operator abort. Heaters force
// power to zero and the isolator disengages on receipt.
type ScheduleFinished struct{}

// CoolDownFinished announces the end of the post-firing cool-down phase.
type CoolDownFinished struct{}

// SegmentStarted is published immediately after a segment activates. Zones
// respond by reseeding the setpoint from their latest measured temperature.
type SegmentStarted struct{}

// SegmentSetPointChanged carries the active segment's current target for
// the control loop.
type SegmentSetPointChanged struct {
	Kelvin float64
}

// SegmentFinished is published by the active segment when its objective is
// met. The schedule advances its cursor on receipt.
type SegmentFinished struct{}

// ZoneSensorTemperatureChanged carries one zone's measured temperature.
type ZoneSensorTemperatureChanged struct {
	Zone   any
	Kelvin float64
}

// ZoneControllerOutputChanged carries one zone's commanded heater power.
type ZoneControllerOutputChanged struct {
	Zone    any
	Percent float64
}

// ZoneHeaterPowerChanged carries the power a zone's heater actually
// applied, after any hardware quantisation.
type ZoneHeaterPowerChanged struct {
	Zone    any
	Percent float64
}

// AlarmRaised signals an abnormal condition, currently hardware faults on
// the physical sensor read path. It precedes the ScheduleFinished that
// shuts the firing down, so observers can distinguish an aborted firing
// from a completed one.
type AlarmRaised struct {
	// Reason is a short machine-usable cause (e.g. "sensor_fault").
	Reason string
	// Detail is a human-readable description for logs and displays.
	Detail string
}

// Type implementations. Values are deliberately tiny and passed by value.

func (KilnInitialised) Type() EventType              { return TypeKilnInitialised }
func (KilnUpdateTriggered) Type() EventType          { return TypeKilnUpdateTriggered }
func (KilnTemperatureChanged) Type() EventType       { return TypeKilnTemperatureChanged }
func (ScheduleNextSegment) Type() EventType          { return TypeScheduleNextSegment }
func (ScheduleFinished) Type() EventType             { return TypeScheduleFinished }
func (CoolDownFinished) Type() EventType             { return TypeCoolDownFinished }
func (SegmentStarted) Type() EventType               { return TypeSegmentStarted }
func (SegmentSetPointChanged) Type() EventType       { return TypeSegmentSetPointChanged }
func (SegmentFinished) Type() EventType              { return TypeSegmentFinished }
func (ZoneSensorTemperatureChanged) Type() EventType { return TypeZoneSensorTemperatureChanged }
func (ZoneControllerOutputChanged) Type() EventType  { return TypeZoneControllerOutputChanged }
func (ZoneHeaterPowerChanged) Type() EventType       { return TypeZoneHeaterPowerChanged }
func (AlarmRaised) Type() EventType                  { return TypeAlarmRaised }
