package telemetry

import (
	"github.com/nerrad567/kiln-logic-core/internal/bus"
)

// MetricsWriter is the subset of the InfluxDB client the Recorder needs.
// Writes are expected to be non-blocking.
type MetricsWriter interface {
	WriteTemperature(kilnID, zoneID string, kelvin float64)
	WriteSetPoint(kilnID, segment string, kelvin float64)
	WriteHeaterPower(kilnID, zoneID string, percent float64)
}

// Recorder writes firing telemetry to a time-series store.
//
// Per-zone readings and heater power are tagged with the zone label;
// setpoints are tagged with the active segment's label.
type Recorder struct {
	kilnID  string
	writer  MetricsWriter
	segment string
}

// NewRecorder wires a Recorder to the bus.
//
// Parameters:
//   - kilnID: Kiln identifier used as a tag on every point
//   - writer: Connected InfluxDB client (or any MetricsWriter)
//   - b: Event bus to observe
func NewRecorder(kilnID string, writer MetricsWriter, b *bus.Bus) *Recorder {
	r := &Recorder{
		kilnID: kilnID,
		writer: writer,
	}

	b.Subscribe(bus.TypeScheduleNextSegment, r.handleSegment)
	b.Subscribe(bus.TypeZoneSensorTemperatureChanged, r.handleTemperature)
	b.Subscribe(bus.TypeSegmentSetPointChanged, r.handleSetPoint)
	b.Subscribe(bus.TypeZoneHeaterPowerChanged, r.handleHeaterPower)

	return r
}

func (r *Recorder) handleSegment(ev bus.Event) error {
	if next, ok := ev.(bus.ScheduleNextSegment); ok {
		r.segment = next.Label
	}
	return nil
}

func (r *Recorder) handleTemperature(ev bus.Event) error {
	if tc, ok := ev.(bus.ZoneSensorTemperatureChanged); ok {
		r.writer.WriteTemperature(r.kilnID, zoneLabel(tc.Zone), tc.Kelvin)
	}
	return nil
}

func (r *Recorder) handleSetPoint(ev bus.Event) error {
	if sp, ok := ev.(bus.SegmentSetPointChanged); ok {
		r.writer.WriteSetPoint(r.kilnID, r.segment, sp.Kelvin)
	}
	return nil
}

func (r *Recorder) handleHeaterPower(ev bus.Event) error {
	if hp, ok := ev.(bus.ZoneHeaterPowerChanged); ok {
		r.writer.WriteHeaterPower(r.kilnID, zoneLabel(hp.Zone), hp.Percent)
	}
	return nil
}
