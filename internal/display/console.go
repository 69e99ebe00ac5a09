package display

import (
	"fmt"
	"io"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"
)

// Console renders firing progress as one line per kiln reading.
//
// It learns everything from the bus: the active segment label, the
// current setpoint and the applied heater power are folded into each
// temperature line. Temperatures are rendered in the operator's
// configured scale; the control loop itself stays in Kelvin.
type Console struct {
	w     io.Writer
	label string
	scale schedule.TemperatureScale

	segment  string
	setPoint float64
	power    float64
	finished bool
}

// NewConsole wires a console display to the bus.
func NewConsole(kilnLabel string, scale schedule.TemperatureScale, w io.Writer, b *bus.Bus) *Console {
	c := &Console{
		w:     w,
		label: kilnLabel,
		scale: scale,
	}

	b.Subscribe(bus.TypeScheduleNextSegment, c.handleSegment)
	b.Subscribe(bus.TypeSegmentSetPointChanged, c.handleSetPoint)
	b.Subscribe(bus.TypeZoneHeaterPowerChanged, c.handleHeaterPower)
	b.Subscribe(bus.TypeKilnTemperatureChanged, c.handleTemperature)
	b.Subscribe(bus.TypeScheduleFinished, c.handleScheduleFinished)
	b.Subscribe(bus.TypeAlarmRaised, c.handleAlarm)

	return c
}

// Initialise prints the firing header.
func (c *Console) Initialise() error {
	_, err := fmt.Fprintf(c.w, "=== %s: firing started ===\n", c.label)
	return err
}

// Clear prints the firing footer. The terminal keeps the scrollback;
// there is nothing to physically clear.
func (c *Console) Clear() error {
	_, err := fmt.Fprintf(c.w, "=== %s: firing ended ===\n", c.label)
	return err
}

func (c *Console) handleSegment(ev bus.Event) error {
	if next, ok := ev.(bus.ScheduleNextSegment); ok {
		c.segment = next.Label
		c.printf("%s: segment %q active\n", c.label, next.Label)
	}
	return nil
}

func (c *Console) handleSetPoint(ev bus.Event) error {
	if sp, ok := ev.(bus.SegmentSetPointChanged); ok {
		c.setPoint = sp.Kelvin
	}
	return nil
}

func (c *Console) handleHeaterPower(ev bus.Event) error {
	if hp, ok := ev.(bus.ZoneHeaterPowerChanged); ok {
		c.power = hp.Percent
	}
	return nil
}

func (c *Console) handleTemperature(ev bus.Event) error {
	tc, ok := ev.(bus.KilnTemperatureChanged)
	if !ok || c.finished {
		return nil
	}

	unit := symbol(c.scale)
	c.printf("%s [%s] temp=%.1f%s set=%.1f%s power=%.0f%%\n",
		c.label,
		c.segment,
		schedule.FromKelvin(tc.Kelvin, c.scale), unit,
		schedule.FromKelvin(c.setPoint, c.scale), unit,
		c.power,
	)
	return nil
}

func (c *Console) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); ok && !c.finished {
		c.finished = true
		c.printf("%s: schedule finished, cooling\n", c.label)
	}
	return nil
}

func (c *Console) handleAlarm(ev bus.Event) error {
	if alarm, ok := ev.(bus.AlarmRaised); ok {
		c.printf("%s: ALARM %s: %s\n", c.label, alarm.Reason, alarm.Detail)
	}
	return nil
}

// printf writes one line, swallowing writer errors: a broken pipe on
// the operator console must not abort the control dispatch.
func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...) //nolint:errcheck // Display output is best effort
}
