package kiln

import (
	"fmt"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
)

// Power output bounds, in percent. Every controller and heater clamps to
// this range.
const (
	powerMin = 0.0
	powerMax = 100.0
)

// virtualControllerFloor is the minimum non-zero output of the virtual
// proportional-clamp law. Deliberately crude: enough drive to make the
// simulated zone move, no tuning pretensions.
const virtualControllerFloor = 20.0

// Controller converts (setpoint, measurement) into a power-percent
// command, recomputed once per tick.
type Controller interface {
	// Output returns the most recently commanded power percent.
	Output() float64
}

// newController builds the configured controller variant, wired to the bus.
func newController(cfg ControllerConfig, zone *Zone, b *bus.Bus) (Controller, error) {
	switch cfg.Type {
	case ControllerTypeVirtual:
		return newVirtualController(zone, b), nil
	case ControllerTypePID:
		return newPIDController(cfg, zone, b), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownControllerType, cfg.Type)
	}
}

// clampPercent bounds a power command to [0,100].
func clampPercent(v float64) float64 {
	if v < powerMin {
		return powerMin
	}
	if v > powerMax {
		return powerMax
	}
	return v
}

// controllerState carries the inputs both controller variants track: the
// schedule-wide setpoint and the own-zone measurement.
type controllerState struct {
	zone     *Zone
	b        *bus.Bus
	setPoint float64
	latest   float64
	output   float64
}

func (c *controllerState) Output() float64 { return c.output }

func (c *controllerState) handleSetPointChanged(ev bus.Event) error {
	if sp, ok := ev.(bus.SegmentSetPointChanged); ok {
		c.setPoint = sp.Kelvin
	}
	return nil
}

func (c *controllerState) handleZoneTemperatureChanged(ev bus.Event) error {
	if reading, ok := ev.(bus.ZoneSensorTemperatureChanged); ok && reading.Zone == any(c.zone) {
		c.latest = reading.Kelvin
	}
	return nil
}

func (c *controllerState) publishOutput() error {
	return c.b.Publish(bus.ZoneControllerOutputChanged{
		Zone:    c.zone,
		Percent: c.output,
	})
}

// virtualController implements the deliberately crude proportional-clamp
// law: clamp(20,100, setpoint-temperature) while below setpoint, else 0.
type virtualController struct {
	controllerState
}

func newVirtualController(zone *Zone, b *bus.Bus) *virtualController {
	c := &virtualController{controllerState{
		zone:   zone,
		b:      b,
		latest: startTemperatureKelvin,
	}}
	b.Subscribe(bus.TypeKilnUpdateTriggered, c.handleUpdateTriggered)
	b.Subscribe(bus.TypeSegmentSetPointChanged, c.handleSetPointChanged)
	b.Subscribe(bus.TypeZoneSensorTemperatureChanged, c.handleZoneTemperatureChanged)
	return c
}

func (c *virtualController) handleUpdateTriggered(ev bus.Event) error {
	if _, ok := ev.(bus.KilnUpdateTriggered); !ok {
		return nil
	}

	if c.setPoint > c.latest {
		err := c.setPoint - c.latest
		if err < virtualControllerFloor {
			err = virtualControllerFloor
		}
		c.output = clampPercent(err)
	} else {
		c.output = 0
	}

	return c.publishOutput()
}

// pidController drives the zone with a standard PID regulator.
type pidController struct {
	controllerState
	pid *pid
}

func newPIDController(cfg ControllerConfig, zone *Zone, b *bus.Bus) *pidController {
	c := &pidController{
		controllerState: controllerState{
			zone:   zone,
			b:      b,
			latest: startTemperatureKelvin,
		},
		pid: newPID(cfg.PID, powerMin, powerMax),
	}
	b.Subscribe(bus.TypeKilnUpdateTriggered, c.handleUpdateTriggered)
	b.Subscribe(bus.TypeSegmentStarted, c.handleSegmentStarted)
	b.Subscribe(bus.TypeSegmentSetPointChanged, c.handleSetPointChanged)
	b.Subscribe(bus.TypeZoneSensorTemperatureChanged, c.handleZoneTemperatureChanged)
	return c
}

// handleSegmentStarted clears the regulator at segment boundaries. They
// are where the setpoint trajectory breaks; integral accumulated against
// the old segment must not bleed into the new one.
func (c *pidController) handleSegmentStarted(ev bus.Event) error {
	if _, ok := ev.(bus.SegmentStarted); ok {
		c.pid.reset()
	}
	return nil
}

func (c *pidController) handleUpdateTriggered(ev bus.Event) error {
	tick, ok := ev.(bus.KilnUpdateTriggered)
	if !ok {
		return nil
	}

	c.output = clampPercent(c.pid.update(c.setPoint, c.latest, tick.Tick))
	return c.publishOutput()
}
