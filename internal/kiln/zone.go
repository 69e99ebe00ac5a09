package kiln

import (
	"fmt"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
)

// Zone is one independently sensed, controlled and heated region of the
// kiln. It exclusively owns its Sensor, Controller and Heater, whose
// lifetimes are bounded by the zone's.
//
// Zone identity is object identity: per-zone events carry the *Zone and
// handlers compare pointers.
type Zone struct {
	cfg ZoneConfig
	b   *bus.Bus
	log Logger

	sensor     Sensor
	controller Controller
	heater     Heater

	latestKelvin float64
	overTempTrip bool
}

// newZone builds a zone and its component triple from configuration.
//
// The zone subscribes before its components are built, so its segment-start
// reseed runs ahead of component reactions registered later.
func newZone(cfg ZoneConfig, b *bus.Bus, hw *hal.Registry, log Logger) (*Zone, error) {
	z := &Zone{
		cfg:          cfg,
		b:            b,
		log:          log,
		latestKelvin: startTemperatureKelvin,
	}

	b.Subscribe(bus.TypeSegmentStarted, z.handleSegmentStarted)
	b.Subscribe(bus.TypeZoneSensorTemperatureChanged, z.handleTemperatureChanged)

	var err error
	if z.sensor, err = newSensor(cfg.Sensor, z, b, hw, log); err != nil {
		return nil, fmt.Errorf("zone %q: %w", cfg.Label, err)
	}
	if z.controller, err = newController(cfg.Controller, z, b); err != nil {
		return nil, fmt.Errorf("zone %q: %w", cfg.Label, err)
	}
	if z.heater, err = newHeater(cfg.Heater, z, b, hw); err != nil {
		return nil, fmt.Errorf("zone %q: %w", cfg.Label, err)
	}

	return z, nil
}

// Label returns the zone's configured label.
func (z *Zone) Label() string { return z.cfg.Label }

// TemperatureKelvin returns the zone's latest measured temperature.
func (z *Zone) TemperatureKelvin() float64 { return z.latestKelvin }

// Sensor returns the zone's sensor.
func (z *Zone) Sensor() Sensor { return z.sensor }

// Controller returns the zone's controller.
func (z *Zone) Controller() Controller { return z.controller }

// Heater returns the zone's heater.
func (z *Zone) Heater() Heater { return z.heater }

// handleSegmentStarted reseeds the control loop: a newly active segment's
// controllers must never be driven toward a stale setpoint, so the zone
// publishes its own latest reading as the initial setpoint.
func (z *Zone) handleSegmentStarted(ev bus.Event) error {
	if _, ok := ev.(bus.SegmentStarted); !ok {
		return nil
	}
	return z.b.Publish(bus.SegmentSetPointChanged{Kelvin: z.latestKelvin})
}

// handleTemperatureChanged tracks the zone's own readings and enforces the
// configured over-temperature limit.
func (z *Zone) handleTemperatureChanged(ev bus.Event) error {
	reading, ok := ev.(bus.ZoneSensorTemperatureChanged)
	if !ok || reading.Zone != any(z) {
		return nil
	}

	z.latestKelvin = reading.Kelvin

	if !z.overTempTrip && z.cfg.MaximumTemperatureKelvin > 0 && reading.Kelvin > z.cfg.MaximumTemperatureKelvin {
		z.overTempTrip = true
		detail := fmt.Sprintf("zone %q at %.2fK exceeds maximum %.2fK",
			z.cfg.Label, reading.Kelvin, z.cfg.MaximumTemperatureKelvin)
		z.log.Error("over-temperature limit exceeded, ending firing",
			"zone", z.cfg.Label,
			"temperature_kelvin", reading.Kelvin,
			"maximum_kelvin", z.cfg.MaximumTemperatureKelvin,
		)
		if err := z.b.Publish(bus.AlarmRaised{Reason: "over_temperature", Detail: detail}); err != nil {
			return err
		}
		return z.b.Publish(bus.ScheduleFinished{})
	}
	return nil
}
