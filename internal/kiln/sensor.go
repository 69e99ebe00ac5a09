package kiln

import (
	"fmt"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
)

// startTemperatureKelvin is the temperature every component assumes before
// the first real reading arrives.
const startTemperatureKelvin = 273.15

// Virtual thermal model coefficients. Per tick the simulated zone loses a
// fraction of its temperature above freezing to the environment and gains
// heat proportional to commanded power.
const (
	virtualLossCoefficient = 0.005
	virtualGainPerPercent  = 0.15
)

// Sensor produces a zone temperature reading.
type Sensor interface {
	// TemperatureKelvin returns the latest measured temperature.
	TemperatureKelvin() float64
}

// newSensor builds the configured sensor variant, wired to the bus.
func newSensor(cfg SensorConfig, zone *Zone, b *bus.Bus, hw *hal.Registry, log Logger) (Sensor, error) {
	switch cfg.Type {
	case SensorTypeVirtual:
		return newVirtualSensor(zone, b), nil
	case SensorTypeMAX31856:
		tc, err := hw.Thermocouple(cfg.Connection, cfg.FaultConnection)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", cfg.Label, err)
		}
		return newMAX31856Sensor(cfg, zone, b, tc, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensorType, cfg.Type)
	}
}

// virtualSensor models a kiln zone in closed loop with its heater. It has
// no tick reaction of its own: each heater power announcement advances the
// thermal model one step and republishes the zone temperature, which keeps
// one model step per tick since heaters emit power once per tick.
type virtualSensor struct {
	zone   *Zone
	b      *bus.Bus
	latest float64
}

func newVirtualSensor(zone *Zone, b *bus.Bus) *virtualSensor {
	s := &virtualSensor{
		zone:   zone,
		b:      b,
		latest: startTemperatureKelvin,
	}
	b.Subscribe(bus.TypeZoneHeaterPowerChanged, s.handleHeaterPowerChanged)
	return s
}

func (s *virtualSensor) TemperatureKelvin() float64 { return s.latest }

func (s *virtualSensor) handleHeaterPowerChanged(ev bus.Event) error {
	power, ok := ev.(bus.ZoneHeaterPowerChanged)
	if !ok || power.Zone != any(s.zone) {
		return nil
	}

	loss := (s.latest - startTemperatureKelvin) * virtualLossCoefficient
	gain := power.Percent * virtualGainPerPercent
	s.latest = s.latest - loss + gain

	return s.b.Publish(bus.ZoneSensorTemperatureChanged{
		Zone:   s.zone,
		Kelvin: s.latest,
	})
}

// max31856Sensor reads a MAX31856 thermocouple front end once per tick.
//
// Fault handling follows the safety design: a voltage fault is announced
// and tolerated, any other chip fault (or a transport failure) raises an
// alarm and ends the firing through the ordinary finish path.
type max31856Sensor struct {
	cfg     SensorConfig
	zone    *Zone
	b       *bus.Bus
	tc      hal.ThermocoupleReader
	log     Logger
	latest  float64
	aborted bool
}

func newMAX31856Sensor(cfg SensorConfig, zone *Zone, b *bus.Bus, tc hal.ThermocoupleReader, log Logger) *max31856Sensor {
	s := &max31856Sensor{
		cfg:    cfg,
		zone:   zone,
		b:      b,
		tc:     tc,
		log:    log,
		latest: startTemperatureKelvin,
	}
	b.Subscribe(bus.TypeKilnUpdateTriggered, s.handleUpdateTriggered)
	return s
}

func (s *max31856Sensor) TemperatureKelvin() float64 { return s.latest }

func (s *max31856Sensor) handleUpdateTriggered(ev bus.Event) error {
	if _, ok := ev.(bus.KilnUpdateTriggered); !ok {
		return nil
	}

	reading, faults, err := s.tc.Read()
	if err != nil {
		return s.abort(fmt.Sprintf("thermocouple read failed: %v", err))
	}

	if faults.Voltage {
		// Usually EMI or marginal shielding; announce but carry on.
		s.log.Warn("thermocouple voltage fault, check grounding and shielding",
			"sensor", s.cfg.Label,
			"zone", s.zone.Label(),
		)
	}
	if faults.Abortive() {
		return s.abort(fmt.Sprintf("thermocouple fault: %s (temp %.2fK, cold junction %.2fK)",
			faults, reading.TemperatureKelvin, reading.ColdJunctionKelvin))
	}

	s.latest = reading.TemperatureKelvin
	return s.b.Publish(bus.ZoneSensorTemperatureChanged{
		Zone:   s.zone,
		Kelvin: s.latest,
	})
}

// abort raises the alarm and ends the firing. Heater and isolator shutdown
// then follow their normal ScheduleFinished handlers. Only the first fault
// aborts; later reads stay quiet so the finish path runs once.
func (s *max31856Sensor) abort(detail string) error {
	if s.aborted {
		return nil
	}
	s.aborted = true

	s.log.Error("aborting firing on sensor fault",
		"sensor", s.cfg.Label,
		"zone", s.zone.Label(),
		"detail", detail,
	)

	if err := s.b.Publish(bus.AlarmRaised{Reason: "sensor_fault", Detail: detail}); err != nil {
		return err
	}
	return s.b.Publish(bus.ScheduleFinished{})
}
