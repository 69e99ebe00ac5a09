package kiln

import (
	"fmt"
	"math"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
)

// pwmQuantumPercent is the power step the PWM heater rounds down to. At
// 5 Hz switching against 50 Hz mains, 10% steps keep the SSR conducting
// whole sine cycles; switching half waves would leave a DC bias on the
// supply transformer. A physical constraint, not a tunable.
const pwmQuantumPercent = 10.0

// Heater converts a power-percent command into physical or simulated
// output.
type Heater interface {
	// PowerPercent returns the power the heater last applied, after any
	// hardware quantisation.
	PowerPercent() float64
}

// newHeater builds the configured heater variant, wired to the bus.
func newHeater(cfg HeaterConfig, zone *Zone, b *bus.Bus, hw *hal.Registry) (Heater, error) {
	switch cfg.Type {
	case HeaterTypeVirtual:
		return newVirtualHeater(zone, b), nil
	case HeaterTypePWM:
		pwm, err := hw.PWM(cfg.Connection)
		if err != nil {
			return nil, fmt.Errorf("heater %q: %w", cfg.Label, err)
		}
		return newPWMHeater(zone, b, pwm), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeaterType, cfg.Type)
	}
}

// virtualHeater echoes the commanded power without hardware. Forcing
// power to zero on ScheduleFinished still matters: the virtual sensor's
// thermal model cools the zone through the resulting power announcements.
type virtualHeater struct {
	zone  *Zone
	b     *bus.Bus
	power float64
}

func newVirtualHeater(zone *Zone, b *bus.Bus) *virtualHeater {
	h := &virtualHeater{zone: zone, b: b}
	b.Subscribe(bus.TypeZoneControllerOutputChanged, h.handleControllerOutput)
	b.Subscribe(bus.TypeScheduleFinished, h.handleScheduleFinished)
	return h
}

func (h *virtualHeater) PowerPercent() float64 { return h.power }

func (h *virtualHeater) handleControllerOutput(ev bus.Event) error {
	out, ok := ev.(bus.ZoneControllerOutputChanged)
	if !ok || out.Zone != any(h.zone) {
		return nil
	}

	h.power = clampPercent(out.Percent)
	return h.publishPower()
}

// handleScheduleFinished forces power off unconditionally. No zone filter:
// every heater in the kiln shuts down when the firing ends, whatever ended
// it.
func (h *virtualHeater) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok {
		return nil
	}
	h.power = 0
	return h.publishPower()
}

func (h *virtualHeater) publishPower() error {
	return h.b.Publish(bus.ZoneHeaterPowerChanged{
		Zone:    h.zone,
		Percent: h.power,
	})
}

// pwmHeater drives a solid-state relay through a PWM output, quantising
// the requested power down to whole 10% steps.
type pwmHeater struct {
	zone  *Zone
	b     *bus.Bus
	pwm   hal.PWMDriver
	power float64
}

func newPWMHeater(zone *Zone, b *bus.Bus, pwm hal.PWMDriver) *pwmHeater {
	h := &pwmHeater{zone: zone, b: b, pwm: pwm}
	b.Subscribe(bus.TypeZoneControllerOutputChanged, h.handleControllerOutput)
	b.Subscribe(bus.TypeScheduleFinished, h.handleScheduleFinished)
	return h
}

func (h *pwmHeater) PowerPercent() float64 { return h.power }

// quantisePower floors a power request to the nearest lower 10% step.
// 100% is already a whole number of cycles and passes through unchanged.
func quantisePower(percent float64) float64 {
	return math.Floor(clampPercent(percent)/pwmQuantumPercent) * pwmQuantumPercent
}

func (h *pwmHeater) handleControllerOutput(ev bus.Event) error {
	out, ok := ev.(bus.ZoneControllerOutputChanged)
	if !ok || out.Zone != any(h.zone) {
		return nil
	}

	h.power = quantisePower(out.Percent)
	if err := h.pwm.SetDutyCycle(h.power / powerMax); err != nil {
		return fmt.Errorf("driving heater for zone %q: %w", h.zone.Label(), err)
	}
	return h.publishPower()
}

func (h *pwmHeater) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok {
		return nil
	}
	h.power = 0
	if err := h.pwm.SetDutyCycle(0); err != nil {
		return fmt.Errorf("shutting down heater for zone %q: %w", h.zone.Label(), err)
	}
	return h.publishPower()
}

func (h *pwmHeater) publishPower() error {
	return h.b.Publish(bus.ZoneHeaterPowerChanged{
		Zone:    h.zone,
		Percent: h.power,
	})
}
