package hal

import (
	"fmt"
	"strings"
	"sync"
)

// ThermocoupleReading is one sample from a thermocouple front end.
type ThermocoupleReading struct {
	// TemperatureKelvin is the hot-junction temperature.
	TemperatureKelvin float64
	// ColdJunctionKelvin is the reference (ambient) temperature.
	ColdJunctionKelvin float64
}

// Faults carries the fault flags a thermocouple front end reports.
//
// Voltage faults are announced but tolerated (typically EMI or marginal
// shielding); any other fault is grounds for aborting a firing.
type Faults struct {
	OpenCircuit       bool
	Voltage           bool
	ThermocoupleRange bool
	ColdJunctionRange bool
}

// Abortive reports whether the fault set requires ending the firing.
// A voltage fault alone does not.
func (f Faults) Abortive() bool {
	return f.OpenCircuit || f.ThermocoupleRange || f.ColdJunctionRange
}

// String lists the active flags, or "none".
func (f Faults) String() string {
	var flags []string
	if f.OpenCircuit {
		flags = append(flags, "open_circuit")
	}
	if f.Voltage {
		flags = append(flags, "voltage")
	}
	if f.ThermocoupleRange {
		flags = append(flags, "tc_range")
	}
	if f.ColdJunctionRange {
		flags = append(flags, "cj_range")
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, ",")
}

// ThermocoupleReader reads a physical temperature sensor.
type ThermocoupleReader interface {
	// Read returns the latest sample and fault flags. The error covers
	// transport failures only; chip-reported faults arrive in Faults.
	Read() (ThermocoupleReading, Faults, error)
}

// PWMDriver drives a PWM output, e.g. a solid-state relay.
type PWMDriver interface {
	// SetDutyCycle applies a duty-cycle fraction in [0,1].
	SetDutyCycle(fraction float64) error
}

// RelayDriver drives a single on/off relay output.
type RelayDriver interface {
	// Set energises (true) or releases (false) the relay.
	Set(energised bool) error
}

// OpenFuncs constructs drivers for a connection identifier (a board pin
// name from configuration). A physical build supplies functions that open
// the real chip drivers.
type OpenFuncs struct {
	Thermocouple func(sensorPin, faultPin string) (ThermocoupleReader, error)
	PWM          func(pin string) (PWMDriver, error)
	Relay        func(pin string) (RelayDriver, error)
}

// Registry resolves configuration connection identifiers to drivers.
//
// The zero configuration (New with empty OpenFuncs fields) resolves every
// pin to a simulated driver, one instance per pin name, so virtual firings
// and tests exercise the same resolution path as hardware builds.
type Registry struct {
	open OpenFuncs

	mu            sync.Mutex
	thermocouples map[string]*SimulatedThermocouple
	pwms          map[string]*SimulatedPWM
	relays        map[string]*SimulatedRelay
}

// NewRegistry creates a Registry. Any nil OpenFuncs field falls back to
// simulated drivers.
func NewRegistry(open OpenFuncs) *Registry {
	return &Registry{
		open:          open,
		thermocouples: make(map[string]*SimulatedThermocouple),
		pwms:          make(map[string]*SimulatedPWM),
		relays:        make(map[string]*SimulatedRelay),
	}
}

// Thermocouple resolves a thermocouple front end on the given pins.
func (r *Registry) Thermocouple(sensorPin, faultPin string) (ThermocoupleReader, error) {
	if sensorPin == "" {
		return nil, fmt.Errorf("%w: thermocouple sensor pin is required", ErrInvalidConnection)
	}
	if r.open.Thermocouple != nil {
		return r.open.Thermocouple(sensorPin, faultPin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tc, ok := r.thermocouples[sensorPin]
	if !ok {
		tc = NewSimulatedThermocouple()
		r.thermocouples[sensorPin] = tc
	}
	return tc, nil
}

// PWM resolves a PWM output on the given pin.
func (r *Registry) PWM(pin string) (PWMDriver, error) {
	if pin == "" {
		return nil, fmt.Errorf("%w: PWM pin is required", ErrInvalidConnection)
	}
	if r.open.PWM != nil {
		return r.open.PWM(pin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pwms[pin]
	if !ok {
		p = &SimulatedPWM{}
		r.pwms[pin] = p
	}
	return p, nil
}

// Relay resolves a relay output on the given pin.
func (r *Registry) Relay(pin string) (RelayDriver, error) {
	if pin == "" {
		return nil, fmt.Errorf("%w: relay pin is required", ErrInvalidConnection)
	}
	if r.open.Relay != nil {
		return r.open.Relay(pin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rl, ok := r.relays[pin]
	if !ok {
		rl = &SimulatedRelay{}
		r.relays[pin] = rl
	}
	return rl, nil
}

// SimulatedPin returns the simulated PWM driver previously resolved for a
// pin, or nil. Intended for tests inspecting applied duty cycles.
func (r *Registry) SimulatedPin(pin string) *SimulatedPWM {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pwms[pin]
}

// SimulatedRelayPin returns the simulated relay previously resolved for a
// pin, or nil. Intended for tests inspecting relay state.
func (r *Registry) SimulatedRelayPin(pin string) *SimulatedRelay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relays[pin]
}

// SimulatedThermocouplePin returns the simulated thermocouple previously
// resolved for a pin, or nil. Intended for tests injecting readings.
func (r *Registry) SimulatedThermocouplePin(pin string) *SimulatedThermocouple {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.thermocouples[pin]
}
