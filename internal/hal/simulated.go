package hal

import (
	"fmt"
	"sync"
)

// ambientKelvin is the default temperature reported by a simulated
// thermocouple before anything is injected.
const ambientKelvin = 293.15

// SimulatedThermocouple is an in-memory ThermocoupleReader with settable
// readings and injectable faults.
type SimulatedThermocouple struct {
	mu      sync.Mutex
	reading ThermocoupleReading
	faults  Faults
	readErr error
}

// NewSimulatedThermocouple returns a simulated thermocouple reporting
// ambient temperature and no faults.
func NewSimulatedThermocouple() *SimulatedThermocouple {
	return &SimulatedThermocouple{
		reading: ThermocoupleReading{
			TemperatureKelvin:  ambientKelvin,
			ColdJunctionKelvin: ambientKelvin,
		},
	}
}

// Read implements ThermocoupleReader.
func (s *SimulatedThermocouple) Read() (ThermocoupleReading, Faults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading, s.faults, s.readErr
}

// SetTemperature sets the hot-junction temperature returned by Read.
func (s *SimulatedThermocouple) SetTemperature(kelvin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading.TemperatureKelvin = kelvin
}

// SetFaults sets the fault flags returned by Read.
func (s *SimulatedThermocouple) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// SetError sets a transport error returned by Read.
func (s *SimulatedThermocouple) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// SimulatedPWM is an in-memory PWMDriver recording the last duty cycle.
type SimulatedPWM struct {
	mu   sync.Mutex
	duty float64
}

// SetDutyCycle implements PWMDriver.
func (s *SimulatedPWM) SetDutyCycle(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return fmt.Errorf("%w: duty cycle %v outside [0,1]", ErrInvalidDutyCycle, fraction)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duty = fraction
	return nil
}

// DutyCycle returns the last applied duty-cycle fraction.
func (s *SimulatedPWM) DutyCycle() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duty
}

// SimulatedRelay is an in-memory RelayDriver recording its state and how
// often it switched.
type SimulatedRelay struct {
	mu        sync.Mutex
	energised bool
	switches  int
}

// Set implements RelayDriver.
func (s *SimulatedRelay) Set(energised bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.energised != energised {
		s.switches++
	}
	s.energised = energised
	return nil
}

// Energised returns the current relay state.
func (s *SimulatedRelay) Energised() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.energised
}

// Switches returns how many times the relay changed state.
func (s *SimulatedRelay) Switches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switches
}
