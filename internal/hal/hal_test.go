package hal

import (
	"errors"
	"testing"
)

func TestRegistry_SimulatedFallback(t *testing.T) {
	r := NewRegistry(OpenFuncs{})

	tc, err := r.Thermocouple("D5", "D6")
	if err != nil {
		t.Fatalf("Thermocouple() error = %v", err)
	}
	reading, faults, err := tc.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if faults.Abortive() {
		t.Errorf("fresh simulated thermocouple reports abortive faults: %v", faults)
	}
	if reading.TemperatureKelvin != ambientKelvin {
		t.Errorf("TemperatureKelvin = %v, want ambient %v", reading.TemperatureKelvin, ambientKelvin)
	}

	// Same pin resolves to the same instance.
	again, err := r.Thermocouple("D5", "D6")
	if err != nil {
		t.Fatalf("Thermocouple() second resolve error = %v", err)
	}
	if again != tc {
		t.Error("resolving the same pin twice returned different instances")
	}
}

func TestRegistry_EmptyPinRejected(t *testing.T) {
	r := NewRegistry(OpenFuncs{})

	if _, err := r.Thermocouple("", ""); !errors.Is(err, ErrInvalidConnection) {
		t.Errorf("Thermocouple(\"\") error = %v, want ErrInvalidConnection", err)
	}
	if _, err := r.PWM(""); !errors.Is(err, ErrInvalidConnection) {
		t.Errorf("PWM(\"\") error = %v, want ErrInvalidConnection", err)
	}
	if _, err := r.Relay(""); !errors.Is(err, ErrInvalidConnection) {
		t.Errorf("Relay(\"\") error = %v, want ErrInvalidConnection", err)
	}
}

func TestSimulatedPWM_RejectsOutOfRange(t *testing.T) {
	var p SimulatedPWM
	if err := p.SetDutyCycle(1.5); !errors.Is(err, ErrInvalidDutyCycle) {
		t.Errorf("SetDutyCycle(1.5) error = %v, want ErrInvalidDutyCycle", err)
	}
	if err := p.SetDutyCycle(0.7); err != nil {
		t.Fatalf("SetDutyCycle(0.7) error = %v", err)
	}
	if got := p.DutyCycle(); got != 0.7 {
		t.Errorf("DutyCycle() = %v, want 0.7", got)
	}
}

func TestSimulatedRelay_CountsSwitches(t *testing.T) {
	var rl SimulatedRelay
	_ = rl.Set(true)
	_ = rl.Set(true) // no change
	_ = rl.Set(false)

	if rl.Energised() {
		t.Error("Energised() = true, want false")
	}
	if got := rl.Switches(); got != 2 {
		t.Errorf("Switches() = %d, want 2", got)
	}
}

func TestFaults_Abortive(t *testing.T) {
	tests := []struct {
		name   string
		faults Faults
		want   bool
	}{
		{"none", Faults{}, false},
		{"voltage only is tolerated", Faults{Voltage: true}, false},
		{"open circuit", Faults{OpenCircuit: true}, true},
		{"tc range", Faults{ThermocoupleRange: true}, true},
		{"cj range", Faults{ColdJunctionRange: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.faults.Abortive(); got != tt.want {
				t.Errorf("Abortive() = %v, want %v", got, tt.want)
			}
		})
	}
}
