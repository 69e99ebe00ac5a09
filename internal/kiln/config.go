package kiln

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Component variant selectors. Virtual variants ignore interface and
// connection settings; physical variants require them.
const (
	SensorTypeVirtual  = "virtual"
	SensorTypeMAX31856 = "max31856"

	ControllerTypeVirtual = "virtual"
	ControllerTypePID     = "pid"

	HeaterTypeVirtual = "virtual"
	HeaterTypePWM     = "pwm"

	IsolatorTypeVirtual     = "virtual"
	IsolatorTypeRelaySingle = "relay_single"
	IsolatorTypeRelayDual   = "relay_dual"
)

// Default PID gains, used when the configuration leaves them zero.
// Tuned for a small electric kiln with ~1s control ticks.
const (
	defaultPIDKp = 120.0
	defaultPIDKi = 0.008
	defaultPIDKd = 30.0
)

// Config is the root of the kiln hardware configuration file.
type Config struct {
	Kiln KilnConfig `yaml:"kiln"`
}

// KilnConfig describes one kiln: its zones, safety isolator and display.
type KilnConfig struct {
	Label    string         `yaml:"label"`
	Zones    []ZoneConfig   `yaml:"zones"`
	Isolator IsolatorConfig `yaml:"isolator"`
	Display  DisplayConfig  `yaml:"display"`
}

// ZoneConfig describes one independently sensed and heated region.
type ZoneConfig struct {
	Label string `yaml:"label"`

	// MaximumTemperatureKelvin is the zone's hard over-temperature limit.
	// Exceeding it raises an alarm and ends the firing.
	MaximumTemperatureKelvin float64 `yaml:"maximum_temperature_kelvin"`

	Sensor     SensorConfig     `yaml:"sensor"`
	Controller ControllerConfig `yaml:"controller"`
	Heater     HeaterConfig     `yaml:"heater"`
}

// SensorConfig selects and wires a temperature sensor.
type SensorConfig struct {
	Label     string `yaml:"label"`
	Type      string `yaml:"type"`
	Interface string `yaml:"interface"`

	// Connection is the board pin for the sensor's chip select;
	// FaultConnection is the pin wired to the chip's fault output.
	// Both are ignored by the virtual variant.
	Connection      string `yaml:"connection"`
	FaultConnection string `yaml:"fault_connection"`
}

// PIDParams are the gains for the PID controller variant.
type PIDParams struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// ControllerConfig selects and tunes a control-law implementation.
type ControllerConfig struct {
	Label      string    `yaml:"label"`
	Type       string    `yaml:"type"`
	Interface  string    `yaml:"interface"`
	Connection string    `yaml:"connection"`
	PID        PIDParams `yaml:"pid"`
}

// HeaterConfig selects and wires a heating element driver.
type HeaterConfig struct {
	Label         string  `yaml:"label"`
	Type          string  `yaml:"type"`
	Interface     string  `yaml:"interface"`
	Connection    string  `yaml:"connection"`
	MaxPowerWatts float64 `yaml:"max_power_watts"`
}

// IsolatorConfig selects and wires the safety interlock. An absent section
// defaults to the virtual isolator.
type IsolatorConfig struct {
	Label       string `yaml:"label"`
	Type        string `yaml:"type"`
	Interface   string `yaml:"interface"`
	Connection1 string `yaml:"connection_1"`
	Connection2 string `yaml:"connection_2"`
}

// DisplayConfig selects the operator display implementation.
type DisplayConfig struct {
	Type string `yaml:"type"`
}

// LoadConfig reads and validates a kiln hardware configuration file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kiln config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing kiln config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in the settings a minimal configuration may omit.
func (c *Config) applyDefaults() {
	if c.Kiln.Isolator.Type == "" {
		// No isolator configured. The firing still runs, but nothing cuts
		// heater power outside the schedule.
		c.Kiln.Isolator = IsolatorConfig{
			Label: "no isolator installed",
			Type:  IsolatorTypeVirtual,
		}
	}
	if c.Kiln.Display.Type == "" {
		c.Kiln.Display.Type = "console"
	}

	for i := range c.Kiln.Zones {
		pid := &c.Kiln.Zones[i].Controller.PID
		if pid.Kp == 0 && pid.Ki == 0 && pid.Kd == 0 {
			pid.Kp = defaultPIDKp
			pid.Ki = defaultPIDKi
			pid.Kd = defaultPIDKd
		}
	}
}

// Validate checks the configuration, collecting all errors.
//
// Returns:
//   - error: ErrInvalidConfig wrapping every validation failure, or nil
func (c *Config) Validate() error {
	var errs []string

	if c.Kiln.Label == "" {
		errs = append(errs, "kiln.label is required")
	}
	if len(c.Kiln.Zones) == 0 {
		errs = append(errs, "kiln.zones must contain at least one zone")
	}

	for i, z := range c.Kiln.Zones {
		prefix := fmt.Sprintf("kiln.zones[%d]", i)
		if z.Label == "" {
			errs = append(errs, prefix+".label is required")
		}
		if z.MaximumTemperatureKelvin <= 0 {
			errs = append(errs, prefix+".maximum_temperature_kelvin must be positive")
		}
		errs = append(errs, z.Sensor.validate(prefix+".sensor")...)
		errs = append(errs, z.Controller.validate(prefix+".controller")...)
		errs = append(errs, z.Heater.validate(prefix+".heater")...)
	}

	errs = append(errs, c.Kiln.Isolator.validate("kiln.isolator")...)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

func (s SensorConfig) validate(prefix string) []string {
	var errs []string
	switch s.Type {
	case SensorTypeVirtual:
	case SensorTypeMAX31856:
		if s.Connection == "" {
			errs = append(errs, prefix+".connection is required for max31856 sensors")
		}
	default:
		errs = append(errs, fmt.Sprintf("%s.type %q is not a known sensor type", prefix, s.Type))
	}
	return errs
}

func (c ControllerConfig) validate(prefix string) []string {
	var errs []string
	switch c.Type {
	case ControllerTypeVirtual, ControllerTypePID:
	default:
		errs = append(errs, fmt.Sprintf("%s.type %q is not a known controller type", prefix, c.Type))
	}
	if c.Type == ControllerTypePID {
		if c.PID.Kp < 0 || c.PID.Ki < 0 || c.PID.Kd < 0 {
			errs = append(errs, prefix+".pid gains must be non-negative")
		}
	}
	return errs
}

func (h HeaterConfig) validate(prefix string) []string {
	var errs []string
	switch h.Type {
	case HeaterTypeVirtual:
	case HeaterTypePWM:
		if h.Connection == "" {
			errs = append(errs, prefix+".connection is required for pwm heaters")
		}
	default:
		errs = append(errs, fmt.Sprintf("%s.type %q is not a known heater type", prefix, h.Type))
	}
	return errs
}

func (i IsolatorConfig) validate(prefix string) []string {
	var errs []string
	switch i.Type {
	case IsolatorTypeVirtual:
	case IsolatorTypeRelaySingle:
		if i.Connection1 == "" {
			errs = append(errs, prefix+".connection_1 is required for relay isolators")
		}
	case IsolatorTypeRelayDual:
		if i.Connection1 == "" || i.Connection2 == "" {
			errs = append(errs, prefix+".connection_1 and connection_2 are required for dual relay isolators")
		}
	default:
		errs = append(errs, fmt.Sprintf("%s.type %q is not a known isolator type", prefix, i.Type))
	}
	return errs
}
