package schedule

import (
	"fmt"
	"time"
)

// TemperatureScale is the scale a schedule file expresses temperatures in.
// Internally everything runs in Kelvin; conversion happens exactly once at
// load.
type TemperatureScale string

const (
	ScaleKelvin     TemperatureScale = "kelvin"
	ScaleCelsius    TemperatureScale = "celsius"
	ScaleFahrenheit TemperatureScale = "fahrenheit"
)

// TimeScale expresses hold durations and gradient timebases.
type TimeScale string

const (
	TimeHours   TimeScale = "hours"
	TimeMinutes TimeScale = "minutes"
	TimeSeconds TimeScale = "seconds"
)

// ParseTemperatureScale validates a scale name from configuration.
func ParseTemperatureScale(s string) (TemperatureScale, error) {
	switch TemperatureScale(s) {
	case ScaleKelvin, ScaleCelsius, ScaleFahrenheit:
		return TemperatureScale(s), nil
	default:
		return "", fmt.Errorf("%w: temperature scale %q", ErrUnknownScale, s)
	}
}

// ParseTimeScale validates a time scale name from configuration.
func ParseTimeScale(s string) (TimeScale, error) {
	switch TimeScale(s) {
	case TimeHours, TimeMinutes, TimeSeconds:
		return TimeScale(s), nil
	default:
		return "", fmt.Errorf("%w: time scale %q", ErrUnknownScale, s)
	}
}

// ToKelvin converts an absolute temperature from the given scale.
func ToKelvin(value float64, scale TemperatureScale) float64 {
	switch scale {
	case ScaleCelsius:
		return value + 273.15
	case ScaleFahrenheit:
		return (value-32)*5/9 + 273.15
	default:
		return value
	}
}

// FromKelvin converts an absolute Kelvin temperature to the given scale.
func FromKelvin(kelvin float64, scale TemperatureScale) float64 {
	switch scale {
	case ScaleCelsius:
		return kelvin - 273.15
	case ScaleFahrenheit:
		return (kelvin-273.15)*9/5 + 32
	default:
		return kelvin
	}
}

// seconds returns the length of one timebase unit.
func (t TimeScale) seconds() float64 {
	switch t {
	case TimeHours:
		return 3600
	case TimeMinutes:
		return 60
	default:
		return 1
	}
}

// GradientToKelvinPerSecond converts a gradient expressed as scale-degrees
// per timebase unit into Kelvin per second. Degree deltas are what matter
// here: a Celsius delta equals a Kelvin delta, a Fahrenheit delta is 5/9
// of one.
func GradientToKelvinPerSecond(value float64, scale TemperatureScale, timebase TimeScale) float64 {
	if scale == ScaleFahrenheit {
		value *= 5.0 / 9.0
	}
	return value / timebase.seconds()
}

// HoldDuration converts a hold time in the given scale to a duration.
func HoldDuration(value float64, scale TimeScale) time.Duration {
	return time.Duration(value * scale.seconds() * float64(time.Second))
}
