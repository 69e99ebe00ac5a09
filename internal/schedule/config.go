package schedule

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of a firing schedule file, in the author's units.
type Config struct {
	Schedule ScheduleConfig `yaml:"schedule"`
}

// ScheduleConfig names the schedule and fixes the units every segment is
// expressed in.
type ScheduleConfig struct {
	Label            string          `yaml:"label"`
	TemperatureScale string          `yaml:"temperature_scale"`
	HoldTimeScale    string          `yaml:"hold_time_scale"`
	GradientTimebase string          `yaml:"gradient_timebase"`
	Segments         []SegmentConfig `yaml:"segments"`
}

// SegmentConfig is one firing phase as written in the schedule file.
// Exactly one of Gradient and HoldTime must be set: a gradient makes a
// ramp, a hold time makes a hold.
type SegmentConfig struct {
	Label             string   `yaml:"label"`
	TargetTemperature float64  `yaml:"target_temperature"`
	Gradient          *float64 `yaml:"gradient"`
	HoldTime          *float64 `yaml:"hold_time"`
}

// SegmentSpec is one segment after unit normalisation, in Kelvin and
// seconds. Exactly one of GradientKelvinPerSecond and Hold is meaningful,
// selected by Kind.
type SegmentSpec struct {
	Label                   string
	Kind                    Kind
	TargetKelvin            float64
	GradientKelvinPerSecond float64
	Hold                    time.Duration
}

// LoadConfig reads and validates a firing schedule file. Values stay in
// the author's units; Normalise converts them.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing schedule config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the schedule, collecting all errors.
//
// A segment carrying both a gradient and a hold time, or neither, is a
// hard error: the ambiguity almost always means a typo in the schedule,
// and silently dropping the segment would fire the ware wrong.
func (c *Config) Validate() error {
	var errs []string

	s := c.Schedule
	if s.Label == "" {
		errs = append(errs, "schedule.label is required")
	}
	if _, err := ParseTemperatureScale(s.TemperatureScale); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.temperature_scale %q is not kelvin, celsius or fahrenheit", s.TemperatureScale))
	}
	if _, err := ParseTimeScale(s.HoldTimeScale); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.hold_time_scale %q is not hours, minutes or seconds", s.HoldTimeScale))
	}
	if _, err := ParseTimeScale(s.GradientTimebase); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.gradient_timebase %q is not hours, minutes or seconds", s.GradientTimebase))
	}
	if len(s.Segments) == 0 {
		errs = append(errs, "schedule.segments must contain at least one segment")
	}

	for i, seg := range s.Segments {
		prefix := fmt.Sprintf("schedule.segments[%d]", i)
		if seg.Label == "" {
			errs = append(errs, prefix+".label is required")
		}
		switch {
		case seg.Gradient != nil && seg.HoldTime != nil:
			errs = append(errs, prefix+" sets both gradient and hold_time; a segment is one or the other")
		case seg.Gradient == nil && seg.HoldTime == nil:
			errs = append(errs, prefix+" sets neither gradient nor hold_time")
		case seg.Gradient != nil && *seg.Gradient <= 0:
			errs = append(errs, prefix+".gradient must be positive")
		case seg.HoldTime != nil && *seg.HoldTime <= 0:
			errs = append(errs, prefix+".hold_time must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSchedule, strings.Join(errs, "; "))
	}
	return nil
}

// Normalise converts every segment to Kelvin, seconds and Kelvin-per-
// second. Called exactly once, at schedule construction; nothing after
// this point sees the author's units.
func (c *Config) Normalise() ([]SegmentSpec, error) {
	tempScale, err := ParseTemperatureScale(c.Schedule.TemperatureScale)
	if err != nil {
		return nil, err
	}
	holdScale, err := ParseTimeScale(c.Schedule.HoldTimeScale)
	if err != nil {
		return nil, err
	}
	timebase, err := ParseTimeScale(c.Schedule.GradientTimebase)
	if err != nil {
		return nil, err
	}

	specs := make([]SegmentSpec, 0, len(c.Schedule.Segments))
	for _, seg := range c.Schedule.Segments {
		spec := SegmentSpec{
			Label:        seg.Label,
			TargetKelvin: ToKelvin(seg.TargetTemperature, tempScale),
		}
		switch {
		case seg.Gradient != nil:
			spec.Kind = KindRamp
			spec.GradientKelvinPerSecond = GradientToKelvinPerSecond(*seg.Gradient, tempScale, timebase)
		case seg.HoldTime != nil:
			spec.Kind = KindHold
			spec.Hold = HoldDuration(*seg.HoldTime, holdScale)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
