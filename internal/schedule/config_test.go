package schedule

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScheduleFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing schedule file: %v", err)
	}
	return path
}

const bisqueYAML = `
schedule:
  label: slow bisque
  temperature_scale: celsius
  hold_time_scale: minutes
  gradient_timebase: hours
  segments:
    - label: warm up
      target_temperature: 600
      gradient: 100
    - label: soak
      target_temperature: 600
      hold_time: 20
    - label: to temperature
      target_temperature: 1000
      gradient: 150
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeScheduleFile(t, bisqueYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got, want := cfg.Schedule.Label, "slow bisque"; got != want {
		t.Errorf("label = %q, want %q", got, want)
	}
	if len(cfg.Schedule.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(cfg.Schedule.Segments))
	}
}

func TestLoadConfigRejectsAmbiguousSegments(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		wantErr string
	}{
		{
			name:    "both gradient and hold",
			segment: "    - label: muddle\n      target_temperature: 500\n      gradient: 100\n      hold_time: 10\n",
			wantErr: "sets both gradient and hold_time",
		},
		{
			name:    "neither gradient nor hold",
			segment: "    - label: muddle\n      target_temperature: 500\n",
			wantErr: "sets neither gradient nor hold_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := `
schedule:
  label: broken
  temperature_scale: celsius
  hold_time_scale: minutes
  gradient_timebase: hours
  segments:
` + tt.segment
			_, err := LoadConfig(writeScheduleFile(t, yaml))
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Fatalf("error = %v, want ErrInvalidSchedule", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigCollectsErrors(t *testing.T) {
	yaml := `
schedule:
  temperature_scale: rankine
  hold_time_scale: fortnights
  gradient_timebase: eons
  segments: []
`
	_, err := LoadConfig(writeScheduleFile(t, yaml))
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("error = %v, want ErrInvalidSchedule", err)
	}
	for _, want := range []string{
		"schedule.label is required",
		`temperature_scale "rankine"`,
		`hold_time_scale "fortnights"`,
		`gradient_timebase "eons"`,
		"at least one segment",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestNormalise(t *testing.T) {
	cfg, err := LoadConfig(writeScheduleFile(t, bisqueYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	specs, err := cfg.Normalise()
	if err != nil {
		t.Fatalf("Normalise: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("specs = %d, want 3", len(specs))
	}

	warmUp := specs[0]
	if warmUp.Kind != KindRamp {
		t.Errorf("warm up kind = %s, want ramp", warmUp.Kind)
	}
	if math.Abs(warmUp.TargetKelvin-873.15) > 1e-9 {
		t.Errorf("warm up target = %v, want 873.15", warmUp.TargetKelvin)
	}
	if math.Abs(warmUp.GradientKelvinPerSecond-100.0/3600) > 1e-12 {
		t.Errorf("warm up gradient = %v, want %v", warmUp.GradientKelvinPerSecond, 100.0/3600)
	}

	soak := specs[1]
	if soak.Kind != KindHold {
		t.Errorf("soak kind = %s, want hold", soak.Kind)
	}
	if soak.Hold != 20*time.Minute {
		t.Errorf("soak hold = %v, want 20m", soak.Hold)
	}
}
