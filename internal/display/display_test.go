package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/kiln"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"
)

func TestNewSelectsImplementation(t *testing.T) {
	b := bus.New()

	d, err := New(kiln.DisplayConfig{Type: "console"}, "test kiln", schedule.ScaleCelsius, b)
	if err != nil {
		t.Fatalf("New(console) error = %v", err)
	}
	if _, ok := d.(*Console); !ok {
		t.Errorf("New(console) = %T, want *Console", d)
	}

	d, err = New(kiln.DisplayConfig{Type: "virtual"}, "test kiln", schedule.ScaleCelsius, b)
	if err != nil {
		t.Fatalf("New(virtual) error = %v", err)
	}
	if _, ok := d.(Virtual); !ok {
		t.Errorf("New(virtual) = %T, want Virtual", d)
	}

	_, err = New(kiln.DisplayConfig{Type: "nixie"}, "test kiln", schedule.ScaleCelsius, b)
	if !errors.Is(err, ErrUnknownDisplay) {
		t.Errorf("New(nixie) error = %v, want ErrUnknownDisplay", err)
	}
}

func TestConsoleRendersFiringLine(t *testing.T) {
	b := bus.New()
	var buf bytes.Buffer
	c := NewConsole("test kiln", schedule.ScaleCelsius, &buf, b)

	if err := c.Initialise(); err != nil {
		t.Fatalf("Initialise() error = %v", err)
	}

	events := []bus.Event{
		bus.ScheduleNextSegment{Segment: nil, Label: "bisque-ramp"},
		bus.SegmentSetPointChanged{Kelvin: 873.15},
		bus.ZoneHeaterPowerChanged{Zone: nil, Percent: 70},
		bus.KilnTemperatureChanged{Kelvin: 853.15},
	}
	for _, ev := range events {
		if err := b.Publish(ev); err != nil {
			t.Fatalf("Publish(%T) error = %v", ev, err)
		}
	}

	out := buf.String()
	if !strings.Contains(out, "firing started") {
		t.Errorf("output missing header: %q", out)
	}
	if !strings.Contains(out, `segment "bisque-ramp" active`) {
		t.Errorf("output missing segment line: %q", out)
	}
	// 853.15K and 873.15K in Celsius.
	if !strings.Contains(out, "temp=580.0°C") {
		t.Errorf("output missing temperature: %q", out)
	}
	if !strings.Contains(out, "set=600.0°C") {
		t.Errorf("output missing setpoint: %q", out)
	}
	if !strings.Contains(out, "power=70%") {
		t.Errorf("output missing power: %q", out)
	}
}

func TestConsoleStopsRenderingAfterFinish(t *testing.T) {
	b := bus.New()
	var buf bytes.Buffer
	NewConsole("test kiln", schedule.ScaleKelvin, &buf, b)

	if err := b.Publish(bus.ScheduleFinished{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	buf.Reset()

	// Cool-down readings still arrive but the firing line is gone.
	if err := b.Publish(bus.KilnTemperatureChanged{Kelvin: 500}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got := buf.String(); got != "" {
		t.Errorf("output after finish = %q, want none", got)
	}
}

func TestConsoleRendersAlarm(t *testing.T) {
	b := bus.New()
	var buf bytes.Buffer
	NewConsole("test kiln", schedule.ScaleKelvin, &buf, b)

	alarm := bus.AlarmRaised{Reason: "sensor_fault", Detail: "thermocouple open circuit"}
	if err := b.Publish(alarm); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ALARM sensor_fault") {
		t.Errorf("output missing alarm: %q", out)
	}
	if !strings.Contains(out, "thermocouple open circuit") {
		t.Errorf("output missing detail: %q", out)
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		scale schedule.TemperatureScale
		want  string
	}{
		{schedule.ScaleKelvin, "K"},
		{schedule.ScaleCelsius, "°C"},
		{schedule.ScaleFahrenheit, "°F"},
	}
	for _, tt := range tests {
		if got := symbol(tt.scale); got != tt.want {
			t.Errorf("symbol(%s) = %q, want %q", tt.scale, got, tt.want)
		}
	}
}
