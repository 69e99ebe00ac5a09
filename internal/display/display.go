package display

import (
	"fmt"
	"os"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/kiln"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"
)

// Display type names accepted in kiln configuration.
const (
	TypeConsole = "console"
	TypeVirtual = "virtual"
)

// New builds the display selected by the kiln configuration.
//
// Parameters:
//   - cfg: Display section of the kiln configuration
//   - kilnLabel: Kiln label shown on each line
//   - scale: Temperature scale to render readings in
//   - b: Event bus to observe
//
// Returns:
//   - kiln.Display: Ready to attach via Kiln.SetDisplay
//   - error: If the configured type is unknown
func New(cfg kiln.DisplayConfig, kilnLabel string, scale schedule.TemperatureScale, b *bus.Bus) (kiln.Display, error) {
	switch cfg.Type {
	case TypeConsole:
		return NewConsole(kilnLabel, scale, os.Stdout, b), nil
	case TypeVirtual:
		return Virtual{}, nil
	default:
		return nil, fmt.Errorf("%w: display type %q", ErrUnknownDisplay, cfg.Type)
	}
}

// Virtual is a display that shows nothing. Used in tests and headless
// deployments.
type Virtual struct{}

// Initialise does nothing.
func (Virtual) Initialise() error { return nil }

// Clear does nothing.
func (Virtual) Clear() error { return nil }

// symbol returns the unit suffix for a temperature scale.
func symbol(scale schedule.TemperatureScale) string {
	switch scale {
	case schedule.ScaleCelsius:
		return "°C"
	case schedule.ScaleFahrenheit:
		return "°F"
	default:
		return "K"
	}
}
