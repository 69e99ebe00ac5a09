package kiln

import (
	"fmt"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
)

// Isolator is the safety interlock that keeps heater power physically
// unavailable except while a schedule is actively progressing.
//
// It is independent of the control loop: it listens only for schedule
// progress, engaging on the first ScheduleNextSegment and disengaging on
// ScheduleFinished. De-energised is the safe default, including at
// construction.
type Isolator interface {
	// Engaged reports whether the heater power path is currently closed.
	Engaged() bool
}

// newIsolator builds the configured isolator variant, wired to the bus and
// driven to its safe state.
func newIsolator(cfg IsolatorConfig, b *bus.Bus, hw *hal.Registry, log Logger) (Isolator, error) {
	switch cfg.Type {
	case IsolatorTypeVirtual:
		return newRelayIsolator(cfg, b, nil, log), nil

	case IsolatorTypeRelaySingle:
		relay, err := hw.Relay(cfg.Connection1)
		if err != nil {
			return nil, fmt.Errorf("isolator %q: %w", cfg.Label, err)
		}
		return newRelayIsolator(cfg, b, []hal.RelayDriver{relay}, log), nil

	case IsolatorTypeRelayDual:
		relay1, err := hw.Relay(cfg.Connection1)
		if err != nil {
			return nil, fmt.Errorf("isolator %q: %w", cfg.Label, err)
		}
		relay2, err := hw.Relay(cfg.Connection2)
		if err != nil {
			return nil, fmt.Errorf("isolator %q: %w", cfg.Label, err)
		}
		return newRelayIsolator(cfg, b, []hal.RelayDriver{relay1, relay2}, log), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIsolatorType, cfg.Type)
	}
}

// relayIsolator drives zero or more contactors in lockstep. Zero relays is
// the virtual variant; two relays give independent phase isolation.
type relayIsolator struct {
	cfg     IsolatorConfig
	b       *bus.Bus
	relays  []hal.RelayDriver
	log     Logger
	engaged bool
}

func newRelayIsolator(cfg IsolatorConfig, b *bus.Bus, relays []hal.RelayDriver, log Logger) *relayIsolator {
	i := &relayIsolator{
		cfg:    cfg,
		b:      b,
		relays: relays,
		log:    log,
	}

	// Fail-open default: release every contactor before anything runs.
	for _, r := range relays {
		_ = r.Set(false)
	}

	b.Subscribe(bus.TypeScheduleNextSegment, i.handleScheduleNextSegment)
	b.Subscribe(bus.TypeScheduleFinished, i.handleScheduleFinished)
	return i
}

func (i *relayIsolator) Engaged() bool { return i.engaged }

func (i *relayIsolator) handleScheduleNextSegment(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleNextSegment); !ok {
		return nil
	}
	if !i.engaged {
		i.log.Info("isolator engaged, heater power path closed", "isolator", i.cfg.Label)
	}
	return i.set(true)
}

func (i *relayIsolator) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok {
		return nil
	}
	if i.engaged {
		i.log.Info("isolator disengaged, heater power path open", "isolator", i.cfg.Label)
	}
	return i.set(false)
}

func (i *relayIsolator) set(engaged bool) error {
	i.engaged = engaged
	for _, r := range i.relays {
		if err := r.Set(engaged); err != nil {
			return fmt.Errorf("isolator %q: switching relay: %w", i.cfg.Label, err)
		}
	}
	return nil
}
