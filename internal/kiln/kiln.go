package kiln

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
)

// defaultTickInterval is the cadence of the periodic control loop.
const defaultTickInterval = time.Second

// Display is the operator display boundary the kiln drives directly.
// Everything else a display shows, it learns from the bus.
type Display interface {
	Initialise() error
	Clear() error
}

// Kiln owns the zone set, the safety isolator and the periodic tick
// source. It is the top-level control loop driver: its tick publishes
// KilnUpdateTriggered, and everything else cascades synchronously through
// the bus before the tick returns.
type Kiln struct {
	cfg      KilnConfig
	b        *bus.Bus
	log      Logger
	zones    []*Zone
	isolator Isolator
	display  Display

	latestKelvin float64

	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  bool
	runMu    sync.Mutex
}

// New builds a kiln and all of its components from validated
// configuration, wiring every part to the bus.
//
// Parameters:
//   - cfg: Validated kiln configuration (see LoadConfig)
//   - b: The application's event bus
//   - hw: Hardware capability registry resolving configured pins
//   - log: Logger; nil disables kiln logging
//
// Returns:
//   - *Kiln: Fully wired kiln, periodic updates not yet started
//   - error: If any component cannot be built
func New(cfg *Config, b *bus.Bus, hw *hal.Registry, log Logger) (*Kiln, error) {
	if log == nil {
		log = nopLogger{}
	}

	k := &Kiln{
		cfg:          cfg.Kiln,
		b:            b,
		log:          log,
		latestKelvin: startTemperatureKelvin,
		interval:     defaultTickInterval,
		stop:         make(chan struct{}),
	}

	for _, zc := range cfg.Kiln.Zones {
		z, err := newZone(zc, b, hw, log)
		if err != nil {
			return nil, err
		}
		k.zones = append(k.zones, z)
	}

	isolator, err := newIsolator(cfg.Kiln.Isolator, b, hw, log)
	if err != nil {
		return nil, err
	}
	k.isolator = isolator

	b.Subscribe(bus.TypeZoneSensorTemperatureChanged, k.handleZoneTemperature)
	b.Subscribe(bus.TypeCoolDownFinished, k.handleCoolDownFinished)

	return k, nil
}

// SetDisplay attaches the operator display. Call before Initialise.
func (k *Kiln) SetDisplay(d Display) { k.display = d }

// Label returns the kiln's configured label.
func (k *Kiln) Label() string { return k.cfg.Label }

// Zones returns the kiln's zones in configuration order.
func (k *Kiln) Zones() []*Zone { return k.zones }

// Isolator returns the safety interlock.
func (k *Kiln) Isolator() Isolator { return k.isolator }

// TemperatureKelvin returns the kiln-level temperature: the most recent
// single-zone reading. Multi-zone kilns get no averaging; the kiln mirrors
// whichever zone reported last.
func (k *Kiln) TemperatureKelvin() float64 { return k.latestKelvin }

// Initialise brings up the display and announces the kiln to the bus,
// which starts the loaded schedule.
func (k *Kiln) Initialise() error {
	if k.display != nil {
		if err := k.display.Initialise(); err != nil {
			return fmt.Errorf("initialising display: %w", err)
		}
	}
	return k.b.Publish(bus.KilnInitialised{})
}

// StartPeriodicUpdates launches the background tick loop. The loop's sole
// job is publishing KilnUpdateTriggered once per interval; all control
// logic runs synchronously inside that publish. Safe to call once.
func (k *Kiln) StartPeriodicUpdates() {
	k.runMu.Lock()
	defer k.runMu.Unlock()
	if k.running {
		return
	}
	k.running = true

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()

		for {
			// Stop flag is observed at the top of each wait cycle, never
			// mid-tick: an in-flight dispatch always completes.
			select {
			case <-k.stop:
				return
			case now := <-ticker.C:
				if err := k.Tick(now); err != nil {
					// Fail-fast per tick: the rest of this dispatch was
					// abandoned, the next tick starts clean.
					k.log.Error("tick dispatch failed", "error", err)
				}
			}
		}
	}()
}

// Tick publishes one KilnUpdateTriggered and returns the dispatch error,
// if any. The periodic loop calls this; tests may drive it directly.
func (k *Kiln) Tick(now time.Time) error {
	return k.b.Publish(bus.KilnUpdateTriggered{Tick: now})
}

// StopPeriodicUpdates signals the tick loop to stop and waits for it to
// exit. Idempotent.
func (k *Kiln) StopPeriodicUpdates() {
	k.stopOnce.Do(func() { close(k.stop) })
	k.wg.Wait()

	k.runMu.Lock()
	k.running = false
	k.runMu.Unlock()
}

// handleZoneTemperature adopts any of this kiln's zone readings as the
// kiln-level temperature and republishes it globally.
func (k *Kiln) handleZoneTemperature(ev bus.Event) error {
	reading, ok := ev.(bus.ZoneSensorTemperatureChanged)
	if !ok || !k.ownsZone(reading.Zone) {
		return nil
	}

	k.latestKelvin = reading.Kelvin
	return k.b.Publish(bus.KilnTemperatureChanged{Kelvin: k.latestKelvin})
}

// handleCoolDownFinished shuts the tick loop down and clears the display.
func (k *Kiln) handleCoolDownFinished(ev bus.Event) error {
	if _, ok := ev.(bus.CoolDownFinished); !ok {
		return nil
	}

	// The tick loop is stopped from a fresh goroutine: this handler may be
	// running inside a tick dispatch, and StopPeriodicUpdates waits for
	// the loop to finish its current tick.
	go k.StopPeriodicUpdates()

	if k.display != nil {
		if err := k.display.Clear(); err != nil {
			return fmt.Errorf("clearing display: %w", err)
		}
	}
	return nil
}

func (k *Kiln) ownsZone(zone any) bool {
	for _, z := range k.zones {
		if zone == any(z) {
			return true
		}
	}
	return false
}
