package schedule

import (
	"time"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
)

// Schedule owns the ordered segment sequence and the cursor through it.
//
// The cursor is the sole source of progression: it starts at the first
// segment, advances by exactly one per SegmentFinished, and never moves
// backwards. When the last segment finishes the schedule unsubscribes its
// own progression handlers and publishes exactly one ScheduleFinished.
type Schedule struct {
	label string
	b     *bus.Bus
	log   Logger

	// now is the schedule's clock, shared with every segment. Tests
	// substitute a synthetic clock here.
	now func() time.Time

	segments []*Segment
	current  int
	finished bool

	subInitialised bus.Subscription
	subSegFinished bus.Subscription
}

// New builds a schedule from validated configuration, normalising every
// segment to Kelvin and seconds, and wires it to the bus. The schedule
// activates its first segment when KilnInitialised is published.
func New(cfg *Config, b *bus.Bus, log Logger) (*Schedule, error) {
	specs, err := cfg.Normalise()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}

	s := &Schedule{
		label: cfg.Schedule.Label,
		b:     b,
		log:   log,
		now:   time.Now,
	}
	clock := func() time.Time { return s.now() }
	for _, spec := range specs {
		s.segments = append(s.segments, newSegment(spec, b, log, clock))
	}

	s.subInitialised = b.Subscribe(bus.TypeKilnInitialised, s.handleKilnInitialised)
	s.subSegFinished = b.Subscribe(bus.TypeSegmentFinished, s.handleSegmentFinished)
	b.Subscribe(bus.TypeScheduleFinished, s.handleScheduleFinished)
	return s, nil
}

// Label returns the schedule's configured label.
func (s *Schedule) Label() string { return s.label }

// Segments returns the normalised segments in firing order.
func (s *Schedule) Segments() []*Segment { return s.segments }

// CurrentIndex returns the cursor position. It equals the segment count
// once the schedule has run to completion.
func (s *Schedule) CurrentIndex() int { return s.current }

// Finished reports whether the firing has ended, by completion or abort.
func (s *Schedule) Finished() bool { return s.finished }

func (s *Schedule) handleKilnInitialised(ev bus.Event) error {
	if _, ok := ev.(bus.KilnInitialised); !ok {
		return nil
	}
	s.log.Info("firing schedule starting",
		"schedule", s.label,
		"segments", len(s.segments),
	)
	return s.activate(0)
}

func (s *Schedule) handleSegmentFinished(ev bus.Event) error {
	if _, ok := ev.(bus.SegmentFinished); !ok || s.finished {
		return nil
	}

	s.current++
	if s.current < len(s.segments) {
		return s.activate(s.current)
	}

	// Exhausted. Retire the progression handlers before announcing, so a
	// stray SegmentFinished can never advance past the end.
	s.finished = true
	s.b.Unsubscribe(s.subInitialised)
	s.b.Unsubscribe(s.subSegFinished)

	s.log.Info("firing schedule complete", "schedule", s.label)
	return s.b.Publish(bus.ScheduleFinished{})
}

// handleScheduleFinished latches an externally ended firing (hardware
// fault, operator abort) so the cursor stops advancing.
func (s *Schedule) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok || s.finished {
		return nil
	}
	s.finished = true
	s.b.Unsubscribe(s.subInitialised)
	s.b.Unsubscribe(s.subSegFinished)
	return nil
}

func (s *Schedule) activate(index int) error {
	seg := s.segments[index]
	return s.b.Publish(bus.ScheduleNextSegment{
		Segment: seg,
		Label:   seg.Label(),
	})
}
