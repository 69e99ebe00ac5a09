package schedule

import (
	"math"
	"time"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
)

// rampToleranceKelvin is how close the measured temperature must come to a
// ramp's target before the ramp is considered complete. Completion is
// judged on measurement, never on elapsed time: a kiln that cannot keep up
// with the gradient holds the segment open until the ware actually gets
// there.
const rampToleranceKelvin = 5.0

// startTemperatureKelvin is assumed before the first kiln reading arrives.
const startTemperatureKelvin = 273.15

// Kind selects a segment's setpoint law.
type Kind int

const (
	// KindRamp moves the setpoint linearly from the activation temperature
	// toward the target at a fixed Kelvin-per-second rate.
	KindRamp Kind = iota
	// KindHold pins the setpoint at the target for a fixed duration.
	KindHold
	// KindAbort is a terminal placeholder that never self-advances; it
	// exists for forced termination paths.
	KindAbort
)

func (k Kind) String() string {
	switch k {
	case KindRamp:
		return "ramp"
	case KindHold:
		return "hold"
	case KindAbort:
		return "abort"
	default:
		return "unknown"
	}
}

type segmentState int

const (
	stateInactive segmentState = iota
	stateActive
	stateFinished
)

// Segment is one phase of a firing. All segments observe the kiln
// temperature continuously; only the active one emits setpoints.
//
// Activation is by identity: a ScheduleNextSegment naming this segment
// activates it, naming any other deactivates it.
type Segment struct {
	spec SegmentSpec
	b    *bus.Bus
	log  Logger
	now  func() time.Time

	state        segmentState
	startTime    time.Time
	startKelvin  float64
	setPoint     float64
	latestKelvin float64
	predictedEnd time.Time
}

func newSegment(spec SegmentSpec, b *bus.Bus, log Logger, now func() time.Time) *Segment {
	s := &Segment{
		spec:         spec,
		b:            b,
		log:          log,
		now:          now,
		latestKelvin: startTemperatureKelvin,
	}
	b.Subscribe(bus.TypeScheduleNextSegment, s.handleScheduleNextSegment)
	b.Subscribe(bus.TypeKilnTemperatureChanged, s.handleKilnTemperatureChanged)
	b.Subscribe(bus.TypeScheduleFinished, s.handleScheduleFinished)
	return s
}

// Label returns the segment's configured label.
func (s *Segment) Label() string { return s.spec.Label }

// Kind returns the segment's setpoint law.
func (s *Segment) Kind() Kind { return s.spec.Kind }

// Active reports whether this segment currently drives the setpoint.
func (s *Segment) Active() bool { return s.state == stateActive }

// Finished reports whether the segment has completed. Finished is
// terminal; the object persists but is bypassed.
func (s *Segment) Finished() bool { return s.state == stateFinished }

// SetPointKelvin returns the segment's most recently computed setpoint.
func (s *Segment) SetPointKelvin() float64 { return s.setPoint }

// TargetKelvin returns the segment's configured target temperature.
func (s *Segment) TargetKelvin() float64 { return s.spec.TargetKelvin }

// PredictedEnd returns the completion time estimated at activation. For a
// hold it is exact; for a ramp it assumes the kiln tracks the gradient.
func (s *Segment) PredictedEnd() time.Time { return s.predictedEnd }

func (s *Segment) handleScheduleNextSegment(ev bus.Event) error {
	next, ok := ev.(bus.ScheduleNextSegment)
	if !ok {
		return nil
	}
	if next.Segment != any(s) {
		if s.state == stateActive {
			s.state = stateInactive
		}
		return nil
	}
	return s.activate()
}

func (s *Segment) activate() error {
	s.state = stateActive
	s.startTime = s.now()
	s.startKelvin = s.latestKelvin

	switch s.spec.Kind {
	case KindRamp:
		s.setPoint = s.startKelvin
		span := math.Abs(s.spec.TargetKelvin-s.startKelvin) / s.spec.GradientKelvinPerSecond
		s.predictedEnd = s.startTime.Add(time.Duration(span * float64(time.Second)))
	case KindHold:
		s.setPoint = s.spec.TargetKelvin
		s.predictedEnd = s.startTime.Add(s.spec.Hold)
	case KindAbort:
		s.setPoint = s.startKelvin
		s.predictedEnd = s.startTime
	}

	s.log.Info("segment started",
		"segment", s.spec.Label,
		"kind", s.spec.Kind.String(),
		"start_kelvin", s.startKelvin,
		"target_kelvin", s.spec.TargetKelvin,
	)
	return s.b.Publish(bus.SegmentStarted{})
}

// handleKilnTemperatureChanged tracks the measurement for every segment
// and, for the active one, advances the setpoint and checks completion.
func (s *Segment) handleKilnTemperatureChanged(ev bus.Event) error {
	tc, ok := ev.(bus.KilnTemperatureChanged)
	if !ok {
		return nil
	}
	s.latestKelvin = tc.Kelvin

	if s.state != stateActive {
		return nil
	}

	switch s.spec.Kind {
	case KindRamp:
		s.setPoint = s.rampSetPoint(s.now())
		if err := s.b.Publish(bus.SegmentSetPointChanged{Kelvin: s.setPoint}); err != nil {
			return err
		}
		if math.Abs(s.spec.TargetKelvin-s.latestKelvin) < rampToleranceKelvin {
			return s.finish()
		}
	case KindHold:
		s.setPoint = s.spec.TargetKelvin
		if err := s.b.Publish(bus.SegmentSetPointChanged{Kelvin: s.setPoint}); err != nil {
			return err
		}
		if !s.now().Before(s.predictedEnd) {
			return s.finish()
		}
	case KindAbort:
		// Never self-advances.
	}
	return nil
}

// handleScheduleFinished deactivates whatever is still active so a firing
// ended early (fault, operator abort) stops emitting setpoints.
func (s *Segment) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok {
		return nil
	}
	if s.state == stateActive {
		s.state = stateInactive
	}
	return nil
}

// rampSetPoint moves linearly from the activation temperature toward the
// target, clamped at the target. Direction comes from comparing the two:
// ramps cool as readily as they heat.
func (s *Segment) rampSetPoint(now time.Time) float64 {
	delta := s.spec.GradientKelvinPerSecond * now.Sub(s.startTime).Seconds()
	if s.spec.TargetKelvin >= s.startKelvin {
		return math.Min(s.startKelvin+delta, s.spec.TargetKelvin)
	}
	return math.Max(s.startKelvin-delta, s.spec.TargetKelvin)
}

func (s *Segment) finish() error {
	s.state = stateFinished
	s.log.Info("segment finished",
		"segment", s.spec.Label,
		"kind", s.spec.Kind.String(),
		"measured_kelvin", s.latestKelvin,
	)
	return s.b.Publish(bus.SegmentFinished{})
}
