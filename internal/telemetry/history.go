package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/database"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"
)

// writeTimeout bounds each history write. SQLite on local disk is fast;
// anything slower than this indicates a stuck filesystem.
const writeTimeout = 5 * time.Second

// segmentInfo is the accessor surface History needs from the segment
// carried by ScheduleNextSegment.
type segmentInfo interface {
	Kind() schedule.Kind
	TargetKelvin() float64
}

// History persists firing runs, their segments and any alarms to SQLite.
//
// One History instance records one firing: the run row opens on
// KilnInitialised and closes on ScheduleFinished with an outcome of
// "completed", or "aborted" when an alarm preceded the finish.
type History struct {
	db            *database.DB
	kilnID        string
	scheduleLabel string
	log           Logger

	runID       int64
	openSegment int64
	alarmed     bool
	closed      bool
}

// NewHistory wires a History to the bus.
//
// Parameters:
//   - db: Open database with the firing history migrations applied
//   - kilnID: Kiln identifier recorded on the run
//   - scheduleLabel: Label of the schedule being fired
//   - b: Event bus to observe
//   - log: Logger for write failures (nil for none)
func NewHistory(db *database.DB, kilnID, scheduleLabel string, b *bus.Bus, log Logger) *History {
	if log == nil {
		log = nopLogger{}
	}
	h := &History{
		db:            db,
		kilnID:        kilnID,
		scheduleLabel: scheduleLabel,
		log:           log,
	}

	b.Subscribe(bus.TypeKilnInitialised, h.handleKilnInitialised)
	b.Subscribe(bus.TypeScheduleNextSegment, h.handleScheduleNextSegment)
	b.Subscribe(bus.TypeSegmentFinished, h.handleSegmentFinished)
	b.Subscribe(bus.TypeAlarmRaised, h.handleAlarmRaised)
	b.Subscribe(bus.TypeScheduleFinished, h.handleScheduleFinished)

	return h
}

// RunID returns the database id of the recorded run, or 0 before the
// firing starts.
func (h *History) RunID() int64 { return h.runID }

func (h *History) handleKilnInitialised(ev bus.Event) error {
	if _, ok := ev.(bus.KilnInitialised); !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	result, err := h.db.ExecContext(ctx,
		"INSERT INTO firing_runs (kiln_id, schedule_label, started_at) VALUES (?, ?, ?)",
		h.kilnID, h.scheduleLabel, now(),
	)
	if err != nil {
		h.log.Error("recording firing run", "error", err)
		return nil
	}

	if h.runID, err = result.LastInsertId(); err != nil {
		h.log.Error("reading firing run id", "error", err)
	}
	return nil
}

func (h *History) handleScheduleNextSegment(ev bus.Event) error {
	next, ok := ev.(bus.ScheduleNextSegment)
	if !ok || h.runID == 0 {
		return nil
	}

	h.closeOpenSegment()

	kind := "unknown"
	target := 0.0
	if info, ok := next.Segment.(segmentInfo); ok {
		kind = info.Kind().String()
		target = info.TargetKelvin()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	result, err := h.db.ExecContext(ctx,
		"INSERT INTO firing_segments (run_id, label, kind, target_kelvin, started_at) VALUES (?, ?, ?, ?, ?)",
		h.runID, next.Label, kind, target, now(),
	)
	if err != nil {
		h.log.Error("recording firing segment", "segment", next.Label, "error", err)
		return nil
	}

	if h.openSegment, err = result.LastInsertId(); err != nil {
		h.log.Error("reading firing segment id", "error", err)
		h.openSegment = 0
	}
	return nil
}

func (h *History) handleSegmentFinished(ev bus.Event) error {
	if _, ok := ev.(bus.SegmentFinished); !ok {
		return nil
	}
	h.closeOpenSegment()
	return nil
}

func (h *History) handleAlarmRaised(ev bus.Event) error {
	alarm, ok := ev.(bus.AlarmRaised)
	if !ok || h.runID == 0 {
		return nil
	}

	h.alarmed = true

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := h.db.ExecContext(ctx,
		"INSERT INTO firing_alarms (run_id, reason, raised_at) VALUES (?, ?, ?)",
		h.runID, alarm.Reason, now(),
	); err != nil {
		h.log.Error("recording alarm", "reason", alarm.Reason, "error", err)
	}
	return nil
}

func (h *History) handleScheduleFinished(ev bus.Event) error {
	if _, ok := ev.(bus.ScheduleFinished); !ok {
		return nil
	}
	if h.runID == 0 || h.closed {
		return nil
	}
	h.closed = true

	h.closeOpenSegment()

	outcome := "completed"
	if h.alarmed {
		outcome = "aborted"
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := h.db.ExecContext(ctx,
		"UPDATE firing_runs SET finished_at = ?, outcome = ? WHERE id = ?",
		now(), outcome, h.runID,
	); err != nil {
		h.log.Error("closing firing run", "error", err)
	}
	return nil
}

// closeOpenSegment stamps the finish time on the segment row currently
// open, if any.
func (h *History) closeOpenSegment() {
	if h.openSegment == 0 {
		return
	}
	id := h.openSegment
	h.openSegment = 0

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := h.db.ExecContext(ctx,
		"UPDATE firing_segments SET finished_at = ? WHERE id = ?",
		now(), id,
	); err != nil {
		h.log.Error("closing firing segment", "error", err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
