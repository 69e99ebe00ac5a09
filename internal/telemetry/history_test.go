package telemetry

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/database"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"

	_ "github.com/nerrad567/kiln-logic-core/migrations" // register embedded migrations
)

// fakeSegment satisfies segmentInfo for ScheduleNextSegment events.
type fakeSegment struct {
	kind   schedule.Kind
	target float64
}

func (s *fakeSegment) Kind() schedule.Kind   { return s.kind }
func (s *fakeSegment) TargetKelvin() float64 { return s.target }

// openHistoryDB creates a migrated temporary database.
func openHistoryDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestHistoryRecordsCompletedRun(t *testing.T) {
	db := openHistoryDB(t)
	b := bus.New()
	h := NewHistory(db, "test-kiln", "bisque", b, nil)

	if h.RunID() != 0 {
		t.Errorf("RunID() = %d before firing, want 0", h.RunID())
	}

	seg := &fakeSegment{kind: schedule.KindRamp, target: 1123.15}
	events := []bus.Event{
		bus.KilnInitialised{},
		bus.ScheduleNextSegment{Segment: seg, Label: "bisque-ramp"},
		bus.SegmentFinished{},
		bus.ScheduleFinished{},
	}
	for _, ev := range events {
		if err := b.Publish(ev); err != nil {
			t.Fatalf("Publish(%T) error = %v", ev, err)
		}
	}

	if h.RunID() == 0 {
		t.Fatal("RunID() = 0 after firing")
	}

	ctx := context.Background()

	var outcome string
	var finishedAt sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT outcome, finished_at FROM firing_runs WHERE id = ?", h.RunID(),
	).Scan(&outcome, &finishedAt)
	if err != nil {
		t.Fatalf("querying run: %v", err)
	}
	if outcome != "completed" {
		t.Errorf("outcome = %q, want completed", outcome)
	}
	if !finishedAt.Valid {
		t.Error("finished_at not set")
	}

	var label, kind string
	var target float64
	var segFinished sql.NullString
	err = db.QueryRowContext(ctx,
		"SELECT label, kind, target_kelvin, finished_at FROM firing_segments WHERE run_id = ?", h.RunID(),
	).Scan(&label, &kind, &target, &segFinished)
	if err != nil {
		t.Fatalf("querying segment: %v", err)
	}
	if label != "bisque-ramp" || kind != "ramp" || target != 1123.15 {
		t.Errorf("segment row = (%q, %q, %v)", label, kind, target)
	}
	if !segFinished.Valid {
		t.Error("segment finished_at not set")
	}
}

func TestHistoryRecordsAbortedRun(t *testing.T) {
	db := openHistoryDB(t)
	b := bus.New()
	h := NewHistory(db, "test-kiln", "bisque", b, nil)

	seg := &fakeSegment{kind: schedule.KindRamp, target: 1123.15}
	events := []bus.Event{
		bus.KilnInitialised{},
		bus.ScheduleNextSegment{Segment: seg, Label: "bisque-ramp"},
		bus.AlarmRaised{Reason: "sensor_fault", Detail: "open circuit"},
		bus.ScheduleFinished{},
	}
	for _, ev := range events {
		if err := b.Publish(ev); err != nil {
			t.Fatalf("Publish(%T) error = %v", ev, err)
		}
	}

	ctx := context.Background()

	var outcome string
	err := db.QueryRowContext(ctx,
		"SELECT outcome FROM firing_runs WHERE id = ?", h.RunID(),
	).Scan(&outcome)
	if err != nil {
		t.Fatalf("querying run: %v", err)
	}
	if outcome != "aborted" {
		t.Errorf("outcome = %q, want aborted", outcome)
	}

	var reason string
	err = db.QueryRowContext(ctx,
		"SELECT reason FROM firing_alarms WHERE run_id = ?", h.RunID(),
	).Scan(&reason)
	if err != nil {
		t.Fatalf("querying alarm: %v", err)
	}
	if reason != "sensor_fault" {
		t.Errorf("reason = %q, want sensor_fault", reason)
	}
}

func TestHistoryIgnoresEventsBeforeRunOpens(t *testing.T) {
	db := openHistoryDB(t)
	b := bus.New()
	h := NewHistory(db, "test-kiln", "bisque", b, nil)

	// Segment and alarm events before KilnInitialised must not write rows.
	seg := &fakeSegment{kind: schedule.KindHold, target: 373.15}
	if err := b.Publish(bus.ScheduleNextSegment{Segment: seg, Label: "early"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := b.Publish(bus.AlarmRaised{Reason: "sensor_fault"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if h.RunID() != 0 {
		t.Errorf("RunID() = %d, want 0", h.RunID())
	}

	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM firing_segments",
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying segments: %v", err)
	}
	if count != 0 {
		t.Errorf("segment rows = %d, want 0", count)
	}
}

func TestHistoryScheduleFinishedOnlyClosesOnce(t *testing.T) {
	db := openHistoryDB(t)
	b := bus.New()
	h := NewHistory(db, "test-kiln", "bisque", b, nil)

	if err := b.Publish(bus.KilnInitialised{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := b.Publish(bus.ScheduleFinished{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	ctx := context.Background()
	var firstFinished string
	err := db.QueryRowContext(ctx,
		"SELECT finished_at FROM firing_runs WHERE id = ?", h.RunID(),
	).Scan(&firstFinished)
	if err != nil {
		t.Fatalf("querying run: %v", err)
	}

	// A duplicate finish must not rewrite the row.
	if err := b.Publish(bus.ScheduleFinished{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	var outcome string
	err = db.QueryRowContext(ctx,
		"SELECT outcome FROM firing_runs WHERE id = ?", h.RunID(),
	).Scan(&outcome)
	if err != nil {
		t.Fatalf("querying run: %v", err)
	}
	if outcome != "completed" {
		t.Errorf("outcome = %q, want completed", outcome)
	}
}
