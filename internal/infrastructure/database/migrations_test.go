package database

import (
	"context"
	"embed"
	"testing"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// useTestMigrations points the package at the testdata fixtures for the
// duration of one test: a firing_notes table plus a later column add,
// so ordering and rollback both get exercised.
func useTestMigrations(t *testing.T) {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata"
}

func appliedCount(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM schema_migrations").Scan(&n)
	if err != nil {
		t.Fatalf("counting applied migrations: %v", err)
	}
	return n
}

// =============================================================================
// Migrate Tests
// =============================================================================

func TestMigrate(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Both migrations applied in order: the second alters the table the
	// first created, so a working cone_rating column proves ordering.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO firing_notes (run_label, note, created_at, cone_rating) VALUES (?, ?, ?, ?)",
		"slow bisque 2026-08-15", "top shelf underfired", "2026-08-15T20:00:00Z", "04",
	); err != nil {
		t.Fatalf("schema incomplete after Migrate(): %v", err)
	}

	if got := appliedCount(t, db); got != 2 {
		t.Errorf("applied migrations = %d, want 2", got)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if got := appliedCount(t, db); got != 2 {
		t.Errorf("applied migrations = %d, want 2 after re-run", got)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	MigrationsFS = embed.FS{}
	MigrationsDir = "."

	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

// =============================================================================
// MigrateDown Tests
// =============================================================================

func TestMigrateDown(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// First rollback removes the cone_rating column only.
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO firing_notes (run_label, note, created_at) VALUES ('x', 'y', 'z')",
	); err != nil {
		t.Errorf("firing_notes should survive first rollback: %v", err)
	}
	if got := appliedCount(t, db); got != 1 {
		t.Errorf("applied migrations = %d, want 1 after rollback", got)
	}

	// Second rollback drops the table.
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("second MigrateDown() error = %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='firing_notes'",
	).Scan(&count); err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	if count != 0 {
		t.Error("firing_notes should be dropped after second rollback")
	}
}

func TestMigrateDown_NothingApplied(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.createMigrationsTable(ctx); err != nil {
		t.Fatalf("createMigrationsTable() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Errorf("MigrateDown() on empty history error = %v, want nil", err)
	}
}

// =============================================================================
// Filename Parsing Tests
// =============================================================================

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOk      bool
	}{
		{"20260815_120000_firing_history.up.sql", "20260815_120000", "firing_history", true, true},
		{"20260815_120000_firing_history.down.sql", "20260815_120000", "firing_history", false, true},
		{"20260118_130000_add_cone_rating.up.sql", "20260118_130000", "add_cone_rating", true, true},
		{"readme.txt", "", "", false, false},
		{"20260815_120000_no_direction.sql", "", "", false, false},
		{"orphan.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if up != tt.wantUp {
				t.Errorf("up = %v, want %v", up, tt.wantUp)
			}
		})
	}
}

func TestLoadMigrations_PairsUpAndDown(t *testing.T) {
	useTestMigrations(t)

	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("loaded %d migrations, want 2", len(migrations))
	}
	if migrations[0].version >= migrations[1].version {
		t.Errorf("migrations not sorted: %s before %s",
			migrations[0].version, migrations[1].version)
	}
	for _, m := range migrations {
		if m.upSQL == "" {
			t.Errorf("migration %s missing up SQL", m.version)
		}
		if m.downSQL == "" {
			t.Errorf("migration %s missing down SQL", m.version)
		}
	}
}
