package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB opens a fresh database under t.TempDir with the settings
// a deployed controller uses.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "firings.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpen_CreatesFileAndDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "var", "lib", "kilnlogic", "firings.db")

	db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// SQLite creates the file lazily; a write forces it into existence.
	if _, err := db.ExecContext(context.Background(), "CREATE TABLE kiln_check (id INTEGER)"); err != nil {
		t.Fatalf("write to fresh database: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestOpen_WALMode(t *testing.T) {
	db := openTestDB(t)

	var mode string
	if err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE runs (id INTEGER PRIMARY KEY);
		CREATE TABLE segments (
			run_id INTEGER NOT NULL REFERENCES runs(id)
		);
	`); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO segments (run_id) VALUES (42)"); err == nil {
		t.Error("insert with dangling run_id should violate foreign key constraint")
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail after Close()")
	}
}

func TestClose_ZeroValue(t *testing.T) {
	var db DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on zero-value DB error = %v, want nil", err)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "wal enabled",
			cfg:  Config{Path: "/var/lib/kilnlogic/firings.db", WALMode: true, BusyTimeout: 5},
			want: "file:/var/lib/kilnlogic/firings.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		},
		{
			name: "wal disabled",
			cfg:  Config{Path: "firings.db", BusyTimeout: 1},
			want: "file:firings.db?_busy_timeout=1000&_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dsn(tt.cfg); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}
