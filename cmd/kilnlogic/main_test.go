package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("KILNLOGIC_CONFIG")
	defer os.Setenv("KILNLOGIC_CONFIG", originalEnv)

	os.Setenv("KILNLOGIC_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}

	if os.IsNotExist(err) || err.Error() == "" {
		t.Logf("Got expected error type: %v", err)
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is invalid.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
site:
  id: test-kiln

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("KILNLOGIC_CONFIG")
	defer os.Setenv("KILNLOGIC_CONFIG", originalEnv)
	os.Setenv("KILNLOGIC_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_MissingKilnConfig verifies run fails when the kiln hardware
// description cannot be found. Infrastructure (database, no MQTT, no
// InfluxDB) comes up cleanly first, so this exercises the full startup
// path up to kiln assembly.
func TestRun_MissingKilnConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
site:
  id: test-kiln

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalConfig := os.Getenv("KILNLOGIC_CONFIG")
	defer os.Setenv("KILNLOGIC_CONFIG", originalConfig)
	os.Setenv("KILNLOGIC_CONFIG", configPath)

	originalKiln := os.Getenv("KILNLOGIC_KILN_CONFIG")
	defer os.Setenv("KILNLOGIC_KILN_CONFIG", originalKiln)
	os.Setenv("KILNLOGIC_KILN_CONFIG", filepath.Join(tmpDir, "no-such-kiln.yaml"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with missing kiln config")
	}
	t.Logf("run() returned error (expected): %v", err)
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("KILNLOGIC_CONFIG")
	defer os.Setenv("KILNLOGIC_CONFIG", originalEnv)

	os.Unsetenv("KILNLOGIC_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("KILNLOGIC_CONFIG")
	defer os.Setenv("KILNLOGIC_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("KILNLOGIC_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestGetKilnPath verifies default and environment override.
func TestGetKilnPath(t *testing.T) {
	originalEnv := os.Getenv("KILNLOGIC_KILN_CONFIG")
	defer os.Setenv("KILNLOGIC_KILN_CONFIG", originalEnv)

	os.Unsetenv("KILNLOGIC_KILN_CONFIG")
	if path := getKilnPath(); path != defaultKilnPath {
		t.Errorf("getKilnPath() = %q, want %q", path, defaultKilnPath)
	}

	expected := "/custom/path/kiln.yaml"
	os.Setenv("KILNLOGIC_KILN_CONFIG", expected)
	if path := getKilnPath(); path != expected {
		t.Errorf("getKilnPath() = %q, want %q", path, expected)
	}
}

// TestGetSchedulePath verifies default and environment override.
func TestGetSchedulePath(t *testing.T) {
	originalEnv := os.Getenv("KILNLOGIC_SCHEDULE")
	defer os.Setenv("KILNLOGIC_SCHEDULE", originalEnv)

	os.Unsetenv("KILNLOGIC_SCHEDULE")
	if path := getSchedulePath(); path != defaultSchedulePath {
		t.Errorf("getSchedulePath() = %q, want %q", path, defaultSchedulePath)
	}

	expected := "/custom/path/schedule.yaml"
	os.Setenv("KILNLOGIC_SCHEDULE", expected)
	if path := getSchedulePath(); path != expected {
		t.Errorf("getSchedulePath() = %q, want %q", path, expected)
	}
}
