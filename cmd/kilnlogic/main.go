// Kiln Logic Core - Kiln Firing Controller
//
// This is the main entry point for the Kiln Logic Core application.
// Kiln Logic drives a single kiln through a configured firing schedule:
//   - Per-zone sensing, PID control and PWM heater drive
//   - Hardware safety interlock outside the control loop
//   - Offline-first operation (telemetry surfaces are all optional)
//   - Firing history persisted locally in SQLite
//
// Configuration paths default to ./configs and are overridable through
// KILNLOGIC_CONFIG, KILNLOGIC_KILN_CONFIG and KILNLOGIC_SCHEDULE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/kiln-logic-core/migrations"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/display"
	"github.com/nerrad567/kiln-logic-core/internal/hal"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/config"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/database"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/logging"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/kiln-logic-core/internal/kiln"
	"github.com/nerrad567/kiln-logic-core/internal/schedule"
	"github.com/nerrad567/kiln-logic-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file paths
const (
	defaultConfigPath   = "configs/config.yaml"
	defaultKilnPath     = "configs/kiln.yaml"
	defaultSchedulePath = "configs/schedule.yaml"
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Kiln Logic Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the firing history database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Load the kiln hardware description and the firing schedule
	kilnPath := getKilnPath()
	kilnCfg, err := kiln.LoadConfig(kilnPath)
	if err != nil {
		return fmt.Errorf("loading kiln config: %w", err)
	}
	log.Info("kiln config loaded",
		"path", kilnPath,
		"kiln", kilnCfg.Kiln.Label,
		"zones", len(kilnCfg.Kiln.Zones),
	)

	schedulePath := getSchedulePath()
	schedCfg, err := schedule.LoadConfig(schedulePath)
	if err != nil {
		return fmt.Errorf("loading schedule config: %w", err)
	}
	log.Info("schedule config loaded",
		"path", schedulePath,
		"schedule", schedCfg.Schedule.Label,
		"segments", len(schedCfg.Schedule.Segments),
	)

	scale, err := schedule.ParseTemperatureScale(schedCfg.Schedule.TemperatureScale)
	if err != nil {
		return fmt.Errorf("parsing temperature scale: %w", err)
	}

	// Assemble the firing application. Everything hangs off one bus; hardware
	// pins resolve through the registry, which falls back to simulated
	// drivers when no physical open functions are supplied.
	b := bus.New()
	hw := hal.NewRegistry(hal.OpenFuncs{})

	k, err := kiln.New(kilnCfg, b, hw, log)
	if err != nil {
		return fmt.Errorf("building kiln: %w", err)
	}

	// Telemetry observers subscribe before the schedule so the history's
	// run row exists by the time the schedule activates its first segment.
	if mqttClient != nil {
		telemetry.NewPublisher(cfg.Site.ID, mqttClient, byte(cfg.MQTT.QoS), b, log)
		log.Info("MQTT telemetry publisher attached", "kiln_id", cfg.Site.ID)
	}
	if influxClient != nil {
		telemetry.NewRecorder(cfg.Site.ID, influxClient, b)
		log.Info("InfluxDB telemetry recorder attached", "kiln_id", cfg.Site.ID)
	}
	history := telemetry.NewHistory(db, cfg.Site.ID, schedCfg.Schedule.Label, b, log)

	sched, err := schedule.New(schedCfg, b, log)
	if err != nil {
		return fmt.Errorf("building schedule: %w", err)
	}

	d, err := display.New(kilnCfg.Kiln.Display, kilnCfg.Kiln.Label, scale, b)
	if err != nil {
		return fmt.Errorf("building display: %w", err)
	}
	k.SetDisplay(d)

	// Start the firing: Initialise announces the kiln, which activates the
	// schedule's first segment and engages the isolator.
	if err := k.Initialise(); err != nil {
		return fmt.Errorf("initialising kiln: %w", err)
	}
	k.StartPeriodicUpdates()
	defer k.StopPeriodicUpdates()

	log.Info("firing started",
		"kiln", kilnCfg.Kiln.Label,
		"schedule", sched.Label(),
		"run_id", history.RunID(),
	)

	// First interrupt: end the schedule and enter cool-down. The isolator
	// drops heater power, but the tick loop keeps running so readings and
	// telemetry continue while the ware cools.
	<-ctx.Done()
	log.Info("shutdown signal received, ending firing and entering cool-down")
	if err := b.Publish(bus.ScheduleFinished{}); err != nil {
		log.Error("error ending schedule", "error", err)
	}

	// Second interrupt: cool-down is over, stop ticking and clear the
	// display. The loop is drained first so the final dispatch cannot
	// interleave with an in-flight tick.
	coolCtx, coolCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer coolCancel()
	<-coolCtx.Done()
	log.Info("second signal received, finishing cool-down")

	k.StopPeriodicUpdates()
	if err := b.Publish(bus.CoolDownFinished{}); err != nil {
		log.Error("error finishing cool-down", "error", err)
	}

	// Deferred Close() calls will run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT (if enabled)
	// 3. Database

	log.Info("Kiln Logic Core stopped")
	return nil
}

// getConfigPath returns the application configuration file path.
// Uses KILNLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("KILNLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// getKilnPath returns the kiln hardware configuration file path.
// Uses KILNLOGIC_KILN_CONFIG environment variable if set, otherwise default.
func getKilnPath() string {
	if path := os.Getenv("KILNLOGIC_KILN_CONFIG"); path != "" {
		return path
	}
	return defaultKilnPath
}

// getSchedulePath returns the firing schedule file path.
// Uses KILNLOGIC_SCHEDULE environment variable if set, otherwise default.
func getSchedulePath() string {
	if path := os.Getenv("KILNLOGIC_SCHEDULE"); path != "" {
		return path
	}
	return defaultSchedulePath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
