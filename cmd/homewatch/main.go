// Homewatch Core - IoT Telemetry Daemon
//
// This is the main entry point for the Homewatch Core application.
// Homewatch polls a vendor cloud API for sensor telemetry, persists
// every reading in SQLite, keeps an in-memory latest-reading cache,
// runs a thermostat control loop against that cache, and serves a
// read-only query API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/arkady-digital/homewatch-core/migrations"

	"github.com/arkady-digital/homewatch-core/internal/api"
	"github.com/arkady-digital/homewatch-core/internal/control"
	"github.com/arkady-digital/homewatch-core/internal/infrastructure/config"
	"github.com/arkady-digital/homewatch-core/internal/infrastructure/database"
	"github.com/arkady-digital/homewatch-core/internal/infrastructure/influxdb"
	"github.com/arkady-digital/homewatch-core/internal/infrastructure/logging"
	"github.com/arkady-digital/homewatch-core/internal/infrastructure/mqtt"
	"github.com/arkady-digital/homewatch-core/internal/ingest"
	"github.com/arkady-digital/homewatch-core/internal/scheduler"
	"github.com/arkady-digital/homewatch-core/internal/telemetry"
	"github.com/arkady-digital/homewatch-core/internal/tuya"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// loopStatsInterval is how often loop counters are mirrored to InfluxDB.
const loopStatsInterval = time.Minute

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Homewatch Core",
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
	log.Info("configuration loaded", "path", configPath, "devices", len(cfg.Devices))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
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

	// Reading store and cache
	repo := telemetry.NewSQLiteReadingRepository(db.DB)
	cache := telemetry.NewReadingCache()

	// Vendor gateway
	gateway := tuya.New(cfg.Vendor, cfg.Devices)
	gateway.SetLogger(log)

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
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Ingest service
	deviceIDs := make([]string, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		deviceIDs = append(deviceIDs, d.ID)
	}
	ingestSvc := ingest.New(gateway, repo, cache, deviceIDs)
	ingestSvc.SetLogger(log)
	if mqttClient != nil {
		ingestSvc.SetPublisher(&mqttTelemetryPublisher{client: mqttClient, qos: byte(cfg.MQTT.QoS)}) // #nosec G115 -- QoS validated to 0..2
	}
	if influxClient != nil {
		ingestSvc.SetMetricsWriter(&influxReadingWriter{client: influxClient})
	}

	// Seed the cache from the store so the query surface is useful
	// before the first poll completes. A cold cache is not fatal.
	if warmErr := ingestSvc.WarmCache(ctx); warmErr != nil {
		log.Warn("cache warm-start failed, starting cold", "error", warmErr)
	}

	// Control service
	controlSvc := control.New(gateway, cache, buildPolicies(cfg, log))
	controlSvc.SetLogger(log)

	// API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Cache:   cache,
		Repo:    repo,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Scheduled loops
	supervisor := scheduler.NewSupervisor()
	supervisor.SetLogger(log)

	supervisor.Add(scheduler.Config{
		Name:     "ingest",
		Interval: cfg.GetIngestInterval(),
		Task:     ingestSvc.Cycle,
	})
	supervisor.Add(scheduler.Config{
		Name:     "control",
		Interval: cfg.GetControlInterval(),
		Task:     controlSvc.Cycle,
	})
	if influxClient != nil {
		supervisor.Add(scheduler.Config{
			Name:     "loop-stats",
			Interval: loopStatsInterval,
			Task: func(_ context.Context) error {
				for _, st := range supervisor.Stats() {
					influxClient.WriteLoopStats(st.Name, st.Cycles, st.ErrorCount)
				}
				return nil
			},
		})
	}

	log.Info("initialisation complete",
		"ingest_interval", cfg.GetIngestInterval(),
		"control_interval", cfg.GetControlInterval(),
	)

	// Blocks until shutdown signal or a loop dies.
	if runErr := supervisor.Run(ctx); runErr != nil {
		return fmt.Errorf("supervisor: %w", runErr)
	}

	log.Info("Homewatch Core stopped")
	return nil
}

// buildPolicies creates a thermostat policy for every controlled device.
func buildPolicies(cfg *config.Config, log *logging.Logger) []control.Policy {
	var policies []control.Policy
	for _, d := range cfg.Devices {
		if !d.Controlled {
			continue
		}
		policies = append(policies, control.NewThermostatPolicy(d.ID, d.Setpoint, d.Hysteresis))
		log.Info("thermostat policy registered",
			"device_id", d.ID,
			"setpoint", d.Setpoint,
			"hysteresis", d.Hysteresis,
		)
	}
	return policies
}

// getConfigPath returns the configuration file path.
// Uses HOMEWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttTelemetryPublisher adapts the infrastructure MQTT client to the
// ingest service's Publisher interface. Readings are published retained
// so late subscribers immediately see the latest value per topic.
type mqttTelemetryPublisher struct {
	client *mqtt.Client
	qos    byte
}

func (p *mqttTelemetryPublisher) PublishReading(deviceID string, kind telemetry.SensorKind, value telemetry.Value, observedAt time.Time) error {
	topic := mqtt.Topics{}.Telemetry(deviceID, kind.String())
	payload := fmt.Sprintf(`{"value":%s,"observed_at":%q}`,
		value.String(), observedAt.UTC().Format(time.RFC3339Nano))
	return p.client.Publish(topic, []byte(payload), p.qos, true)
}

// influxReadingWriter adapts the InfluxDB client to the ingest service's
// MetricsWriter interface. Booleans are mirrored as 0/1 so every kind
// lands in the same numeric field.
type influxReadingWriter struct {
	client *influxdb.Client
}

func (w *influxReadingWriter) WriteReading(deviceID string, kind telemetry.SensorKind, value telemetry.Value, observedAt time.Time) {
	v := value.Number
	if value.IsBool {
		v = 0
		if value.Bool {
			v = 1
		}
	}
	w.client.WriteReading(deviceID, kind.String(), v, observedAt)
}
