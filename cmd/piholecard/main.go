// Pi-hole card service.
//
// piholecard mirrors a home-automation host's Pi-hole devices over MQTT,
// assembles them into the dashboard card's setup and serves it over HTTP
// and WebSocket. Card actions are published back to the host as service
// calls.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/pihole-card-core/internal/api"
	"github.com/nerrad567/pihole-card-core/internal/card"
	"github.com/nerrad567/pihole-card-core/internal/command"
	"github.com/nerrad567/pihole-card-core/internal/hass"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/config"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/database"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/logging"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/pihole-card-core/internal/ingest"
	"github.com/nerrad567/pihole-card-core/internal/stats"
	"github.com/nerrad567/pihole-card-core/migrations"
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

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serve runs the service until an interrupt or SIGTERM arrives.
func serve(parent context.Context, configPath string) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return run(ctx, configPath)
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting piholecard",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // Best-effort close of the log file
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "path", cfg.Database.Path)

	// Snapshot store, restored from the registry mirror
	repo := hass.NewSQLiteRepository(db.DB)
	store := hass.NewStore()
	store.SetLogger(log.With("component", "store"))

	topics := mqtt.NewTopics(cfg.MQTT.TopicPrefix)
	ingester := ingest.New(store, repo, topics)
	ingester.SetLogger(log.With("component", "ingest"))
	if restoreErr := ingester.Restore(ctx); restoreErr != nil {
		return fmt.Errorf("restoring snapshot: %w", restoreErr)
	}

	checks := map[string]api.HealthChecker{"database": db}

	// MQTT is optional at runtime: without it the card serves the restored
	// snapshot and actions are dropped.
	var publisher command.Publisher
	mqttClient, err := mqtt.Connect(ctx, cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, serving restored snapshot only", "error", err)
	} else {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"prefix", mqttClient.Topics().Prefix(),
		)

		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if subErr := ingester.Subscribe(mqttClient, mqttClient.QoS()); subErr != nil {
			return fmt.Errorf("subscribing to host topics: %w", subErr)
		}
		publisher = mqttClient
		checks["mqtt"] = mqttClient
	}

	commander := command.New(publisher, topics, byte(cfg.MQTT.QoS))
	commander.SetLogger(log.With("component", "command"))

	// Statistics history (optional)
	var recorder *stats.Recorder
	influxCfg := cfg.InfluxDB
	influxCfg.Tags = cfg.InfluxTags()
	influxClient, err := influxdb.Connect(ctx, influxCfg)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = stats.NewRecorder(influxClient)
		checks["influxdb"] = influxClient
	}

	srv, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Card:      cfg.Card,
		Logger:    log,
		Store:     store,
		Commander: commander,
		Checks:    checks,
		DB:        db,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if recorder != nil {
		srv.OnSetupChanged(func(setup *card.SetupRecord) {
			if n := recorder.Record(setup); n > 0 {
				log.Debug("statistics recorded", "devices", n)
			}
		})
	}

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if !cfg.AuthEnabled() {
		log.Warn("API authentication disabled; set security.jwt.secret to require bearer tokens")
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"devices", len(cfg.Card.DeviceID.List()),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// openDatabase opens the SQLite mirror and applies the embedded migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// getConfigPath returns the configuration file path.
// Uses PIHOLECARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PIHOLECARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies every registered dependency, returning the first failure.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, checker := range checks {
		if err := checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
