// Café Core - seating and presence service for shared café spaces.
//
// Café Core tracks who is in the room and where, answers proximity and
// spatial audio queries, recommends seats, and arbitrates seat claims.
// Presence arrives over HTTP, MQTT and (optionally) Redis pub/sub; changes
// fan out to MQTT retained topics, WebSocket subscribers and InfluxDB.
//
// Usage:
//
//	cafecore                       run the service (config from CAFECORE_CONFIG)
//	cafecore token --sub alice     print a bearer token for a user
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/nerrad567/cafe-core/internal/api"
	"github.com/nerrad567/cafe-core/internal/auth"
	"github.com/nerrad567/cafe-core/internal/cafe"
	"github.com/nerrad567/cafe-core/internal/infrastructure/config"
	"github.com/nerrad567/cafe-core/internal/infrastructure/database"
	"github.com/nerrad567/cafe-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/cafe-core/internal/infrastructure/logging"
	"github.com/nerrad567/cafe-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/cafe-core/internal/infrastructure/redisbus"
	"github.com/nerrad567/cafe-core/internal/ingest"
	"github.com/nerrad567/cafe-core/internal/journal"
	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/proximity"
	"github.com/nerrad567/cafe-core/internal/recommend"
	"github.com/nerrad567/cafe-core/internal/space"
	"github.com/nerrad567/cafe-core/migrations"
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
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Café Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	registry, err := space.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info("catalog loaded",
		"path", cfg.CatalogFile,
		"zones", len(registry.ListZones()),
		"seats", registry.SeatCount(),
	)

	db, err := database.Open(ctx, database.Config{
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
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	journalRepo := journal.NewSQLiteRepository(db.DB)
	recorder := journal.NewRecorder(journalRepo, false)
	recorder.SetLogger(log.Component("journal"))

	svc := cafe.New(registry, serviceOptions(cfg))
	svc.SetLogger(log.Component("cafe"))
	svc.AddRecorder(recorder)

	checks := map[string]api.HealthChecker{"database": db}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		svc.AddPublisher(cafe.NewMQTTPublisher(mqttClient))
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		svc.SetMetrics(influxClient)
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	var bus *redisbus.Bus
	if cfg.Redis.Enabled {
		bus, err = redisbus.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection")
			if closeErr := bus.Close(); closeErr != nil {
				log.Error("error closing Redis", "error", closeErr)
			}
		}()
		bus.SetLogger(log.Component("redis"))
		log.Info("Redis connected", "addr", cfg.Redis.Addr, "channel", bus.Channel())
		checks["redis"] = bus
	} else {
		log.Info("Redis disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.Component("api"),
		Service:  svc,
		Journal:  journalRepo,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	svc.AddPublisher(server.Hub())

	if startErr := svc.Start(ctx); startErr != nil {
		return fmt.Errorf("starting cafe service: %w", startErr)
	}
	defer func() {
		log.Info("stopping cafe service")
		if closeErr := svc.Close(); closeErr != nil {
			log.Error("error stopping cafe service", "error", closeErr)
		}
	}()

	dispatcher := ingest.NewDispatcher(svc)
	dispatcher.SetLogger(log.Component("ingest"))

	if mqttClient != nil {
		source := ingest.NewMQTTSource(ctx, mqttClient, dispatcher, byte(cfg.MQTT.QoS)) //nolint:gosec // QoS validated to 0..2
		if subErr := source.Subscribe(); subErr != nil {
			return fmt.Errorf("subscribing to presence topics: %w", subErr)
		}
		log.Info("MQTT presence ingest started")
	}
	if bus != nil {
		if fwdErr := bus.Forward(ctx, dispatcher.Handle); fwdErr != nil {
			return fmt.Errorf("subscribing to Redis presence channel: %w", fwdErr)
		}
		log.Info("Redis presence ingest started", "channel", bus.Channel())
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up",
		"dropped_changes", svc.DroppedChanges(),
	)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CAFECORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CAFECORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// serviceOptions maps the YAML sections onto the domain packages' options.
func serviceOptions(cfg *config.Config) cafe.Options {
	sc := cfg.Scoring
	return cafe.Options{
		Presence: presence.Options{
			HeartbeatTimeout: cfg.Presence.HeartbeatTimeout,
			SweepInterval:    cfg.Presence.SweepInterval,
			QueueSize:        cfg.Presence.QueueSize,
		},
		Proximity: proximity.Config{
			MaxRadius: cfg.Proximity.MaxAudioRadius,
			NearbyCap: cfg.Proximity.NearbyCap,
		},
		Scoring: recommend.Config{
			Weights: recommend.Weights{
				Social:   sc.SocialWeight,
				Noise:    sc.NoiseWeight,
				Activity: sc.ActivityWeight,
				Comfort:  sc.ComfortWeight,
			},
			OccupancyPerUser:          sc.OccupancyPerUser,
			ActivityMismatchScore:     sc.ActivityMismatchScore,
			BaseComfort:               sc.BaseComfort,
			WorkStyleBonus:            sc.WorkStyleBonus,
			CollaborativeMinOccupants: sc.CollaborativeMinOccupants,
			FocusedMaxOccupants:       sc.FocusedMaxOccupants,
			ReasonThreshold:           float64(sc.ReasonThreshold),
		},
	}
}

// healthCheck verifies every configured dependency is reachable.
// Checks run in name order so failures are reported deterministically.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, name := range []string{"database", "mqtt", "influxdb", "redis"} {
		c, ok := checks[name]
		if !ok {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// issueToken implements the token subcommand. The secret comes from the
// loaded config, so CAFECORE_JWT_SECRET applies as usual.
func issueToken(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.StringP("sub", "s", "", "user ID to embed as the token subject")
	role := fs.StringP("role", "r", string(auth.RoleGuest), "guest or staff")
	ttl := fs.DurationP("ttl", "t", 0, "token lifetime (default from security.jwt.access_token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return fmt.Errorf("--sub is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = time.Duration(cfg.Security.JWT.AccessTokenTTL) * time.Minute
	}

	token, err := auth.IssueToken(*subject, auth.Role(*role), cfg.Security.JWT.Secret, lifetime)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
