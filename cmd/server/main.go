/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the formation enrollment server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, YAML file, environment, flags)
  2. Build the logger
  3. Open the store (memory, sqlite3 or pure-Go sqlite)
  4. Wire the sequencer (Redis or in-process) and notifiers
  5. Start the offer expiry scheduler
  6. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (default: formation.yaml, skipped if missing)
  -port    HTTP server port, overrides config
  -db      Database path, overrides config. Use ":memory:" for in-memory
  -driver  Store driver: memory, sqlite3, sqlite. Overrides config

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the expiry scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database and Redis connections

EXAMPLES:
  ./server -db="./data/formations.db"
  ./server -driver=memory -port=3000
  FORMATION_REDIS_URL=redis://localhost:6379/0 ./server

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/formation-engine/api"
	"github.com/warp/formation-engine/config"
	"github.com/warp/formation-engine/logging"
	"github.com/warp/formation-engine/monitoring"
	"github.com/warp/formation-engine/notify"
	"github.com/warp/formation-engine/roster"
	"github.com/warp/formation-engine/roster/store"
	"github.com/warp/formation-engine/store/counter"
	"github.com/warp/formation-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "formation.yaml", "YAML config file")
	port := flag.String("port", "", "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	driver := flag.String("driver", "", "Store driver: memory, sqlite3, sqlite")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	ctx := context.Background()

	// Initialize store
	txStore, closeStore, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to initialize store")
	}
	defer closeStore()

	svc := roster.NewService(txStore)
	svc.Logger = logger.With().Str("component", "roster").Logger()
	svc.OfferTimeout = cfg.Roster.OfferTimeout
	svc.Admin = roster.Identity(cfg.Roster.Admin)
	svc.Observer = monitoring.NewObserver()

	// Sequencer
	if cfg.Redis.URL != "" {
		client, err := counter.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		svc.Sequencer = counter.NewRedis(client)
		logger.Info().Msg("using redis sequencer")
	} else {
		svc.Sequencer = counter.NewMemory()
	}

	svc.Notifier = buildNotifier(cfg.PubNub, logger)

	// Offer expiry
	scheduler := api.NewOfferExpiryScheduler(svc, logger)
	scheduler.CheckInterval = cfg.Roster.SweepInterval
	scheduler.Start()

	handler := api.NewHandler(svc, logger)
	handler.Scheduler = scheduler
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("driver", cfg.Database.Driver).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

func openStore(cfg config.DatabaseConfig) (roster.TxStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewTxMemory(), func() {}, nil
	case config.DriverCGO, config.DriverPure:
		s, err := sqlite.Open(cfg.Driver, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// buildNotifier always logs events and also publishes them to PubNub when
// keys are configured.
func buildNotifier(cfg config.PubNubConfig, logger zerolog.Logger) roster.Notifier {
	logNotifier := notify.NewLog(logger)
	if cfg.PublishKey == "" {
		return logNotifier
	}
	publisher := notify.NewClientPublisher(cfg.PublishKey, cfg.SubscribeKey, cfg.SecretKey, cfg.UUID)
	logger.Info().Msg("publishing notifications to pubnub")
	return notify.Multi{logNotifier, notify.NewPubNub(publisher)}
}
