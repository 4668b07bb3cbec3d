package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/config"
	"github.com/ismlunati/padelMeet/internal/database"
	server "github.com/ismlunati/padelMeet/internal/http"
	"github.com/ismlunati/padelMeet/internal/lock"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/notifier/slack"
	"github.com/ismlunati/padelMeet/internal/playtomic"
	"github.com/ismlunati/padelMeet/internal/processor"
	"github.com/ismlunati/padelMeet/internal/pubsub"
	"github.com/ismlunati/padelMeet/internal/schedule"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping info", "level", cfg.LogLevel)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	ctx := context.Background()
	clubStore := club.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.URL != "" {
		redisClient, err := lock.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %s", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedis(redisClient, 10*time.Second)
		log.Info("Using Redis locks")
	}

	pubsubClient, err := pubsub.New(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer pubsubClient.Close()

	var notifier processor.Notifier
	if cfg.Slack.Token != "" && cfg.Slack.ChannelID != "" {
		notifier = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Info("Slack is not configured, match announcements are disabled")
	}

	events := processor.New(clubStore, notifier, metricsSvc, pubsubClient,
		processor.WithTopic(cfg.PubSub.Topic),
		processor.WithCounters(counters),
		processor.WithDryRun(cfg.DryRun),
	)
	events.Start()

	matchService := matchmaking.NewService(matchmaking.NewStore(db), clubStore,
		matchmaking.WithLocker(locker),
		matchmaking.WithEventSink(events),
	)

	location, err := time.LoadLocation(cfg.Playtomic.Timezone)
	if err != nil {
		log.Fatalf("Invalid club timezone %q: %s", cfg.Playtomic.Timezone, err)
	}
	playtomicClient := playtomic.NewClient(playtomic.WithLocation(location))
	importer := processor.NewImporter(clubStore, playtomicClient, matchService, metricsSvc, cfg.Playtomic.TenantID)

	s := server.NewServer(
		cfg,
		clubStore,
		matchService,
		schedule.New(clubStore, matchService),
		auth.New(clubStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		importer,
		metricsSvc,
		metricsHandler,
		counters,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// In-flight commands are done, deliver their events before closing the database.
	events.Stop()
	log.Info("Server process shutting down")
}
