package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/serpent-showdown/internal/config"
	"github.com/serpent-showdown/internal/handler"
	"github.com/serpent-showdown/internal/kafka"
	"github.com/serpent-showdown/internal/postgres"
	"github.com/serpent-showdown/internal/redis"
	"github.com/serpent-showdown/internal/service"
	"github.com/serpent-showdown/internal/websocket"
	"github.com/serpent-showdown/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	db, err := postgres.New(ctx, &cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Redis live session store
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	liveStore, err := redis.NewLiveStore(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer liveStore.Close()
	logger.Info("connected to Redis")

	// Seed demo data
	if cfg.Seed.Enabled {
		if err := db.Seed(ctx); err != nil {
			logger.Warn("failed to seed database", "error", err)
		}
		if err := liveStore.Seed(ctx); err != nil {
			logger.Warn("failed to seed live sessions", "error", err)
		}
	}

	// Initialize spectator hub
	hub := websocket.NewHub(logger)
	go hub.Run()
	logger.Info("spectator hub initialized")

	// Initialize services
	accountService := service.NewAccountService(postgres.NewAccountRepo(db), logger)
	leaderboardService := service.NewLeaderboardService(postgres.NewLeaderboardRepo(db), logger)
	leaderboardService.SetHub(hub)
	liveService := service.NewLiveService(liveStore, logger)
	liveService.SetHub(hub)

	// Start stale session sweeper
	sweeper := worker.NewSweeper(liveStore, &cfg.Registry, logger)
	if cfg.Registry.SweepEnabled {
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("failed to start session sweeper", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for snapshot ingestion
	var snapshotConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing snapshot consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		snapshotConsumer, err = kafka.NewConsumer(&cfg.Kafka, liveService, logger)
		if err != nil {
			logger.Warn("failed to create snapshot consumer, continuing without Kafka", "error", err)
		} else {
			if err := snapshotConsumer.Start(); err != nil {
				logger.Warn("failed to start snapshot consumer, continuing without Kafka", "error", err)
				snapshotConsumer = nil
			} else {
				logger.Info("snapshot consumer started")
			}
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(accountService, leaderboardService, liveService, hub, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	hub.Stop()

	if snapshotConsumer != nil {
		if err := snapshotConsumer.Stop(); err != nil {
			logger.Error("failed to stop snapshot consumer", "error", err)
		}
	}

	if cfg.Registry.SweepEnabled {
		if err := sweeper.Stop(); err != nil {
			logger.Error("failed to stop session sweeper", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
