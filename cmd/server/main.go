package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/api"
	"github.com/biomerkin/decision-engine/internal/config"
	"github.com/biomerkin/decision-engine/internal/database"
	"github.com/biomerkin/decision-engine/internal/domain"
	"github.com/biomerkin/decision-engine/internal/repository"
	"github.com/biomerkin/decision-engine/internal/review"
	"github.com/biomerkin/decision-engine/internal/service"
	"github.com/biomerkin/decision-engine/pkg/external"
)

const migrationsPath = "migrations"

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting decision engine server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Report persistence is optional; the engine runs without it.
	var reports domain.ReportRepository
	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Warn("Report database unavailable, reports will not be persisted")
	} else {
		defer db.Close()
		if err := runMigrations(cfg.Database, logger); err != nil {
			logger.WithError(err).Warn("Database migrations failed")
		}
		if err := db.Health(ctx); err != nil {
			logger.WithError(err).Warn("Report database health check failed")
		}
		logger.WithField("total_conns", db.Stats().TotalConns()).Debug("Report database pool ready")
		reports = repository.NewReportRepository(db.Pool, logger)
	}

	reviews, err := newReviewStore(cfg, configManager)
	if err != nil {
		logger.WithError(err).Warn("Review store unavailable, reviews will not be recorded")
	} else {
		defer reviews.Close()
	}

	// Narrative cache failures degrade to uncached generation.
	cache, err := external.NewNarrativeCache(cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Warn("Narrative cache unavailable")
		cache = nil
	} else {
		defer cache.Close()
	}

	generator := external.NewTextGenClient(cfg.TextGen, cache, logger)
	engine := service.NewDecisionEngine(logger, cfg.Engine, generator)

	// Create server
	server := api.NewServer(configManager, engine, reports, reviews, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the application logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	}

	return logger
}

// runMigrations applies pending schema migrations against the report database.
func runMigrations(cfg domain.DatabaseConfig, logger *logrus.Logger) error {
	runner, err := database.NewMigrationRunner(postgresURL(cfg), migrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}

// postgresURL builds a URL-form connection string as golang-migrate expects.
func postgresURL(cfg domain.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)
}

// newReviewStore builds the configured clinician review store.
func newReviewStore(cfg *domain.Config, configManager *config.Manager) (review.Store, error) {
	switch cfg.Review.Backend {
	case "postgres":
		store, err := review.NewPostgresStoreFromURL(configManager.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := review.NewSQLiteStore(cfg.Review.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
