package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/api"
	"github.com/respicare/triage-engine/internal/cache"
	"github.com/respicare/triage-engine/internal/catalog"
	"github.com/respicare/triage-engine/internal/classifier"
	"github.com/respicare/triage-engine/internal/config"
	"github.com/respicare/triage-engine/internal/database"
	"github.com/respicare/triage-engine/internal/domain"
	"github.com/respicare/triage-engine/internal/emergency"
	"github.com/respicare/triage-engine/internal/engine"
	"github.com/respicare/triage-engine/internal/extract"
	"github.com/respicare/triage-engine/internal/history"
	"github.com/respicare/triage-engine/internal/logging"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := logging.New(cfg.Logging)
	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared Postgres pool, opened only when something needs it.
	var db *database.DB
	needsPostgres := cfg.Catalog.Source == "postgres" || cfg.History.Backend == "postgres"
	if needsPostgres {
		if err := runMigrations(configManager, cfg, logger); err != nil {
			logger.WithError(err).Fatal("Database migration failed")
		}
		db, err = database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Database connection failed")
		}
		defer db.Close()
	}

	catalogs, err := buildCatalogStore(ctx, cfg, db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Reference catalog failed to load")
	}

	ensemble := buildEnsemble(cfg, logger)

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL, buildRedisClient(cfg, logger), logger)
	}

	historyStore, err := buildHistoryStore(configManager, cfg)
	if err != nil {
		logger.WithError(err).Fatal("History store failed to open")
	}
	if historyStore != nil {
		defer historyStore.Close()
	}

	triager := engine.NewOrchestrator(
		extract.NewSymptomExtractor(),
		emergency.NewRuleChecker(),
		catalogs,
		ensemble,
		cfg.Engine,
		logger,
		engine.Options{Cache: resultCache, History: historyStore},
	)

	server := api.NewServer(cfg.Server, api.Deps{
		Triager:  triager,
		Catalogs: catalogs,
		Ensemble: ensemble,
		Cache:    resultCache,
		History:  historyStore,
	}, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting Respicare triage engine")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func runMigrations(configManager *config.Manager, cfg *domain.Config, logger *logrus.Logger) error {
	if cfg.Database.MigrationsPath == "" {
		logger.Info("No migrations path configured, skipping migrations")
		return nil
	}

	migrator, err := database.NewMigrator(configManager.GetDatabaseURL(), cfg.Database.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}

func buildCatalogStore(ctx context.Context, cfg *domain.Config, db *database.DB, logger *logrus.Logger) (*catalog.Store, error) {
	var source domain.CatalogSource
	switch cfg.Catalog.Source {
	case "", "embedded":
		source = catalog.EmbeddedSource{}
	case "file":
		source = catalog.FileSource{Path: cfg.Catalog.Path}
	case "postgres":
		source = catalog.NewPostgresSource(db.Pool)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
	return catalog.NewStore(ctx, source, logger)
}

func buildEnsemble(cfg *domain.Config, logger *logrus.Logger) *classifier.Ensemble {
	forest := classifier.NewAdapter("rf", filepath.Join(cfg.Models.Dir, cfg.Models.ForestArtifact), logger)
	boosted := classifier.NewAdapter("gb", filepath.Join(cfg.Models.Dir, cfg.Models.BoostedArtifact), logger)

	classifiers := []domain.Classifier{
		classifier.WithBreaker(forest, cfg.Engine.ClassifierTimeout, logger),
		classifier.WithBreaker(boosted, cfg.Engine.ClassifierTimeout, logger),
	}
	return classifier.NewEnsemble(classifiers, logger)
}

func buildRedisClient(cfg *domain.Config, logger *logrus.Logger) *redis.Client {
	if !cfg.Cache.RedisEnable {
		return nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Invalid redis URL, running without the redis cache tier")
		return nil
	}
	opts.PoolSize = cfg.Cache.PoolSize
	opts.PoolTimeout = cfg.Cache.PoolTimeout
	opts.MaxRetries = cfg.Cache.MaxRetries

	return redis.NewClient(opts)
}

func buildHistoryStore(configManager *config.Manager, cfg *domain.Config) (domain.HistoryStore, error) {
	switch cfg.History.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		return history.NewSQLiteStore(cfg.History.SQLitePath)
	case "postgres":
		return history.NewPostgresStoreFromURL(configManager.GetDatabaseConnectionString())
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}
