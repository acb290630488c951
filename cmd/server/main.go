// Package main is the entry point for the matchd swap-matching service.
// The service manages marketplace listings, keeps exchange rates synced and
// serves ranked swap suggestions over a REST API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/swapjoy/matchd/internal/clientdata"
	"github.com/swapjoy/matchd/internal/clients/exchangerate"
	"github.com/swapjoy/matchd/internal/config"
	"github.com/swapjoy/matchd/internal/database"
	"github.com/swapjoy/matchd/internal/events"
	"github.com/swapjoy/matchd/internal/jobs"
	"github.com/swapjoy/matchd/internal/modules/inventory"
	inventoryhandlers "github.com/swapjoy/matchd/internal/modules/inventory/handlers"
	"github.com/swapjoy/matchd/internal/modules/rates"
	rateshandlers "github.com/swapjoy/matchd/internal/modules/rates/handlers"
	"github.com/swapjoy/matchd/internal/modules/suggestions"
	suggestionshandlers "github.com/swapjoy/matchd/internal/modules/suggestions/handlers"
	"github.com/swapjoy/matchd/internal/reliability"
	"github.com/swapjoy/matchd/internal/scheduler"
	"github.com/swapjoy/matchd/internal/server"
	"github.com/swapjoy/matchd/pkg/logger"
)

// Nightly, before the backup window.
const cacheCleanupSchedule = "30 0 * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting matchd")

	// Databases: durable marketplace data and the ephemeral cache
	marketplaceDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "marketplace.db"),
		Profile: database.ProfileStandard,
		Name:    "marketplace",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open marketplace database")
	}
	defer marketplaceDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{marketplaceDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Shared infrastructure
	bus := events.NewBus(log)
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	// Rates
	rateClient := exchangerate.NewClient(cacheRepo, log)
	rateRepo := rates.NewRepository(marketplaceDB.Conn(), log)
	rateService := rates.NewService(rateClient, rateRepo, bus, cfg.BaseCurrency, cfg.RateCurrencies, log)

	// Inventory
	invRepo := inventory.NewRepository(marketplaceDB.Conn(), log)

	// Suggestions
	suggestionCache := suggestions.NewCache(cacheRepo, log)
	displayCurrencies := []string{cfg.BaseCurrency}
	if cfg.DisplayCurrency != "" && cfg.DisplayCurrency != cfg.BaseCurrency {
		displayCurrencies = append(displayCurrencies, cfg.DisplayCurrency)
	}
	suggestionService := suggestions.NewService(invRepo, rateService, suggestionCache, displayCurrencies, log)

	// HTTP server
	srv := server.New(server.Config{
		Log:                log,
		Cfg:                cfg,
		MarketplaceDB:      marketplaceDB,
		CacheDB:            cacheDB,
		EventBus:           bus,
		InventoryHandler:   inventoryhandlers.NewHandler(invRepo, bus, log),
		RatesHandler:       rateshandlers.NewHandler(rateService, rateRepo, log),
		SuggestionsHandler: suggestionshandlers.NewHandler(suggestionService, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Background jobs
	sched := scheduler.New(log)

	rateSyncJob := jobs.NewRateSyncJob(rateService, log)
	if err := sched.AddJob(cfg.RateSyncSchedule, rateSyncJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rate sync job")
	}

	cleanupJob := jobs.NewCacheCleanupJob(cacheRepo, cacheDB, bus, log)
	if err := sched.AddJob(cacheCleanupSchedule, cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}

	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Bucket:   cfg.Backup.Bucket,
			Region:   cfg.Backup.Region,
			Endpoint: cfg.Backup.Endpoint,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup storage client")
		}

		backupService := reliability.NewBackupService(
			s3Client,
			map[string]*database.DB{"marketplace": marketplaceDB},
			cfg.DataDir,
			cfg.Backup.KeepBackups,
			log,
		)
		backupJob := jobs.NewBackupJob(backupService, bus, log)
		if err := sched.AddJob(cfg.Backup.Schedule, backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Cloud backups disabled, no bucket configured")
	}

	sched.Start()
	defer sched.Stop()

	// Prime the rate table so the first suggestion request has real rates
	if err := sched.RunNow(rateSyncJob); err != nil {
		log.Warn().Err(err).Msg("Initial rate sync failed, serving with fallback rates")
	}

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
