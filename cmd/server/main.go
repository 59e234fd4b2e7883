package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foliotrack/foliotrack/internal/config"
	"github.com/foliotrack/foliotrack/internal/database"
	"github.com/foliotrack/foliotrack/internal/events"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/dividends"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/performance"
	"github.com/foliotrack/foliotrack/internal/modules/snapshots"
	"github.com/foliotrack/foliotrack/internal/modules/snapshots/jobs"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
	"github.com/foliotrack/foliotrack/internal/modules/transactions"
	"github.com/foliotrack/foliotrack/internal/scheduler"
	"github.com/foliotrack/foliotrack/internal/server"
	"github.com/foliotrack/foliotrack/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting Foliotrack")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations. Order matters: referenced tables first.
	if err := db.Migrate(
		accounts.Schema,
		stocks.Schema,
		holdings.Schema,
		transactions.Schema,
		dividends.Schema,
		snapshots.Schema,
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Event bus
	eventBus := events.NewManager(log)

	// Repositories
	accountRepo := accounts.NewRepository(db.Conn(), log)
	stockRepo := stocks.NewRepository(db.Conn(), log)
	holdingRepo := holdings.NewRepository(db.Conn(), log)
	txRepo := transactions.NewRepository(db.Conn(), log)
	dividendRepo := dividends.NewRepository(db.Conn(), log)
	snapshotRepo := snapshots.NewRepository(db.Conn(), log)

	// Services
	holdingSvc := holdings.NewService(holdingRepo, stockRepo, log)
	dividendSvc := dividends.NewService(dividendRepo, holdingRepo, stockRepo, eventBus, log)
	perfSvc := performance.NewService(accountRepo, holdingSvc, dividendSvc, log)
	snapshotSvc := snapshots.NewService(snapshotRepo, perfSvc, eventBus, log)
	processor := transactions.NewProcessor(db, accountRepo, holdingRepo, stockRepo, txRepo, holdingSvc, eventBus, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	dailyJob := jobs.NewDailySnapshot(accountRepo, snapshotSvc, log)
	if err := sched.AddJob(cfg.SnapshotSchedule, dailyJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily snapshot job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		DevMode: cfg.DevMode,
		Modules: server.Modules{
			Accounts:     accounts.NewHandler(accountRepo, log),
			Stocks:       stocks.NewHandler(stockRepo, log),
			Holdings:     holdings.NewHandler(holdingSvc, log),
			Transactions: transactions.NewHandler(processor, txRepo, log),
			Dividends:    dividends.NewHandler(dividendSvc, log),
			Performance:  performance.NewHandler(perfSvc, log),
			Snapshots:    snapshots.NewHandler(snapshotSvc, log),
		},
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
