package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockpulse/ranker/internal/clients/yahoo"
	"github.com/stockpulse/ranker/internal/config"
	"github.com/stockpulse/ranker/internal/database"
	"github.com/stockpulse/ranker/internal/modules/backtest"
	"github.com/stockpulse/ranker/internal/modules/ranking"
	"github.com/stockpulse/ranker/internal/modules/snapshots"
	"github.com/stockpulse/ranker/internal/scheduler"
	"github.com/stockpulse/ranker/internal/server"
	"github.com/stockpulse/ranker/pkg/logger"
)

func main() {
	// Load configuration first so the logger gets the configured level
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting StockPulse ranker")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire modules
	snapshotRepo := snapshots.NewRepository(db.Conn(), log)
	resultRepo := backtest.NewRepository(db.Conn(), log)
	fetcher := yahoo.NewClient(log)
	pool := backtest.NewFetchPool(fetcher, cfg.FetchConcurrency, cfg.FetchTimeout, log)
	validator := backtest.NewValidator(snapshotRepo, resultRepo, pool, cfg.BenchmarkSymbol, log)
	pipeline := ranking.NewPipeline()

	// Scheduler and background jobs
	sched := scheduler.New(log)
	autoValidate := scheduler.NewAutoValidateJob(validator, cfg.HorizonMonths, cfg.TopN, log)
	if err := sched.AddJob("0 30 18 * * *", autoValidate); err != nil {
		log.Fatal().Err(err).Msg("Failed to register auto-validate job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
		Log:              log,
		DB:               db,
		RankingHandlers:  ranking.NewHandlers(pipeline, snapshotRepo, log),
		SnapshotHandlers: snapshots.NewHandlers(snapshotRepo, cfg.HorizonMonths, log),
		BacktestHandlers: backtest.NewHandlers(validator, resultRepo, cfg.HorizonMonths, cfg.TopN, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
