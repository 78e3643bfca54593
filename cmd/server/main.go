package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quayside/portfolio-valuer/internal/clients/yahoo"
	"github.com/quayside/portfolio-valuer/internal/config"
	"github.com/quayside/portfolio-valuer/internal/database"
	"github.com/quayside/portfolio-valuer/internal/events"
	"github.com/quayside/portfolio-valuer/internal/modules/fx"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
	"github.com/quayside/portfolio-valuer/internal/modules/marketdata"
	"github.com/quayside/portfolio-valuer/internal/modules/valuation"
	"github.com/quayside/portfolio-valuer/internal/scheduler"
	"github.com/quayside/portfolio-valuer/internal/server"
	"github.com/quayside/portfolio-valuer/internal/services"
	"github.com/quayside/portfolio-valuer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting portfolio valuer")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Ledger
	tickerMap, err := ledger.LoadTickerMap(cfg.TickerMapPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ticker map")
	}
	tradeRepo := ledger.NewTradeRepository(db.Conn(), log)
	importer := ledger.NewImporter(tickerMap, log)

	// Market data
	feed := yahoo.NewClient(cfg.FeedBaseURL, log)
	historyStore := marketdata.NewHistoryStore(cfg.HistoryDir, log)
	priceProvider := marketdata.NewProvider(feed, historyStore, log)

	// FX and valuation
	rateProvider := fx.NewProvider(feed, log)
	engine := valuation.NewEngine(log)
	valuationRepo := valuation.NewSQLiteRepository(db.Conn(), log)
	historyService := valuation.NewService(engine, valuationRepo, log)

	eventManager := events.NewManager(log)

	portfolioService := services.NewPortfolioService(
		tradeRepo,
		importer,
		priceProvider,
		rateProvider,
		engine,
		historyService,
		eventManager,
		log,
	)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Nightly revaluation after the US close
	revaluation := scheduler.NewRevaluationJob(portfolioService, cfg.AccountID, log)
	if err := sched.AddJob("0 0 22 * * *", revaluation); err != nil {
		log.Fatal().Err(err).Msg("Failed to register revaluation job")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		Portfolio:        portfolioService,
		DefaultAccountID: cfg.AccountID,
		DevMode:          cfg.DevMode,
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
