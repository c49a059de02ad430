package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wnt/stablewatch/internal/config"
	"github.com/wnt/stablewatch/internal/database"
	"github.com/wnt/stablewatch/internal/enrich"
	"github.com/wnt/stablewatch/internal/logger"
	"github.com/wnt/stablewatch/internal/scheduler"
	"github.com/wnt/stablewatch/internal/server"
	"github.com/wnt/stablewatch/internal/solana"
	"github.com/wnt/stablewatch/internal/store"
	"github.com/wnt/stablewatch/internal/topledger"
	"github.com/wnt/stablewatch/internal/updater"
)

func main() {
	// Parse command-line arguments
	envFile := flag.String("envFile", ".env", "Path to .env file")
	flag.Parse()

	// Load environment variables from the specified file
	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("No .env file found at %s, using environment variables", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to connect to database")
	}

	st, err := store.New(db)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to initialize store")
	}

	solanaClient, err := solana.NewClient(cfg.SolanaRPCURL)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to connect to Solana RPC")
	}

	enricher := enrich.New(st, solanaClient, cfg.SupplyFetchDelay, lg)
	analytics := topledger.New(cfg.AnalyticsAPIURL)
	upd := updater.New(st, analytics, enricher, lg)
	srv := server.New(cfg, st, upd, lg)

	sched := scheduler.New(cfg.CronSchedule, func(ctx context.Context) error {
		if err := upd.Run(ctx, true); err != nil {
			return err
		}
		srv.InvalidateCache()
		return nil
	}, lg)

	if err := sched.Start(); err != nil {
		lg.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		lg.Fatal().Err(err).Msg("HTTP server failed")
	}

	lg.Info().Msg("Shutdown complete")
}
