package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/wnt/stablewatch/internal/config"
	"github.com/wnt/stablewatch/internal/database"
	"github.com/wnt/stablewatch/internal/enrich"
	"github.com/wnt/stablewatch/internal/logger"
	"github.com/wnt/stablewatch/internal/solana"
	"github.com/wnt/stablewatch/internal/store"
	"github.com/wnt/stablewatch/internal/topledger"
	"github.com/wnt/stablewatch/internal/updater"
)

// One-shot refresh for cron jobs and manual runs.
func main() {
	envFile := flag.String("envFile", ".env", "Path to .env file")
	supplyOnly := flag.Bool("supply-only", false, "Only refresh on-chain supply, skip ingestion")
	skipSupply := flag.Bool("skip-supply", false, "Ingest analytics rows without the supply pass")
	flag.Parse()

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
		log.Fatalf("Failed to connect to database: %v", err)
	}

	st, err := store.New(db)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	solanaClient, err := solana.NewClient(cfg.SolanaRPCURL)
	if err != nil {
		log.Fatalf("Failed to connect to Solana RPC: %v", err)
	}

	enricher := enrich.New(st, solanaClient, cfg.SupplyFetchDelay, lg)
	ctx := context.Background()

	if *supplyOnly {
		updated, err := enricher.Run(ctx)
		if err != nil {
			log.Fatalf("Supply update failed: %v", err)
		}
		fmt.Printf("Supply updated for %d tokens\n", updated)
		return
	}

	upd := updater.New(st, topledger.New(cfg.AnalyticsAPIURL), enricher, lg)
	if err := upd.Run(ctx, !*skipSupply); err != nil {
		log.Fatalf("Update failed: %v", err)
	}

	fmt.Println("Update completed successfully")
}
