package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"showroom-etl/extractor"
	"showroom-etl/internal/config"
	"showroom-etl/internal/metrics"
	"showroom-etl/store"
)

func main() {
	cfg := config.Load()

	var (
		listingURL    = flag.String("url", cfg.ListingURL, "Showroom listing page URL")
		baseURL       = flag.String("base", cfg.BaseURL, "Base URL of product pages")
		showroom      = flag.String("showroom", cfg.Showroom, "Destination table name")
		databaseURL   = flag.String("db", cfg.DatabaseURL, "sqlite://path or postgres:// URL")
		outputFlag    = flag.String("output", "", "Also write the clean records to this JSON file")
		dryRun        = flag.Bool("dry-run", false, "Do not write to the database")
		timeout       = flag.Duration("timeout", cfg.Timeout, "Request timeout")
		maxConcurrent = flag.Int("concurrent", cfg.MaxConcurrentRequests, "Maximum concurrent product requests")
		useBrowser    = flag.Bool("browser", cfg.UseHeadlessBrowser, "Use headless browser to fetch pages")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg.ListingURL = *listingURL
	cfg.BaseURL = *baseURL
	cfg.Showroom = *showroom
	cfg.DatabaseURL = *databaseURL
	cfg.Timeout = *timeout
	cfg.MaxConcurrentRequests = *maxConcurrent
	cfg.UseHeadlessBrowser = *useBrowser
	cfg.ScrapeTime = time.Now()

	metrics.Start(cfg.MetricsPort, logger)

	var recordStore extractor.RecordStore
	if !*dryRun {
		db, err := store.Open(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		recordStore = db
	}

	showroomExtractor := extractor.NewShowroomExtractor(cfg, logger)
	defer showroomExtractor.Close()

	ctx := context.Background()
	result, err := extractor.NewPipeline(cfg, logger, showroomExtractor, recordStore).Run(ctx)
	if err != nil {
		logger.Fatalf("Run failed: %v", err)
	}

	if *outputFlag != "" {
		if err := extractor.WriteJSON(*outputFlag, result); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	}

	logger.Infof("Store: %s, showroom: %s", result.Store, result.Showroom)
	logger.Infof("Products listed: %d (skipped cards: %d)", result.Listed, result.SkippedCards)
	logger.Infof("Detail rows: %d", result.DetailRows)
	logger.Infof("Clean records: %d, stored: %d", len(result.Records), result.Stored)
}
