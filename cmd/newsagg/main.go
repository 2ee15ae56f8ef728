package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shivam060404/News-Aggregation-System/internal/classifier"
	"github.com/shivam060404/News-Aggregation-System/internal/collector"
	"github.com/shivam060404/News-Aggregation-System/internal/config"
	"github.com/shivam060404/News-Aggregation-System/internal/logging"
	"github.com/shivam060404/News-Aggregation-System/internal/metrics"
	"github.com/shivam060404/News-Aggregation-System/internal/pipeline"
	"github.com/shivam060404/News-Aggregation-System/internal/scraper"
	"github.com/shivam060404/News-Aggregation-System/internal/storage"
	"github.com/shivam060404/News-Aggregation-System/internal/summarizer"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting news aggregation pipeline",
		"entity_set", cfg.EntitySet.Name,
		"storage", cfg.StorageType,
		"provider", cfg.AIProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	switch cfg.StorageType {
	case config.StorageTypeDatabase:
		pgStore, err := storage.NewPostgresStore(ctx, storage.DefaultPostgresConfig(cfg.DatabaseURL), logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	case config.StorageTypeCSV:
		csvStore, err := storage.NewCSVStore(cfg.OutputPath, logger)
		if err != nil {
			logger.Error("failed to initialize CSV storage", "error", err)
			os.Exit(1)
		}
		store = csvStore
	}

	summarize, err := summarizer.New(ctx, summarizer.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize summarizer", "error", err)
		os.Exit(1)
	}

	pipelineMetrics, err := metrics.NewPipelineCollector()
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := pipelineMetrics.ListenAndServe(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics endpoint failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	run := pipeline.New(pipeline.Deps{
		Collector:  collector.New(collector.Config{APIKey: cfg.NewsAPIKey}, logger),
		Scraper:    scraper.New(0, logger),
		Classifier: classifier.New(cfg.EntitySet, logger),
		Summarizer: summarize,
		Store:      store,
		Metrics:    pipelineMetrics,
	}, pipeline.Config{
		EntitySet:  cfg.EntitySet,
		WindowDays: cfg.WindowDays,
	}, logger)

	report := run.Run(ctx)

	logger.Info("run report",
		"run_id", report.RunID,
		"collected", report.Collected,
		"scraped", report.Scraped,
		"classified", report.Classified,
		"summarized", report.Summarized,
		"stored", report.Stored,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	for stage, count := range report.ErrorsByStage() {
		logger.Warn("stage errors", "stage", stage, "count", count)
	}
}
