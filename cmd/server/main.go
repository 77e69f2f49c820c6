// Package main is the entry point for the price monitoring server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/config"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/jobs"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/logger"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/observability"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/scraper"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/server"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/server/handlers"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store/postgres"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer store.Close()

	if *migrateFlag {
		slogger.Info("running database migrations")
		if err := postgres.Migrate(store.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		slogger.Info("migrations completed")
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slogger.Error("failed to shutdown metrics", "error", err)
		}
	}()

	// Use an Observable Gauge (Async) that queries the DB only when scraped.
	meter := otel.Meter("trendcatcher-server")
	_, err = meter.Int64ObservableGauge("trendcatcher.products.active",
		metric.WithDescription("Number of products eligible for scheduled checks"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := store.CountProducts(ctx, true)
			if err != nil {
				slogger.Error("failed to count active products", "error", err)
				return nil // Don't crash metrics scrape on DB error
			}
			obs.Observe(int64(count))
			return nil
		}),
	)
	if err != nil {
		slogger.Error("failed to register active products metric", "error", err)
	}

	// Scraping and analysis
	fetcher := scraper.NewFetcher(cfg.ScrapeTimeout, cfg.ScrapeRate)
	registry := scraper.NewRegistry(fetcher)
	engine := watchdog.New(store, slogger)

	runner := jobs.New(store, registry.Scrape, engine, slogger)
	guard := jobs.NewGuard(runner, jobs.Options{
		BatchSize:      cfg.ScrapeBatchSize,
		BatchDelay:     cfg.ScrapeBatchDelay,
		MaxRetries:     cfg.ScrapeMaxRetries,
		RetryBaseDelay: cfg.ScrapeRetryBaseDelay,
	}, slogger)
	guard.Start(cfg.CronSchedule)
	defer guard.Stop()

	// HTTP API
	h := handlers.New(store, registry, engine, guard)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := server.New(addr, h, metricsHandler)

	go func() {
		slogger.Info("server starting", "addr", addr, "schedule", cfg.CronSchedule)
		if err := srv.Run(ctx); err != nil {
			slogger.Error("server stopped", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	slogger.Info("server exited properly")
}
