// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port
	HTTPPort int

	// Cron expression for the scheduled price check
	CronSchedule string

	// Scrape job tuning
	ScrapeBatchSize      int
	ScrapeBatchDelay     time.Duration
	ScrapeMaxRetries     int
	ScrapeRetryBaseDelay time.Duration

	// Per-request scrape timeout
	ScrapeTimeout time.Duration

	// Outbound requests per second allowed against a single host
	ScrapeRate float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	schedule := os.Getenv("CRON_SCHEDULE")
	if schedule == "" {
		schedule = "0 */6 * * *"
	}

	batchSize, err := intEnv("SCRAPE_BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	batchDelay, err := durationEnv("SCRAPE_BATCH_DELAY", 3*time.Second)
	if err != nil {
		return nil, err
	}

	maxRetries, err := intEnv("SCRAPE_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	retryBaseDelay, err := durationEnv("SCRAPE_RETRY_BASE_DELAY", 1*time.Second)
	if err != nil {
		return nil, err
	}

	scrapeTimeout, err := durationEnv("SCRAPE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	scrapeRate, err := floatEnv("SCRAPE_RATE", 1)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:          dbUrl,
		HTTPPort:             port,
		CronSchedule:         schedule,
		ScrapeBatchSize:      batchSize,
		ScrapeBatchDelay:     batchDelay,
		ScrapeMaxRetries:     maxRetries,
		ScrapeRetryBaseDelay: retryBaseDelay,
		ScrapeTimeout:        scrapeTimeout,
		ScrapeRate:           scrapeRate,
	}, nil
}

func intEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
