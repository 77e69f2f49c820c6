package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/clean"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/scraper"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
)

// Defaults, overridable per invocation.
const (
	DefaultBatchSize      = 50
	DefaultBatchDelay     = 3 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 1 * time.Second
)

// ScrapeFunc resolves and scrapes one product URL. Satisfied by
// (*scraper.Registry).Scrape.
type ScrapeFunc func(ctx context.Context, url string) (scraper.Result, error)

// Analyzer is the watchdog surface the runner needs.
type Analyzer interface {
	AnalyzePrice(ctx context.Context, productID uuid.UUID, newPrice float64) (*watchdog.Analysis, error)
}

// ProductSource loads the products a run should cover.
type ProductSource interface {
	ListActiveProducts(ctx context.Context) ([]store.ProductSnapshot, error)
}

// Options configures one job run. Zero values fall back to the package
// defaults.
type Options struct {
	BatchSize      int
	BatchDelay     time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.BatchDelay <= 0 {
		o.BatchDelay = DefaultBatchDelay
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return o
}

// Runner orchestrates "scrape all active products": batching, bounded
// concurrency, retries with exponential backoff, inter-batch pacing and
// aggregate reporting.
type Runner struct {
	products ProductSource
	scrape   ScrapeFunc
	watchdog Analyzer
	log      *slog.Logger

	scrapeAttempts metric.Int64Counter
	productResults metric.Int64Counter
}

// New creates a Runner.
func New(products ProductSource, scrape ScrapeFunc, analyzer Analyzer, log *slog.Logger) *Runner {
	meter := otel.Meter("trendcatcher/jobs")
	attempts, _ := meter.Int64Counter("trendcatcher.scrape.attempts",
		metric.WithDescription("Total scrape attempts, including retries"))
	results, _ := meter.Int64Counter("trendcatcher.product.results",
		metric.WithDescription("Per-product job results by status"))

	return &Runner{
		products:       products,
		scrape:         scrape,
		watchdog:       analyzer,
		log:            log.With("component", "scrape-job"),
		scrapeAttempts: attempts,
		productResults: results,
	}
}

// Run executes one full scrape job. The only error it can return is a
// job-level setup failure (loading the active products); per-product
// failures are folded into the report.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	jobStart := time.Now()

	r.log.Info("scrape job starting",
		"batch_size", opts.BatchSize,
		"batch_delay", opts.BatchDelay,
		"max_retries", opts.MaxRetries,
	)

	products, err := r.products.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active products: %w", err)
	}

	if len(products) == 0 {
		r.log.Info("no active products to scrape")
		return &Report{Duration: time.Since(jobStart)}, nil
	}

	batches := chunk(products, opts.BatchSize)
	r.log.Info("active products loaded", "products", len(products), "batches", len(batches))

	allResults := make([]ProductResult, 0, len(products))
	processed := 0

	for i, batch := range batches {
		batchStart := time.Now()

		// Whole batch in flight at once; parallelism is bounded by the
		// batch size itself.
		results := make([]ProductResult, len(batch))
		var wg sync.WaitGroup
		for j, snap := range batch {
			wg.Add(1)
			go func(j int, snap store.ProductSnapshot) {
				defer wg.Done()
				results[j] = r.processProduct(ctx, snap, opts)
			}(j, snap)
		}
		wg.Wait()

		allResults = append(allResults, results...)
		processed += len(batch)

		batchSummary := summarize(results)
		elapsed := time.Since(jobStart)
		eta := time.Duration(float64(elapsed) / float64(processed) * float64(len(products)-processed))

		r.log.Info("batch complete",
			"batch", i+1,
			"batches", len(batches),
			"success", batchSummary.Success,
			"failed", batchSummary.Failed,
			"skipped", batchSummary.Skipped,
			"retried", batchSummary.Retried,
			"batch_duration", formatDuration(time.Since(batchStart)),
			"progress", fmt.Sprintf("%d/%d", processed, len(products)),
			"eta", formatDuration(eta),
		)

		// Pause between batches so target sites see a breather, but not
		// after the last one.
		if i < len(batches)-1 {
			sleepCtx(ctx, opts.BatchDelay)
		}
	}

	report := &Report{
		TotalProducts: len(products),
		Results:       allResults,
		Summary:       summarize(allResults),
		Duration:      time.Since(jobStart),
	}

	r.log.Info("scrape job complete",
		"total", report.TotalProducts,
		"success", report.Summary.Success,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"retried", report.Summary.Retried,
		"duration", formatDuration(report.Duration),
	)

	return report, nil
}

// processProduct scrapes one product with retries, cleans the raw data
// and feeds the price into the watchdog. It never returns an error: all
// failure paths resolve to a typed result.
func (r *Runner) processProduct(ctx context.Context, snap store.ProductSnapshot, opts Options) (res ProductResult) {
	start := time.Now()
	res = ProductResult{ProductID: snap.ID, Name: snap.Name}

	defer func() {
		if p := recover(); p != nil {
			res.Status = ResultFailed
			res.Error = fmt.Sprintf("panic: %v", p)
		}
		res.Duration = time.Since(start)
		r.productResults.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(res.Status))))
	}()

	raw, attempts, err := r.scrapeWithRetry(ctx, snap.URL, opts)
	res.Attempts = attempts
	if err != nil {
		res.Status = ResultFailed
		res.Error = err.Error()
		r.log.Warn("product scrape failed",
			"product_id", snap.ID, "url", snap.URL, "attempts", attempts, "error", err)
		return res
	}

	price := clean.Price(raw.Price)
	res.Available = clean.Availability(raw.Availability)

	// A zero price means the scraper silently failed to find the DOM
	// node, not that the product is free. Skip instead of recording a
	// bogus observation.
	if price == 0 {
		res.Status = ResultSkipped
		res.Reason = "scraped price was 0"
		return res
	}

	analysis, err := r.watchdog.AnalyzePrice(ctx, snap.ID, price)
	if err != nil {
		res.Status = ResultFailed
		res.Error = err.Error()
		return res
	}

	res.Status = ResultSuccess
	res.Analysis = analysis
	return res
}

// scrapeWithRetry retries transient scrape failures with exponential
// backoff (base, 2*base, 4*base, ...). No delay follows the final
// attempt. Unsupported sites and invalid URLs fail immediately: no
// amount of retrying fixes those.
func (r *Runner) scrapeWithRetry(ctx context.Context, url string, opts Options) (scraper.Result, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		attempts = attempt
		r.scrapeAttempts.Add(ctx, 1)

		raw, err := r.scrape(ctx, url)
		if err == nil {
			return raw, attempts, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
		if attempt < opts.MaxRetries {
			sleepCtx(ctx, opts.RetryBaseDelay<<(attempt-1))
		}
	}

	return scraper.Result{}, attempts, lastErr
}

func retryable(err error) bool {
	var invalid *scraper.InvalidURLError
	var unsupported *scraper.UnsupportedSiteError
	return !errors.As(err, &invalid) && !errors.As(err, &unsupported)
}

func chunk(products []store.ProductSnapshot, size int) [][]store.ProductSnapshot {
	var batches [][]store.ProductSnapshot
	for start := 0; start < len(products); start += size {
		end := start + size
		if end > len(products) {
			end = len(products)
		}
		batches = append(batches, products[start:end])
	}
	return batches
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
