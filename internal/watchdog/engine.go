// Package watchdog turns a freshly scraped price into a classified,
// persisted observation: it compares against the product's stored state,
// appends a history entry and updates the running statistics.
package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
)

// Store is the persistence surface the engine needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*store.Product, error)
	GetProductForUpdate(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Product, error)
	UpdateProductStats(ctx context.Context, tx store.DBTransaction, id uuid.UUID, upd store.ProductStatsUpdate) (*store.Product, error)
	InsertHistory(ctx context.Context, tx store.DBTransaction, h *store.PriceHistory) error
	RecentHistory(ctx context.Context, productID uuid.UUID, n int) ([]store.PriceHistory, error)
	CountHistoryByStatus(ctx context.Context, productID uuid.UUID) (map[store.PriceStatus]int, error)
}

// Engine is the price comparison engine.
type Engine struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates an Engine.
func New(s Store, log *slog.Logger) *Engine {
	return &Engine{
		store: s,
		log:   log.With("component", "watchdog"),
		now:   time.Now,
	}
}

// Analysis is the outcome of one price check.
type Analysis struct {
	Status           store.PriceStatus   `json:"status"`
	PreviousPrice    float64             `json:"previous_price"`
	NewPrice         float64             `json:"new_price"`
	PriceDifference  float64             `json:"price_difference"`
	PercentageChange float64             `json:"percentage_change"`
	HistoryEntry     *store.PriceHistory `json:"-"`
	Product          *store.Product      `json:"-"`
}

// AnalyzePrice runs one price check for a product. The history append
// and the statistics update happen in a single transaction with the
// product row locked, so concurrent checks of the same product serialize
// and the history entry's previous price always reflects the pre-update
// snapshot. Returns store.ErrNotFound for unknown products.
func (e *Engine) AnalyzePrice(ctx context.Context, productID uuid.UUID, newPrice float64) (*Analysis, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin price check: %w", err)
	}
	defer tx.Rollback()

	product, err := e.store.GetProductForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	previousPrice := product.CurrentPrice
	firstCheck := product.TotalChecks == 0

	status := classify(newPrice, previousPrice, firstCheck)
	priceDifference := round2(newPrice - previousPrice)
	percentageChange := 0.0
	if !firstCheck && previousPrice != 0 {
		percentageChange = round2((newPrice - previousPrice) / previousPrice * 100)
	}

	entry := &store.PriceHistory{
		ID:               uuid.New(),
		ProductID:        product.ID,
		Price:            newPrice,
		Currency:         product.Currency,
		Status:           status,
		PriceDifference:  priceDifference,
		PercentageChange: percentageChange,
		Source:           product.Source,
		CheckedAt:        now,
	}
	if !firstCheck {
		entry.PreviousPrice = &previousPrice
	}

	if err := e.store.InsertHistory(ctx, tx, entry); err != nil {
		return nil, err
	}

	upd := store.ProductStatsUpdate{
		CurrentPrice:  newPrice,
		HighestPrice:  math.Max(product.HighestPrice, newPrice),
		LowestPrice:   math.Min(product.LowestPrice, newPrice),
		AveragePrice:  runningAverage(product.AveragePrice, product.TotalChecks, newPrice),
		LastCheckedAt: now,
	}

	updated, err := e.store.UpdateProductStats(ctx, tx, product.ID, upd)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit price check: %w", err)
	}

	e.log.Info("price analyzed",
		"product_id", product.ID,
		"status", status,
		"previous_price", previousPrice,
		"new_price", newPrice,
	)

	return &Analysis{
		Status:           status,
		PreviousPrice:    previousPrice,
		NewPrice:         newPrice,
		PriceDifference:  priceDifference,
		PercentageChange: percentageChange,
		HistoryEntry:     entry,
		Product:          updated,
	}, nil
}

// classify compares a new price against the previous one. The first
// observation has nothing to compare against and is always SAME. A
// stored zero price (possible when a product was registered from a page
// the scraper could not price) is treated as a real value: checks after
// it classify by comparison, with the percentage left at zero since
// division by the previous price is undefined.
func classify(newPrice, previousPrice float64, firstCheck bool) store.PriceStatus {
	if firstCheck {
		return store.PriceStatusSame
	}
	switch {
	case newPrice < previousPrice:
		return store.PriceStatusCheaper
	case newPrice > previousPrice:
		return store.PriceStatusCostly
	default:
		return store.PriceStatusSame
	}
}

// runningAverage folds one more price into the arithmetic mean without
// replaying history: (oldAvg*n + newPrice) / (n+1).
func runningAverage(oldAvg float64, totalChecksBefore int, newPrice float64) float64 {
	if totalChecksBefore == 0 {
		return round2(newPrice)
	}
	n := float64(totalChecksBefore)
	return round2((oldAvg*n + newPrice) / (n + 1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Check is one item of a bulk analysis request.
type Check struct {
	ProductID uuid.UUID `json:"product_id"`
	NewPrice  float64   `json:"new_price"`
}

// BulkResult is the per-item outcome of AnalyzeBulk.
type BulkResult struct {
	ProductID uuid.UUID `json:"product_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	*Analysis
}

// AnalyzeBulk runs checks sequentially, converting per-item failures
// into result records instead of aborting the batch.
func (e *Engine) AnalyzeBulk(ctx context.Context, checks []Check) []BulkResult {
	results := make([]BulkResult, 0, len(checks))
	for _, c := range checks {
		analysis, err := e.AnalyzePrice(ctx, c.ProductID, c.NewPrice)
		if err != nil {
			results = append(results, BulkResult{ProductID: c.ProductID, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ProductID: c.ProductID, Success: true, Analysis: analysis})
	}
	return results
}

// Stats summarizes a product's accumulated price statistics.
type Stats struct {
	TotalChecks     int                       `json:"total_checks"`
	CurrentPrice    float64                   `json:"current_price"`
	HighestPrice    float64                   `json:"highest_price"`
	LowestPrice     float64                   `json:"lowest_price"`
	AveragePrice    float64                   `json:"average_price"`
	StatusBreakdown map[store.PriceStatus]int `json:"status_breakdown"`
}

// Summary is the read-only watchdog report for one product.
type Summary struct {
	Product       *store.Product      `json:"product"`
	LastCheck     *store.PriceHistory `json:"last_check"`
	PreviousCheck *store.PriceHistory `json:"previous_check"`
	Stats         Stats               `json:"stats"`
}

// Summary returns the product, its two most recent observations and a
// count of observations grouped by status. No mutation.
func (e *Engine) Summary(ctx context.Context, productID uuid.UUID) (*Summary, error) {
	product, err := e.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	recent, err := e.store.RecentHistory(ctx, productID, 2)
	if err != nil {
		return nil, err
	}

	breakdown, err := e.store.CountHistoryByStatus(ctx, productID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Product: product,
		Stats: Stats{
			TotalChecks:     product.TotalChecks,
			CurrentPrice:    product.CurrentPrice,
			HighestPrice:    product.HighestPrice,
			LowestPrice:     product.LowestPrice,
			AveragePrice:    product.AveragePrice,
			StatusBreakdown: breakdown,
		},
	}
	if len(recent) > 0 {
		summary.LastCheck = &recent[0]
	}
	if len(recent) > 1 {
		summary.PreviousCheck = &recent[1]
	}
	return summary, nil
}
