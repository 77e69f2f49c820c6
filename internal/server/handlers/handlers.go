// Package handlers contains HTTP handlers for the monitoring API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/jobs"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/scraper"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

// StoreFactory combines the interfaces needed for the API to function.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.ProductStore
	store.HistoryStore
}

// Analyzer is the watchdog surface the handlers depend on.
type Analyzer interface {
	AnalyzePrice(ctx context.Context, productID uuid.UUID, newPrice float64) (*watchdog.Analysis, error)
	Summary(ctx context.Context, productID uuid.UUID) (*watchdog.Summary, error)
}

// SiteRegistry resolves and runs site scrapers.
type SiteRegistry interface {
	Resolve(rawURL string) (scraper.Scraper, error)
	Scrape(ctx context.Context, rawURL string) (scraper.Result, error)
	SupportedSites() []string
}

// JobControl is the scrape job surface the handlers depend on.
type JobControl interface {
	TriggerAsync(ctx context.Context, opts jobs.Options) bool
	Status() jobs.Status
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    StoreFactory
	scrapers SiteRegistry
	watchdog Analyzer
	guard    JobControl
}

// New creates a new Handlers instance with the given dependencies.
func New(s StoreFactory, scrapers SiteRegistry, w Analyzer, guard JobControl) *Handlers {
	return &Handlers{
		store:    s,
		scrapers: scrapers,
		watchdog: w,
		guard:    guard,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
