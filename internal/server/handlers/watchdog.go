package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/clean"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

// CheckProduct handles POST /products/{id}/check.
// It scrapes the product page once, on demand, and runs the price
// analysis outside the scheduled job.
func (h *Handlers) CheckProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.store.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.httpError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Failed to load product", http.StatusInternalServerError)
		return
	}

	result, err := h.scrapers.Scrape(ctx, product.URL)
	if err != nil {
		h.httpError(w, "Scrape failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	price := clean.Price(result.Price)
	if price == 0 {
		h.httpError(w, "Scraped price was 0, check skipped", http.StatusUnprocessableEntity)
		return
	}

	analysis, err := h.watchdog.AnalyzePrice(ctx, id, price)
	if err != nil {
		h.httpError(w, "Price analysis failed", http.StatusInternalServerError)
		return
	}

	resp := api.CheckResponse{
		ProductID:        id.String(),
		Status:           string(analysis.Status),
		CurrentPrice:     analysis.NewPrice,
		PriceDifference:  analysis.PriceDifference,
		PercentageChange: analysis.PercentageChange,
	}
	if analysis.HistoryEntry != nil && analysis.HistoryEntry.PreviousPrice != nil {
		resp.PreviousPrice = analysis.HistoryEntry.PreviousPrice
	} else {
		resp.FirstCheck = true
	}
	h.respondJson(w, http.StatusOK, resp)
}

// AnalyzePrice handles POST /watchdog/check.
// It records a price observation with a caller-supplied price, bypassing
// the scraper. Useful for backfills and testing alert behavior.
func (h *Handlers) AnalyzePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.httpError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	if req.NewPrice <= 0 {
		h.httpError(w, "new_price must be positive", http.StatusBadRequest)
		return
	}

	analysis, err := h.watchdog.AnalyzePrice(ctx, id, req.NewPrice)
	if errors.Is(err, store.ErrNotFound) {
		h.httpError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Price analysis failed", http.StatusInternalServerError)
		return
	}

	resp := api.CheckResponse{
		ProductID:        id.String(),
		Status:           string(analysis.Status),
		CurrentPrice:     analysis.NewPrice,
		PriceDifference:  analysis.PriceDifference,
		PercentageChange: analysis.PercentageChange,
	}
	if analysis.HistoryEntry != nil && analysis.HistoryEntry.PreviousPrice != nil {
		resp.PreviousPrice = analysis.HistoryEntry.PreviousPrice
	} else {
		resp.FirstCheck = true
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetSummary handles GET /products/{id}/summary.
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	summary, err := h.watchdog.Summary(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.httpError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}

	resp := api.SummaryResponse{
		ProductID:    id.String(),
		TotalChecks:  summary.Stats.TotalChecks,
		ByStatus:     make(map[string]int, len(summary.Stats.StatusBreakdown)),
		CurrentPrice: summary.Stats.CurrentPrice,
		HighestPrice: summary.Stats.HighestPrice,
		AveragePrice: summary.Stats.AveragePrice,
	}
	for status, n := range summary.Stats.StatusBreakdown {
		resp.ByStatus[string(status)] = n
	}
	if !math.IsInf(summary.Stats.LowestPrice, 1) {
		lowest := summary.Stats.LowestPrice
		resp.LowestPrice = &lowest
	}
	h.respondJson(w, http.StatusOK, resp)
}
