package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/clean"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

// registerProduct is the shared registration path for single and bulk
// creation: resolve the site, reject duplicates, best-effort initial
// scrape, insert. On refusal the returned product is nil and status and
// message describe why.
func (h *Handlers) registerProduct(ctx context.Context, rawURL, name string) (*store.Product, int, string) {
	if rawURL == "" {
		return nil, http.StatusBadRequest, "URL is required"
	}

	if _, err := h.scrapers.Resolve(rawURL); err != nil {
		return nil, http.StatusUnprocessableEntity, err.Error()
	}

	if _, err := h.store.GetProductByURL(ctx, rawURL); err == nil {
		return nil, http.StatusConflict, "Product URL is already tracked"
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, http.StatusInternalServerError, "Internal database error"
	}

	// Best-effort initial scrape to seed the display name and the first
	// observation. A failed scrape never blocks registration, the next
	// scheduled run covers it.
	scraped, scrapeErr := h.scrapers.Scrape(ctx, rawURL)

	displayName := clean.Title(name)
	if name == "" && scrapeErr == nil {
		displayName = clean.Title(scraped.Title)
	}
	now := time.Now().UTC()
	product := &store.Product{
		ID:          uuid.New(),
		Name:        displayName,
		URL:         rawURL,
		Source:      clean.Source(rawURL),
		Currency:    clean.Currency(""),
		LowestPrice: math.Inf(1),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		return nil, http.StatusInternalServerError, "Internal database error"
	}
	defer tx.Rollback()

	if err := h.store.CreateProduct(ctx, tx, product); err != nil {
		// The pre-check races with concurrent registrations of the same
		// URL; the unique index is the authority.
		if errors.Is(err, store.ErrDuplicateURL) {
			return nil, http.StatusConflict, "Product URL is already tracked"
		}
		return nil, http.StatusInternalServerError, "Failed to create product"
	}

	if err := tx.Commit(); err != nil {
		return nil, http.StatusInternalServerError, "Failed to commit transaction"
	}

	if scrapeErr == nil {
		if price := clean.Price(scraped.Price); price > 0 {
			if analysis, err := h.watchdog.AnalyzePrice(ctx, product.ID, price); err == nil && analysis.Product != nil {
				product = analysis.Product
			}
		}
	}

	return product, http.StatusCreated, ""
}

// CreateProduct handles POST /products.
// It registers a product URL for monitoring. The URL must belong to a
// supported site and may only be tracked once.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, status, msg := h.registerProduct(r.Context(), req.URL, req.Name)
	if product == nil {
		h.httpError(w, msg, status)
		return
	}

	h.respondJson(w, http.StatusCreated, toProductResponse(product))
}

// BulkCreateProducts handles POST /products/bulk.
// Items are registered one by one; a failing item never aborts the
// rest, it lands in the failed list with the refusal reason.
func (h *Handlers) BulkCreateProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Products) == 0 {
		h.httpError(w, "products must be a non-empty array", http.StatusBadRequest)
		return
	}
	for i, item := range req.Products {
		if item.URL == "" {
			h.httpError(w, fmt.Sprintf("Item at index %d is missing a URL", i), http.StatusBadRequest)
			return
		}
	}

	resp := api.BulkCreateResponse{
		Added:  make([]api.ProductResponse, 0, len(req.Products)),
		Failed: make([]api.BulkCreateFailure, 0),
	}
	for _, item := range req.Products {
		product, _, msg := h.registerProduct(ctx, item.URL, item.Name)
		if product == nil {
			resp.Failed = append(resp.Failed, api.BulkCreateFailure{URL: item.URL, Error: msg})
			continue
		}
		resp.Added = append(resp.Added, toProductResponse(product))
	}

	h.respondJson(w, http.StatusCreated, resp)
}

// ListProducts handles GET /products.
// Supports ?active=true to restrict to monitored products, plus
// ?limit= and ?offset= paging.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	activeOnly := r.URL.Query().Get("active") == "true"
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	products, err := h.store.ListProducts(ctx, activeOnly, limit, offset)
	if err != nil {
		h.httpError(w, "Failed to list products", http.StatusInternalServerError)
		return
	}

	// Total counts every match, not just this page.
	total, err := h.store.CountProducts(ctx, activeOnly)
	if err != nil {
		h.httpError(w, "Failed to count products", http.StatusInternalServerError)
		return
	}

	resp := api.ListProductsResponse{
		Products: make([]api.ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetProduct handles GET /products/{id}.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
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

	h.respondJson(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles DELETE /products/{id}.
// Products are deactivated, never hard-deleted, so price history is kept.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeactivateProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Failed to deactivate product", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// GetHistory handles GET /products/{id}/history.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetProductByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Product not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Failed to load product", http.StatusInternalServerError)
		return
	}

	limit := queryInt(r, "limit", 30)
	offset := queryInt(r, "offset", 0)

	history, err := h.store.ListHistory(ctx, id, limit, offset)
	if err != nil {
		h.httpError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	resp := api.HistoryResponse{
		ProductID: id.String(),
		History:   make([]api.HistoryEntry, 0, len(history)),
	}
	for i := range history {
		resp.History = append(resp.History, toHistoryEntry(&history[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func toProductResponse(p *store.Product) api.ProductResponse {
	resp := api.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		URL:           p.URL,
		Source:        p.Source,
		Currency:      p.Currency,
		CurrentPrice:  p.CurrentPrice,
		HighestPrice:  p.HighestPrice,
		AveragePrice:  p.AveragePrice,
		TotalChecks:   p.TotalChecks,
		IsActive:      p.IsActive,
		LastCheckedAt: p.LastCheckedAt,
		CreatedAt:     p.CreatedAt,
	}
	if !math.IsInf(p.LowestPrice, 1) {
		lowest := p.LowestPrice
		resp.LowestPrice = &lowest
	}
	return resp
}

func toHistoryEntry(e *store.PriceHistory) api.HistoryEntry {
	return api.HistoryEntry{
		ID:               e.ID.String(),
		ProductID:        e.ProductID.String(),
		Price:            e.Price,
		PreviousPrice:    e.PreviousPrice,
		Status:           string(e.Status),
		PriceDifference:  e.PriceDifference,
		PercentageChange: e.PercentageChange,
		CheckedAt:        e.CheckedAt,
	}
}
