// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// CreateProductRequest is the request body for registering a product to watch.
type CreateProductRequest struct {
	URL string `json:"url"`
	// Name is optional; the first scrape fills it in when empty.
	Name string `json:"name,omitempty"`
}

// ProductResponse represents a watched product in API responses.
type ProductResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Currency      string     `json:"currency"`
	CurrentPrice  float64    `json:"current_price"`
	HighestPrice  float64    `json:"highest_price"`
	LowestPrice   *float64   `json:"lowest_price,omitempty"`
	AveragePrice  float64    `json:"average_price"`
	TotalChecks   int        `json:"total_checks"`
	IsActive      bool       `json:"is_active"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BulkCreateRequest is the request body for registering several
// products in one call.
type BulkCreateRequest struct {
	Products []CreateProductRequest `json:"products"`
}

// BulkCreateFailure describes one item that could not be registered.
type BulkCreateFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// BulkCreateResponse reports the per-item outcome of a bulk registration.
type BulkCreateResponse struct {
	Added  []ProductResponse   `json:"added"`
	Failed []BulkCreateFailure `json:"failed"`
}

// ListProductsResponse is the response body for product listings.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

// CheckResponse is the response body after an on-demand price check.
type CheckResponse struct {
	ProductID        string   `json:"product_id"`
	Status           string   `json:"status"`
	PreviousPrice    *float64 `json:"previous_price,omitempty"`
	CurrentPrice     float64  `json:"current_price"`
	PriceDifference  float64  `json:"price_difference"`
	PercentageChange float64  `json:"percentage_change"`
	FirstCheck       bool     `json:"first_check"`
}

// HistoryEntry represents a single price observation in API responses.
type HistoryEntry struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	Price            float64   `json:"price"`
	PreviousPrice    *float64  `json:"previous_price,omitempty"`
	Status           string    `json:"status"`
	PriceDifference  float64   `json:"price_difference"`
	PercentageChange float64   `json:"percentage_change"`
	CheckedAt        time.Time `json:"checked_at"`
}

// HistoryResponse is the response body for price history queries.
type HistoryResponse struct {
	ProductID string         `json:"product_id"`
	History   []HistoryEntry `json:"history"`
}

// SummaryResponse is the response body for per-product watchdog summaries.
type SummaryResponse struct {
	ProductID    string         `json:"product_id"`
	TotalChecks  int            `json:"total_checks"`
	ByStatus     map[string]int `json:"by_status"`
	CurrentPrice float64        `json:"current_price"`
	HighestPrice float64        `json:"highest_price"`
	LowestPrice  *float64       `json:"lowest_price,omitempty"`
	AveragePrice float64        `json:"average_price"`
}

// AnalyzeRequest is the request body for a direct price analysis with a
// known price, bypassing the scraper.
type AnalyzeRequest struct {
	ProductID string  `json:"product_id"`
	NewPrice  float64 `json:"new_price"`
}

// TriggerJobRequest optionally overrides the run tuning. Zero values fall
// back to the server defaults.
type TriggerJobRequest struct {
	BatchSize        int `json:"batch_size,omitempty"`
	BatchDelayMs     int `json:"batch_delay_ms,omitempty"`
	MaxRetries       int `json:"max_retries,omitempty"`
	RetryBaseDelayMs int `json:"retry_base_delay_ms,omitempty"`
}

// TriggerJobResponse is the response body after requesting a scrape run.
type TriggerJobResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// JobRunRecord describes one completed scrape run.
type JobRunRecord struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Total     int       `json:"total"`
	Success   int       `json:"success"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Retried   int       `json:"retried"`
	Error     string    `json:"error,omitempty"`
}

// JobStatusResponse is the response body for scrape job status queries.
type JobStatusResponse struct {
	Running   bool           `json:"running"`
	Schedule  string         `json:"schedule"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	LastRunAt *time.Time     `json:"last_run_at,omitempty"`
	TotalRuns int            `json:"total_runs"`
	History   []JobRunRecord `json:"history"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
