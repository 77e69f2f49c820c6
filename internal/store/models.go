// Package store contains the database layer for TrendCatcherEngine.
package store

import (
	"time"

	"github.com/google/uuid"
)

// PriceStatus classifies a price observation against the previous one.
type PriceStatus string

const (
	PriceStatusCheaper PriceStatus = "CHEAPER"
	PriceStatusCostly  PriceStatus = "COSTLY"
	PriceStatusSame    PriceStatus = "SAME"
)

// Product is a tracked item. Statistics are mutated exclusively by the
// watchdog engine; products are never hard-deleted, only deactivated.
type Product struct {
	ID       uuid.UUID
	Name     string
	URL      string // unique, one tracked entry per URL
	Source   string // site hostname, e.g. "amazon.in"
	Currency string

	CurrentPrice float64
	HighestPrice float64
	// LowestPrice is math.Inf(1) until the first observation (stored as
	// NULL). The invariant lowest <= current <= highest holds once
	// TotalChecks > 0.
	LowestPrice  float64
	AveragePrice float64

	TotalChecks   int
	LastCheckedAt *time.Time
	IsActive      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSnapshot is the projection the batch job loads for each active
// product: just enough to scrape and report.
type ProductSnapshot struct {
	ID           uuid.UUID
	Name         string
	URL          string
	Source       string
	CurrentPrice float64
}

// ProductStatsUpdate carries the new statistics the watchdog computed
// for a product. TotalChecks is not a field: the store increments it
// atomically in SQL.
type ProductStatsUpdate struct {
	CurrentPrice  float64
	HighestPrice  float64
	LowestPrice   float64
	AveragePrice  float64
	LastCheckedAt time.Time
}

// PriceHistory is one immutable price observation. Rows are append-only:
// never updated or deleted.
type PriceHistory struct {
	ID        uuid.UUID
	ProductID uuid.UUID

	Price float64
	// PreviousPrice is the product's price immediately before this
	// observation, nil for the first one.
	PreviousPrice    *float64
	Currency         string
	Status           PriceStatus
	PriceDifference  float64
	PercentageChange float64

	Source    string
	CheckedAt time.Time
}
