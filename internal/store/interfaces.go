package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups of products that do not exist.
var ErrNotFound = errors.New("product not found")

// ErrDuplicateURL is returned when an insert collides with the unique
// index on the product URL.
var ErrDuplicateURL = errors.New("product url already tracked")

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows passing either a connection pool or an active transaction
// to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// ProductStore handles persistence of tracked products.
type ProductStore interface {
	// CreateProduct inserts a newly registered product. Returns
	// ErrDuplicateURL when the URL is already tracked.
	CreateProduct(ctx context.Context, tx DBTransaction, p *Product) error

	// GetProductByID returns a product, or ErrNotFound.
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetProductByURL returns the product tracking the given URL, or ErrNotFound.
	GetProductByURL(ctx context.Context, url string) (*Product, error)

	// ListActiveProducts returns the scrape projection of every product
	// with is_active = true, in insertion order.
	ListActiveProducts(ctx context.Context) ([]ProductSnapshot, error)

	// ListProducts returns a page of products, newest first.
	ListProducts(ctx context.Context, activeOnly bool, limit, offset int) ([]Product, error)

	// GetProductForUpdate loads a product inside tx with a row lock,
	// serializing concurrent checks of the same product.
	GetProductForUpdate(ctx context.Context, tx DBTransaction, id uuid.UUID) (*Product, error)

	// UpdateProductStats applies new statistics and atomically
	// increments total_checks by one. Returns the updated product.
	UpdateProductStats(ctx context.Context, tx DBTransaction, id uuid.UUID, upd ProductStatsUpdate) (*Product, error)

	// DeactivateProduct excludes a product from future batch runs.
	DeactivateProduct(ctx context.Context, id uuid.UUID) error

	// CountProducts reports how many products match the active filter.
	// Backs list pagination totals and the metrics gauge.
	CountProducts(ctx context.Context, activeOnly bool) (int, error)
}

// HistoryStore handles the append-only price observation log.
type HistoryStore interface {
	// InsertHistory appends one observation.
	InsertHistory(ctx context.Context, tx DBTransaction, h *PriceHistory) error

	// ListHistory returns a page of observations for a product, newest first.
	ListHistory(ctx context.Context, productID uuid.UUID, limit, offset int) ([]PriceHistory, error)

	// RecentHistory returns the n most recent observations for a product.
	RecentHistory(ctx context.Context, productID uuid.UUID, n int) ([]PriceHistory, error)

	// CountHistoryByStatus groups a product's observations by status.
	CountHistoryByStatus(ctx context.Context, productID uuid.UUID) (map[PriceStatus]int, error)
}
