package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
)

const productColumns = `id, name, url, source, currency, current_price, highest_price,
	lowest_price, average_price, total_checks, last_checked_at, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct maps one row onto a Product, translating the NULL
// lowest_price sentinel into +Inf.
func scanProduct(row rowScanner) (*store.Product, error) {
	var (
		p           store.Product
		lowest      sql.NullFloat64
		lastChecked sql.NullTime
	)

	err := row.Scan(&p.ID, &p.Name, &p.URL, &p.Source, &p.Currency,
		&p.CurrentPrice, &p.HighestPrice, &lowest, &p.AveragePrice,
		&p.TotalChecks, &lastChecked, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lowest.Valid {
		p.LowestPrice = lowest.Float64
	} else {
		p.LowestPrice = math.Inf(1)
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		p.LastCheckedAt = &t
	}

	return &p, nil
}

// lowestArg converts the +Inf sentinel back to NULL for storage.
func lowestArg(lowest float64) interface{} {
	if math.IsInf(lowest, 1) {
		return nil
	}
	return lowest
}

// CreateProduct inserts a newly registered product.
func (s *Store) CreateProduct(ctx context.Context, tx store.DBTransaction, p *store.Product) error {
	query := `
		INSERT INTO products (id, name, url, source, currency, current_price, highest_price,
			lowest_price, average_price, total_checks, last_checked_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.executor(tx).ExecContext(ctx, query,
		p.ID, p.Name, p.URL, p.Source, p.Currency,
		p.CurrentPrice, p.HighestPrice, lowestArg(p.LowestPrice), p.AveragePrice,
		p.TotalChecks, p.LastCheckedAt, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return store.ErrDuplicateURL
		}
		return fmt.Errorf("failed to create product %s: %w", p.URL, err)
	}
	return nil
}

func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*store.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

func (s *Store) GetProductByURL(ctx context.Context, url string) (*store.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE url = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// ListActiveProducts returns the scrape projection of every active
// product, oldest first, so batch order is stable across runs.
func (s *Store) ListActiveProducts(ctx context.Context) ([]store.ProductSnapshot, error) {
	query := `
		SELECT id, name, url, source, current_price
		FROM products
		WHERE is_active
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	defer rows.Close()

	var snapshots []store.ProductSnapshot
	for rows.Next() {
		var snap store.ProductSnapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.URL, &snap.Source, &snap.CurrentPrice); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool, limit, offset int) ([]store.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []store.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProductForUpdate loads a product with FOR UPDATE inside tx so
// concurrent checks of the same product serialize on the row lock.
func (s *Store) GetProductForUpdate(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(s.executor(tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// UpdateProductStats applies the watchdog's computed statistics and
// increments total_checks in the same statement.
func (s *Store) UpdateProductStats(ctx context.Context, tx store.DBTransaction, id uuid.UUID, upd store.ProductStatsUpdate) (*store.Product, error) {
	query := `
		UPDATE products
		SET current_price = $2,
			highest_price = $3,
			lowest_price = $4,
			average_price = $5,
			last_checked_at = $6,
			total_checks = total_checks + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(s.executor(tx).QueryRowContext(ctx, query,
		id, upd.CurrentPrice, upd.HighestPrice, lowestArg(upd.LowestPrice),
		upd.AveragePrice, upd.LastCheckedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stats for product %s: %w", id, err)
	}
	return p, nil
}

// DeactivateProduct soft-deletes: the product keeps its history but is
// excluded from future batch runs.
func (s *Store) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountProducts(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}

	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
