package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
)

const historyColumns = `id, product_id, price, previous_price, currency, status,
	price_difference, percentage_change, source, checked_at`

// InsertHistory appends one observation. History rows are never updated
// or deleted afterwards.
func (s *Store) InsertHistory(ctx context.Context, tx store.DBTransaction, h *store.PriceHistory) error {
	query := `
		INSERT INTO price_history (id, product_id, price, previous_price, currency,
			status, price_difference, percentage_change, source, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.executor(tx).ExecContext(ctx, query,
		h.ID, h.ProductID, h.Price, h.PreviousPrice, h.Currency,
		h.Status, h.PriceDifference, h.PercentageChange, h.Source, h.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history for product %s: %w", h.ProductID, err)
	}
	return nil
}

func (s *Store) ListHistory(ctx context.Context, productID uuid.UUID, limit, offset int) ([]store.PriceHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM price_history
		WHERE product_id = $1
		ORDER BY checked_at DESC
		LIMIT $2 OFFSET $3
	`
	return s.queryHistory(ctx, query, productID, limit, offset)
}

func (s *Store) RecentHistory(ctx context.Context, productID uuid.UUID, n int) ([]store.PriceHistory, error) {
	return s.ListHistory(ctx, productID, n, 0)
}

func (s *Store) queryHistory(ctx context.Context, query string, args ...interface{}) ([]store.PriceHistory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var entries []store.PriceHistory
	for rows.Next() {
		var h store.PriceHistory
		if err := rows.Scan(&h.ID, &h.ProductID, &h.Price, &h.PreviousPrice, &h.Currency,
			&h.Status, &h.PriceDifference, &h.PercentageChange, &h.Source, &h.CheckedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// CountHistoryByStatus groups a product's observations by status.
func (s *Store) CountHistoryByStatus(ctx context.Context, productID uuid.UUID) (map[store.PriceStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM price_history
		WHERE product_id = $1
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to count history by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[store.PriceStatus]int)
	for rows.Next() {
		var (
			status store.PriceStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
