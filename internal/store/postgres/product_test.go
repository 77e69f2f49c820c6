package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &Store{db: db}, mock
}

func productRows(id uuid.UUID, lowest interface{}, totalChecks int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "url", "source", "currency", "current_price", "highest_price",
		"lowest_price", "average_price", "total_checks", "last_checked_at",
		"is_active", "created_at", "updated_at",
	}).AddRow(id, "Test Widget", "https://www.amazon.in/dp/x", "amazon.in", "INR",
		1999.0, 2499.0, lowest, 2100.0, totalChecks, now, true, now, now)
}

func TestGetProductByID_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(productRows(id, 1899.0, 5))

	p, err := s.GetProductByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProductByID failed: %v", err)
	}
	if p.ID != id {
		t.Errorf("got id %v, want %v", p.ID, id)
	}
	if p.LowestPrice != 1899.0 {
		t.Errorf("got lowest %v, want 1899", p.LowestPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetProductByID_NullLowestPriceIsInf(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(productRows(id, nil, 0))

	p, err := s.GetProductByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProductByID failed: %v", err)
	}
	if !math.IsInf(p.LowestPrice, 1) {
		t.Errorf("expected +Inf sentinel for unchecked product, got %v", p.LowestPrice)
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetProductByID(context.Background(), id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveProducts(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id1, id2 := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT id, name, url, source, current_price\s+FROM products\s+WHERE is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "source", "current_price"}).
			AddRow(id1, "A", "https://www.amazon.in/dp/a", "amazon.in", 100.0).
			AddRow(id2, "B", "https://www.flipkart.com/p/b", "flipkart.com", 200.0))

	snaps, err := s.ListActiveProducts(context.Background())
	if err != nil {
		t.Fatalf("ListActiveProducts failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].ID != id1 || snaps[1].ID != id2 {
		t.Error("snapshots out of load order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateProductStats_IncrementsTotalChecks(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	now := time.Now()
	upd := store.ProductStatsUpdate{
		CurrentPrice:  1799,
		HighestPrice:  2499,
		LowestPrice:   1799,
		AveragePrice:  2050,
		LastCheckedAt: now,
	}

	mock.ExpectQuery(`UPDATE products\s+SET current_price = \$2`).
		WithArgs(id, 1799.0, 2499.0, 1799.0, 2050.0, now).
		WillReturnRows(productRows(id, 1799.0, 6))

	p, err := s.UpdateProductStats(context.Background(), nil, id, upd)
	if err != nil {
		t.Fatalf("UpdateProductStats failed: %v", err)
	}
	if p.TotalChecks != 6 {
		t.Errorf("got total checks %d, want 6", p.TotalChecks)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateProductStats_InfLowestStoredAsNull(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	now := time.Now()
	upd := store.ProductStatsUpdate{LowestPrice: math.Inf(1), LastCheckedAt: now}

	mock.ExpectQuery(`UPDATE products\s+SET current_price = \$2`).
		WithArgs(id, 0.0, 0.0, nil, 0.0, now).
		WillReturnRows(productRows(id, nil, 1))

	if _, err := s.UpdateProductStats(context.Background(), nil, id, upd); err != nil {
		t.Fatalf("UpdateProductStats failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeactivateProduct_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeactivateProduct(context.Background(), id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProduct(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	now := time.Now()
	p := &store.Product{
		ID:          uuid.New(),
		Name:        "Test Widget",
		URL:         "https://www.amazon.in/dp/x",
		Source:      "amazon.in",
		Currency:    "INR",
		LowestPrice: math.Inf(1),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(p.ID, p.Name, p.URL, p.Source, p.Currency,
			0.0, 0.0, nil, 0.0, 0, nil, true, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.CreateProduct(context.Background(), nil, p); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateProduct_UniqueViolationIsDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	now := time.Now()
	p := &store.Product{
		ID:          uuid.New(),
		Name:        "Test Widget",
		URL:         "https://www.amazon.in/dp/x",
		Source:      "amazon.in",
		Currency:    "INR",
		LowestPrice: math.Inf(1),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_url_key"})

	err := s.CreateProduct(context.Background(), nil, p)
	if !errors.Is(err, store.ErrDuplicateURL) {
		t.Fatalf("expected ErrDuplicateURL, got %v", err)
	}
}

func TestCountProducts(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountProducts(context.Background(), true)
	if err != nil {
		t.Fatalf("CountProducts failed: %v", err)
	}
	if count != 7 {
		t.Errorf("got %d active products, want 7", count)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err = s.CountProducts(context.Background(), false)
	if err != nil {
		t.Fatalf("CountProducts failed: %v", err)
	}
	if count != 12 {
		t.Errorf("got %d products, want 12", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
