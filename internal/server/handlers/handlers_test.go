package handlers

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/jobs"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/scraper"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
)

// Mock transaction
type mockTx struct{}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error { return nil }

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	// Hooks
	beginTxErr       error
	pingErr          error
	createProductErr error

	getByIDResp *store.Product
	getByIDErr  error

	getByURLResp *store.Product
	getByURLErr  error
	getByURLFn   func(url string) (*store.Product, error)

	countResp int
	countErr  error

	listResp []store.Product
	listErr  error

	deactivateErr error

	listHistoryResp []store.PriceHistory
	listHistoryErr  error

	// Spies
	capturedProduct    *store.Product
	capturedActiveOnly bool
	capturedLimit      int
	capturedOffset     int
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	return &mockTx{}, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateProduct(ctx context.Context, tx store.DBTransaction, p *store.Product) error {
	m.capturedProduct = p
	return m.createProductErr
}

func (m *mockStore) GetProductByID(ctx context.Context, id uuid.UUID) (*store.Product, error) {
	return m.getByIDResp, m.getByIDErr
}

func (m *mockStore) GetProductByURL(ctx context.Context, url string) (*store.Product, error) {
	if m.getByURLFn != nil {
		return m.getByURLFn(url)
	}
	return m.getByURLResp, m.getByURLErr
}

func (m *mockStore) ListActiveProducts(ctx context.Context) ([]store.ProductSnapshot, error) {
	return nil, nil // Used by the job runner, not the handlers
}

func (m *mockStore) ListProducts(ctx context.Context, activeOnly bool, limit, offset int) ([]store.Product, error) {
	m.capturedActiveOnly = activeOnly
	m.capturedLimit = limit
	m.capturedOffset = offset
	return m.listResp, m.listErr
}

func (m *mockStore) GetProductForUpdate(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Product, error) {
	return nil, nil // Used by the watchdog engine, not the handlers
}

func (m *mockStore) UpdateProductStats(ctx context.Context, tx store.DBTransaction, id uuid.UUID, upd store.ProductStatsUpdate) (*store.Product, error) {
	return nil, nil
}

func (m *mockStore) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return m.deactivateErr
}

func (m *mockStore) CountProducts(ctx context.Context, activeOnly bool) (int, error) {
	return m.countResp, m.countErr
}

func (m *mockStore) InsertHistory(ctx context.Context, tx store.DBTransaction, h *store.PriceHistory) error {
	return nil
}

func (m *mockStore) ListHistory(ctx context.Context, productID uuid.UUID, limit, offset int) ([]store.PriceHistory, error) {
	m.capturedLimit = limit
	m.capturedOffset = offset
	return m.listHistoryResp, m.listHistoryErr
}

func (m *mockStore) RecentHistory(ctx context.Context, productID uuid.UUID, n int) ([]store.PriceHistory, error) {
	return nil, nil
}

func (m *mockStore) CountHistoryByStatus(ctx context.Context, productID uuid.UUID) (map[store.PriceStatus]int, error) {
	return nil, nil
}

// Mock scraper registry
type mockRegistry struct {
	resolveErr error
	resolveFn  func(rawURL string) error
	scrapeResp scraper.Result
	scrapeErr  error

	capturedURL string
}

func (m *mockRegistry) Resolve(rawURL string) (scraper.Scraper, error) {
	if m.resolveFn != nil {
		return nil, m.resolveFn(rawURL)
	}
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return nil, nil
}

func (m *mockRegistry) Scrape(ctx context.Context, rawURL string) (scraper.Result, error) {
	m.capturedURL = rawURL
	return m.scrapeResp, m.scrapeErr
}

func (m *mockRegistry) SupportedSites() []string {
	return []string{"amazon", "flipkart"}
}

// Mock watchdog
type mockAnalyzer struct {
	analyzeResp *watchdog.Analysis
	analyzeErr  error
	summaryResp *watchdog.Summary
	summaryErr  error

	capturedPrice float64
}

func (m *mockAnalyzer) AnalyzePrice(ctx context.Context, productID uuid.UUID, newPrice float64) (*watchdog.Analysis, error) {
	m.capturedPrice = newPrice
	return m.analyzeResp, m.analyzeErr
}

func (m *mockAnalyzer) Summary(ctx context.Context, productID uuid.UUID) (*watchdog.Summary, error) {
	return m.summaryResp, m.summaryErr
}

// Mock job guard
type mockGuard struct {
	triggerResp  bool
	statusResp   jobs.Status
	capturedOpts jobs.Options
}

func (m *mockGuard) TriggerAsync(ctx context.Context, opts jobs.Options) bool {
	m.capturedOpts = opts
	return m.triggerResp
}

func (m *mockGuard) Status() jobs.Status {
	return m.statusResp
}

func newTestHandlers(s *mockStore, reg *mockRegistry, a *mockAnalyzer, g *mockGuard) *Handlers {
	if s == nil {
		s = &mockStore{}
	}
	if reg == nil {
		reg = &mockRegistry{}
	}
	if a == nil {
		a = &mockAnalyzer{}
	}
	if g == nil {
		g = &mockGuard{}
	}
	return New(s, reg, a, g)
}
