package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/scraper"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/store"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/watchdog"
	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

func TestCheckProduct(t *testing.T) {
	productID := uuid.New()
	prev := 2100.0

	tests := []struct {
		name           string
		storeSetup     func(*mockStore)
		registrySetup  func(*mockRegistry)
		analyzerSetup  func(*mockAnalyzer)
		expectedStatus int
		expectedInBody string
	}{
		{
			name: "Success",
			storeSetup: func(m *mockStore) {
				m.getByIDResp = &store.Product{ID: productID, URL: "https://www.amazon.in/dp/x"}
			},
			registrySetup: func(m *mockRegistry) {
				m.scrapeResp = scraper.Result{Title: "Widget", Price: "₹ 1,999"}
			},
			analyzerSetup: func(m *mockAnalyzer) {
				m.analyzeResp = &watchdog.Analysis{
					Status:           store.PriceStatusCheaper,
					PreviousPrice:    2100,
					NewPrice:         1999,
					PriceDifference:  -101,
					PercentageChange: -4.81,
					HistoryEntry:     &store.PriceHistory{PreviousPrice: &prev},
				}
			},
			expectedStatus: http.StatusOK,
			expectedInBody: "CHEAPER",
		},
		{
			name: "Product Not Found",
			storeSetup: func(m *mockStore) {
				m.getByIDErr = store.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedInBody: "Product not found",
		},
		{
			name: "Scrape Failure",
			storeSetup: func(m *mockStore) {
				m.getByIDResp = &store.Product{ID: productID, URL: "https://www.amazon.in/dp/x"}
			},
			registrySetup: func(m *mockRegistry) {
				m.scrapeErr = errors.New("blocked by site")
			},
			expectedStatus: http.StatusBadGateway,
			expectedInBody: "Scrape failed",
		},
		{
			name: "Zero Price Skipped",
			storeSetup: func(m *mockStore) {
				m.getByIDResp = &store.Product{ID: productID, URL: "https://www.amazon.in/dp/x"}
			},
			registrySetup: func(m *mockRegistry) {
				m.scrapeResp = scraper.Result{Title: "Widget", Price: "Currently unavailable"}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedInBody: "price was 0",
		},
		{
			name: "Analysis Failure",
			storeSetup: func(m *mockStore) {
				m.getByIDResp = &store.Product{ID: productID, URL: "https://www.amazon.in/dp/x"}
			},
			registrySetup: func(m *mockRegistry) {
				m.scrapeResp = scraper.Result{Price: 1999.0}
			},
			analyzerSetup: func(m *mockAnalyzer) {
				m.analyzeErr = errors.New("tx failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedInBody: "Price analysis failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockStore{}
			if tt.storeSetup != nil {
				tt.storeSetup(mock)
			}
			reg := &mockRegistry{}
			if tt.registrySetup != nil {
				tt.registrySetup(reg)
			}
			analyzer := &mockAnalyzer{}
			if tt.analyzerSetup != nil {
				tt.analyzerSetup(analyzer)
			}
			h := newTestHandlers(mock, reg, analyzer, nil)

			req := httptest.NewRequest(http.MethodPost, "/products/"+productID.String()+"/check", nil)
			req.SetPathValue("id", productID.String())
			rr := httptest.NewRecorder()
			h.CheckProduct(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.expectedStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.expectedInBody)
			}
		})
	}
}

func TestCheckProduct_CleansScrapedPrice(t *testing.T) {
	productID := uuid.New()
	mock := &mockStore{getByIDResp: &store.Product{ID: productID, URL: "https://www.amazon.in/dp/x"}}
	reg := &mockRegistry{scrapeResp: scraper.Result{Price: "Rs. 12,499/-"}}
	analyzer := &mockAnalyzer{analyzeResp: &watchdog.Analysis{
		Status:       store.PriceStatusSame,
		NewPrice:     12499,
		HistoryEntry: &store.PriceHistory{},
	}}
	h := newTestHandlers(mock, reg, analyzer, nil)

	req := httptest.NewRequest(http.MethodPost, "/products/"+productID.String()+"/check", nil)
	req.SetPathValue("id", productID.String())
	rr := httptest.NewRecorder()
	h.CheckProduct(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if analyzer.capturedPrice != 12499 {
		t.Errorf("expected cleaned price 12499 passed to watchdog, got %v", analyzer.capturedPrice)
	}

	// First observation: no previous price in the history entry
	var resp api.CheckResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.FirstCheck {
		t.Error("expected first_check=true")
	}
	if resp.PreviousPrice != nil {
		t.Error("expected previous_price omitted on first check")
	}
}

func TestAnalyzePrice(t *testing.T) {
	productID := uuid.New()
	prev := 2100.0

	tests := []struct {
		name           string
		body           string
		analyzerSetup  func(*mockAnalyzer)
		expectedStatus int
		expectedInBody string
	}{
		{
			name: "Success",
			body: `{"product_id":"` + productID.String() + `","new_price":1999}`,
			analyzerSetup: func(m *mockAnalyzer) {
				m.analyzeResp = &watchdog.Analysis{
					Status:           store.PriceStatusCheaper,
					NewPrice:         1999,
					PriceDifference:  -101,
					PercentageChange: -4.81,
					HistoryEntry:     &store.PriceHistory{PreviousPrice: &prev},
				}
			},
			expectedStatus: http.StatusOK,
			expectedInBody: "CHEAPER",
		},
		{
			name:           "Invalid JSON",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid request body",
		},
		{
			name:           "Invalid Product ID",
			body:           `{"product_id":"not-a-uuid","new_price":1999}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid product id",
		},
		{
			name:           "Non-Positive Price",
			body:           `{"product_id":"` + productID.String() + `","new_price":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "new_price must be positive",
		},
		{
			name: "Product Not Found",
			body: `{"product_id":"` + productID.String() + `","new_price":1999}`,
			analyzerSetup: func(m *mockAnalyzer) {
				m.analyzeErr = store.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedInBody: "Product not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{}
			if tt.analyzerSetup != nil {
				tt.analyzerSetup(analyzer)
			}
			h := newTestHandlers(nil, nil, analyzer, nil)

			req := httptest.NewRequest(http.MethodPost, "/watchdog/check", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.AnalyzePrice(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.expectedStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.expectedInBody)
			}
		})
	}
}

func TestGetSummary(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		analyzerSetup  func(*mockAnalyzer)
		expectedStatus int
	}{
		{
			name: "Success",
			analyzerSetup: func(m *mockAnalyzer) {
				m.summaryResp = &watchdog.Summary{
					Stats: watchdog.Stats{
						TotalChecks:  7,
						CurrentPrice: 1999,
						HighestPrice: 2500,
						LowestPrice:  1800,
						AveragePrice: 2100,
						StatusBreakdown: map[store.PriceStatus]int{
							store.PriceStatusCheaper: 2,
							store.PriceStatusCostly:  1,
							store.PriceStatusSame:    4,
						},
					},
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not Found",
			analyzerSetup: func(m *mockAnalyzer) {
				m.summaryErr = store.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{}
			if tt.analyzerSetup != nil {
				tt.analyzerSetup(analyzer)
			}
			h := newTestHandlers(nil, nil, analyzer, nil)

			req := httptest.NewRequest(http.MethodGet, "/products/"+productID.String()+"/summary", nil)
			req.SetPathValue("id", productID.String())
			rr := httptest.NewRecorder()
			h.GetSummary(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp api.SummaryResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response JSON: %v", err)
			}
			if resp.TotalChecks != 7 {
				t.Errorf("expected 7 checks, got %d", resp.TotalChecks)
			}
			if resp.ByStatus["SAME"] != 4 {
				t.Errorf("expected 4 SAME, got %d", resp.ByStatus["SAME"])
			}
			if resp.LowestPrice == nil || *resp.LowestPrice != 1800 {
				t.Error("expected lowest_price 1800")
			}
		})
	}
}

func TestGetSummary_NoChecksYet(t *testing.T) {
	analyzer := &mockAnalyzer{summaryResp: &watchdog.Summary{
		Stats: watchdog.Stats{LowestPrice: math.Inf(1)},
	}}
	h := newTestHandlers(nil, nil, analyzer, nil)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/products/"+id+"/summary", nil)
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()
	h.GetSummary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp api.SummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.LowestPrice != nil {
		t.Error("expected lowest_price omitted before first check")
	}
}
