package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

// TrendClient handles API calls to the monitoring server.
type TrendClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTrendClient creates a new client with the given base URL.
func NewTrendClient(baseURL string) *TrendClient {
	return &TrendClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			// On-demand checks scrape live pages and can be slow
			Timeout: 60 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *TrendClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// CreateProduct sends POST /products to start tracking a URL.
func (c *TrendClient) CreateProduct(req api.CreateProductRequest) (*api.ProductResponse, error) {
	var result api.ProductResponse
	if err := c.do(http.MethodPost, "/products", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListProducts sends GET /products.
func (c *TrendClient) ListProducts(activeOnly bool) (*api.ListProductsResponse, error) {
	path := "/products"
	if activeOnly {
		path += "?active=true"
	}
	var result api.ListProductsResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProduct sends GET /products/{id}.
func (c *TrendClient) GetProduct(id string) (*api.ProductResponse, error) {
	var result api.ProductResponse
	if err := c.do(http.MethodGet, "/products/"+id, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckProduct sends POST /products/{id}/check to run an on-demand price check.
func (c *TrendClient) CheckProduct(id string) (*api.CheckResponse, error) {
	var result api.CheckResponse
	if err := c.do(http.MethodPost, "/products/"+id+"/check", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHistory sends GET /products/{id}/history.
func (c *TrendClient) GetHistory(id string, limit int) (*api.HistoryResponse, error) {
	path := fmt.Sprintf("/products/%s/history?limit=%d", id, limit)
	var result api.HistoryResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TriggerScrape sends POST /jobs/scrape to start a full run.
func (c *TrendClient) TriggerScrape() (*api.TriggerJobResponse, error) {
	var result api.TriggerJobResponse
	err := c.do(http.MethodPost, "/jobs/scrape", nil, &result)
	if err != nil {
		// 409 still carries a useful body, but surface it as an error
		return nil, err
	}
	return &result, nil
}

// JobStatus sends GET /jobs/status.
func (c *TrendClient) JobStatus() (*api.JobStatusResponse, error) {
	var result api.JobStatusResponse
	if err := c.do(http.MethodGet, "/jobs/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
