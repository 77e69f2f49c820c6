package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// blockPageMarkers are page-title fragments that identify anti-bot
// interstitials instead of product pages.
var blockPageMarkers = []string{
	"robot check",
	"captcha",
	"access denied",
	"are you a human",
	"service unavailable",
}

// Fetcher performs rate-limited HTTP fetches and parses responses into
// goquery documents. One Fetcher is shared by all site adapters so the
// per-host limiters actually see every request.
type Fetcher struct {
	client    *http.Client
	userAgent string

	perHost rate.Limit
	burst   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher. timeout bounds each request end-to-end;
// perHostRate is the sustained request rate allowed per hostname.
func NewFetcher(timeout time.Duration, perHostRate float64) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if perHostRate <= 0 {
		perHostRate = 1
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		perHost:   rate.Limit(perHostRate),
		burst:     1,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.perHost, f.burst)
		f.limiters[host] = l
	}
	return l
}

// Document fetches rawURL and parses the body as HTML. It waits on the
// host's rate limiter first, sends browser-like headers, and rejects
// block pages and non-2xx statuses.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Err: err}
	}

	if err := f.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrBlocked)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("malformed response from %s: %w", u.Hostname(), err)
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	for _, marker := range blockPageMarkers {
		if strings.Contains(title, marker) {
			return nil, fmt.Errorf("page title %q: %w", strings.TrimSpace(title), ErrBlocked)
		}
	}

	return doc, nil
}
