// Package scraper extracts product data from supported e-commerce sites.
// Each site has one adapter implementing the Scraper contract; the
// Registry maps a product URL to its adapter by hostname.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is the raw, uncleaned outcome of one scrape. Price and
// Availability stay untyped because structured metadata yields numbers
// while page markup yields text; the clean package normalizes both.
type Result struct {
	Title        string
	Price        any
	Availability any
}

// Scraper is the per-site adapter contract. Scrape returns a best-effort
// Result for ordinary pages, including "not found" content (zero price,
// false availability), and fails only for network errors, timeouts,
// anti-bot block pages or malformed responses. Retrying is the caller's
// concern, never the adapter's.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, url string) (Result, error)
}

// ErrBlocked marks responses that are anti-bot interstitials rather than
// product pages (CAPTCHA, robot checks, 403/429).
var ErrBlocked = errors.New("blocked by anti-bot page")

// ScrapeError wraps any failure inside an adapter with the site name and
// underlying cause.
type ScrapeError struct {
	Site string
	URL  string
	Err  error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s: failed to scrape %s: %v", e.Site, e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// UnsupportedSiteError is returned when no adapter matches a hostname.
type UnsupportedSiteError struct {
	Hostname  string
	Supported []string
}

func (e *UnsupportedSiteError) Error() string {
	return fmt.Sprintf("no scraper available for %q, supported: %s",
		e.Hostname, strings.Join(e.Supported, ", "))
}

// InvalidURLError is returned when a product URL cannot be parsed.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid product URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// firstText returns the text of the first selector that matches a
// non-empty node, in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// metaContent returns the content attribute of a meta tag by property or
// name, trying each selector in order.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}
