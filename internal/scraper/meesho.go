package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type meesho struct {
	fetch *Fetcher
}

func newMeesho(f *Fetcher) *meesho { return &meesho{fetch: f} }

func (s *meesho) Name() string { return "Meesho" }

func (s *meesho) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, `h4[class*="ProductListingTitle"]`, "h1")
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	// Meesho generates class names, so hunt for the first short h4 that
	// looks like a rupee amount.
	price := ""
	doc.Find("h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(text, "₹") && len(text) < 20 {
			price = text
			return false
		}
		return true
	})

	availability := any(true)
	doc.Find("button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(sel.Text()), "sold out") {
			availability = false
			return false
		}
		return true
	})

	return Result{Title: title, Price: price, Availability: availability}, nil
}
