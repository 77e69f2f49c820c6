package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// amazon scrapes amazon.* product pages. Price extraction tries the
// current price widget first, then the legacy priceblock IDs still
// served on some listings.
type amazon struct {
	fetch *Fetcher
}

func newAmazon(f *Fetcher) *amazon { return &amazon{fetch: f} }

func (a *amazon) Name() string { return "Amazon" }

func (a *amazon) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := a.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: a.Name(), URL: url, Err: err}
	}

	title := firstText(doc, "#productTitle")
	if title == "" {
		title = doc.Find("title").First().Text()
	}

	return Result{
		Title:        title,
		Price:        amazonPrice(doc),
		Availability: amazonAvailability(doc),
	}, nil
}

func amazonPrice(doc *goquery.Document) string {
	if whole := firstText(doc, ".a-price-whole"); whole != "" {
		price := strings.TrimSuffix(whole, ".")
		if fraction := firstText(doc, ".a-price-fraction"); fraction != "" {
			price += "." + fraction
		}
		return price
	}
	return firstText(doc,
		".a-price .a-offscreen",
		"#priceblock_dealprice",
		"#priceblock_ourprice",
	)
}

func amazonAvailability(doc *goquery.Document) any {
	if text := firstText(doc, "#availability"); text != "" {
		return text
	}
	// No availability block usually means a regular buyable listing.
	return true
}
