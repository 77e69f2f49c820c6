package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type nykaa struct {
	fetch *Fetcher
}

func newNykaa(f *Fetcher) *nykaa { return &nykaa{fetch: f} }

func (s *nykaa) Name() string { return "Nykaa" }

func (s *nykaa) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, "h1")
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	// Product meta tags are the most stable source on Nykaa; the css-*
	// classes are generated and churn between deploys.
	price := any(metaContent(doc, `meta[property="product:price:amount"]`))
	if price == "" {
		price = firstText(doc, "span.css-1jczs19", ".css-1e492kkw")
	}

	availability := any(true)
	doc.Find("button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(sel.Text()), "sold out") {
			availability = false
			return false
		}
		return true
	})
	if avail := metaContent(doc, `meta[property="product:availability"]`); avail != "" && avail != "instock" {
		availability = avail
	}

	return Result{Title: title, Price: price, Availability: availability}, nil
}
