package scraper

import "context"

type flipkart struct {
	fetch *Fetcher
}

func newFlipkart(f *Fetcher) *flipkart { return &flipkart{fetch: f} }

func (s *flipkart) Name() string { return "Flipkart" }

func (s *flipkart) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, "span.VU-ZEz", "h1.yhB1nd span")
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	// Flipkart rotates obfuscated class names; keep old and new price
	// selectors until the old ones stop appearing in cached pages.
	price := firstText(doc,
		"div.Nx9bqj.CxhGGd",
		"div._30jeq3._16Jk6d",
		"div._30jeq3",
	)

	availability := any(true)
	if soldOut := firstText(doc, "div._16FRp0", ".sold-out-err-text"); soldOut != "" {
		availability = soldOut
	}

	return Result{Title: title, Price: price, Availability: availability}, nil
}
