package scraper

import "context"

type ajio struct {
	fetch *Fetcher
}

func newAjio(f *Fetcher) *ajio { return &ajio{fetch: f} }

func (s *ajio) Name() string { return "Ajio" }

func (s *ajio) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, ".prod-name")
	if desc := firstText(doc, ".prod-desc"); desc != "" && title != "" {
		title += " " + desc
	}
	if title == "" {
		title = firstText(doc, "h1")
	}

	availability := any(true)
	if firstText(doc, ".btn-gold") == "" {
		availability = false
	}

	return Result{
		Title:        title,
		Price:        firstText(doc, ".prod-sp", ".prod-price-section span"),
		Availability: availability,
	}, nil
}
