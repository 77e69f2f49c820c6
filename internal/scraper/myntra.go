package scraper

import "context"

type myntra struct {
	fetch *Fetcher
}

func newMyntra(f *Fetcher) *myntra { return &myntra{fetch: f} }

func (s *myntra) Name() string { return "Myntra" }

func (s *myntra) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, ".pdp-title")
	if name := firstText(doc, ".pdp-name"); name != "" {
		if title == "" {
			title = name
		} else {
			title += " " + name
		}
	}
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	availability := any(true)
	if firstText(doc, ".pdp-add-to-bag") == "" {
		// Missing add-to-bag button is Myntra's out-of-stock signal.
		availability = firstText(doc, ".pdp-out-of-stock")
	}

	return Result{
		Title:        title,
		Price:        firstText(doc, ".pdp-price strong", ".pdp-price"),
		Availability: availability,
	}, nil
}
