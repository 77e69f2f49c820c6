package scraper

import "context"

type snapdeal struct {
	fetch *Fetcher
}

func newSnapdeal(f *Fetcher) *snapdeal { return &snapdeal{fetch: f} }

func (s *snapdeal) Name() string { return "Snapdeal" }

func (s *snapdeal) Scrape(ctx context.Context, url string) (Result, error) {
	doc, err := s.fetch.Document(ctx, url)
	if err != nil {
		return Result{}, &ScrapeError{Site: s.Name(), URL: url, Err: err}
	}

	title := firstText(doc, "h1.pdp-e-i-head")
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	availability := any(true)
	if soldOut := firstText(doc, ".sold-out-err"); soldOut != "" {
		availability = soldOut
	}

	return Result{
		Title:        title,
		Price:        firstText(doc, ".payBlkBig", ".pdp-e-i-PAY-r"),
		Availability: availability,
	}, nil
}
