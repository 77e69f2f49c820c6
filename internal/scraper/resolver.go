package scraper

import (
	"context"
	"net/url"
	"strings"
)

type registration struct {
	keywords []string
	scraper  Scraper
}

// Registry maps product URLs to site adapters by substring containment
// on the hostname. Matching walks entries in registration order and the
// first hit wins; the site set is fixed and curated, so there is no
// runtime extension point beyond Register.
type Registry struct {
	entries []registration
}

// NewRegistry builds the registry with every supported site adapter,
// all sharing one Fetcher.
func NewRegistry(fetcher *Fetcher) *Registry {
	r := &Registry{}
	r.Register(newAmazon(fetcher), "amazon")
	r.Register(newFlipkart(fetcher), "flipkart")
	r.Register(newMyntra(fetcher), "myntra")
	r.Register(newAjio(fetcher), "ajio")
	r.Register(newMeesho(fetcher), "meesho")
	r.Register(newNykaa(fetcher), "nykaa")
	r.Register(newSnapdeal(fetcher), "snapdeal")
	return r
}

// Register appends an adapter with its hostname keywords.
func (r *Registry) Register(s Scraper, keywords ...string) {
	r.entries = append(r.entries, registration{keywords: keywords, scraper: s})
}

// Resolve finds the adapter for a product URL. It returns
// *InvalidURLError for unparseable URLs and *UnsupportedSiteError when
// no keyword matches the hostname.
func (r *Registry) Resolve(rawURL string) (Scraper, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, &InvalidURLError{URL: rawURL, Err: err}
	}

	hostname := strings.ToLower(u.Hostname())
	for _, entry := range r.entries {
		for _, kw := range entry.keywords {
			if strings.Contains(hostname, kw) {
				return entry.scraper, nil
			}
		}
	}

	return nil, &UnsupportedSiteError{Hostname: hostname, Supported: r.SupportedSites()}
}

// Scrape resolves rawURL and runs the matching adapter.
func (r *Registry) Scrape(ctx context.Context, rawURL string) (Result, error) {
	s, err := r.Resolve(rawURL)
	if err != nil {
		return Result{}, err
	}
	return s.Scrape(ctx, rawURL)
}

// SupportedSites lists the primary keyword of every registered adapter.
func (r *Registry) SupportedSites() []string {
	sites := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		sites = append(sites, entry.keywords[0])
	}
	return sites
}
