package resolve

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/prodimg"
)

// retailerConfigs lists general-retailer search sources, tried in order.
var retailerConfigs = []siteConfig{
	{
		domains: []string{"boulanger.com"},
		search: []string{
			"https://www.boulanger.com/resultats?tr={q}",
		},
	},
	{
		domains: []string{"darty.com"},
		search: []string{
			"https://www.darty.com/nav/recherche?q={q}",
		},
	},
	{
		domains: []string{"but.fr"},
		search: []string{
			"https://www.but.fr/search/?text={q}",
			"https://www.but.fr/recherche/?text={q}",
		},
	},
	{
		domains: []string{"cdiscount.com"},
		search: []string{
			"https://www.cdiscount.com/search/10/{q}.html",
		},
	},
	{
		domains: []string{"manomano.fr"},
		search: []string{
			"https://www.manomano.fr/s/{q}",
		},
	},
}

// RetailerResolver searches general retailers for the product page.
// Retailer listings carry cross-sell noise, so the detail page must pass
// the relevance check before its preview image is trusted.
type RetailerResolver struct {
	Fetcher prodimg.Fetcher
	Preview prodimg.ImageExtractor
	Links   LinkExtractorFunc
}

var _ prodimg.SourceResolver = (*RetailerResolver)(nil)

// Name implements prodimg.SourceResolver.
func (r *RetailerResolver) Name() string { return "retailer" }

// Resolve implements prodimg.SourceResolver.
func (r *RetailerResolver) Resolve(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
	q := strings.TrimSpace(m.Brand + " " + m.Model)
	tokens := searchTokens(m.Model, m.Brand)

	for _, cfg := range retailerConfigs {
		for _, tmpl := range cfg.search {
			searchURL := strings.ReplaceAll(tmpl, "{q}", url.QueryEscape(q))
			html, err := r.Fetcher.FetchText(ctx, searchURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				continue
			}

			link, ok := r.Links(html, cfg.domains, tokens)
			if !ok {
				continue
			}

			page, err := r.Fetcher.FetchText(ctx, link)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				continue
			}

			if !prodimg.RelevantPage(page, m.Model) {
				continue
			}

			if img, ok := r.Preview.ExtractImage(page); ok {
				return &prodimg.Candidate{Source: r.Name(), ImageURL: img, DetailURL: link}, nil
			}
		}
	}

	return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no retailer image found for %s", m.Label())
}
