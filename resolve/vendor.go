package resolve

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/prodimg"
)

// LinkExtractorFunc finds the first product link in a search-results page
// that points at one of the allowed domains and contains a query token.
type LinkExtractorFunc func(html string, domains, tokens []string) (string, bool)

// maxSearchTokens caps how many model tokens qualify search-result links.
const maxSearchTokens = 6

// siteConfig describes one searchable site: the domains its product pages
// live on and the search URL templates to try, with {q} standing for the
// URL-encoded query.
type siteConfig struct {
	domains []string
	search  []string
}

// brandAliases maps messy catalog brand strings to vendor config keys.
// Matched by substring against the lowercased brand, first hit wins.
var brandAliases = []struct{ substr, key string }{
	{"lg electronics france", "lg"},
	{"lg electronics", "lg"},
	{"lg", "lg"},
	{"bosch", "bosch"},
	{"siemens", "siemens"},
	{"beko", "beko"},
	{"brandt", "brandt"},
	{"samsung", "samsung"},
	{"whirlpool", "whirlpool"},
	{"miele", "miele"},
	{"electrolux", "electrolux"},
	{"haier", "haier"},
	{"gaggenau", "gaggenau"},
}

var vendorConfigs = map[string]siteConfig{
	"bosch": {
		domains: []string{"bosch-home.fr"},
		search: []string{
			"https://www.bosch-home.fr/recherche?search={q}",
			"https://www.bosch-home.fr/liste-des-produits?search={q}",
		},
	},
	"siemens": {
		domains: []string{"siemens-home.bsh-group.com"},
		search: []string{
			"https://www.siemens-home.bsh-group.com/fr/search?searchword={q}",
		},
	},
	"beko": {
		domains: []string{"beko.com"},
		search: []string{
			"https://www.beko.com/fr-fr/recherche?q={q}",
		},
	},
	"samsung": {
		domains: []string{"samsung.com"},
		search: []string{
			"https://www.samsung.com/fr/search/?searchword={q}",
		},
	},
	"lg": {
		domains: []string{"lg.com"},
		search: []string{
			"https://www.lg.com/fr/search/all?q={q}",
		},
	},
	"brandt": {
		domains: []string{"brandt.fr"},
		search: []string{
			"https://www.brandt.fr/recherche?search={q}",
		},
	},
	"whirlpool": {
		domains: []string{"whirlpool.fr"},
		search: []string{
			"https://www.whirlpool.fr/searchresult?Ntt={q}",
		},
	},
	"miele": {
		domains: []string{"miele.fr"},
		search: []string{
			"https://www.miele.fr/electromenager/recherche-385.htm?search={q}",
		},
	},
	"electrolux": {
		domains: []string{"electrolux.fr"},
		search: []string{
			"https://www.electrolux.fr/search/?q={q}",
		},
	},
	"haier": {
		domains: []string{"haier.com"},
		search: []string{
			"https://www.haier.com/fr/search/?q={q}",
		},
	},
	"gaggenau": {
		domains: []string{"gaggenau.com"},
		search: []string{
			"https://www.gaggenau.com/fr/search?q={q}",
		},
	},
}

// NormalizeBrand reduces a catalog brand string to its vendor config key:
// the alias table first, then the first whitespace-separated token.
func NormalizeBrand(brand string) string {
	b := strings.ToLower(strings.TrimSpace(brand))
	for _, a := range brandAliases {
		if strings.Contains(b, a.substr) {
			return a.key
		}
	}
	if fields := strings.Fields(b); len(fields) > 0 {
		return fields[0]
	}
	return b
}

// VendorResolver searches the manufacturer's own site for the product
// page and takes its social-preview image. Vendor pages are trusted, so
// no relevance gate is applied to them.
type VendorResolver struct {
	Fetcher prodimg.Fetcher
	Preview prodimg.ImageExtractor
	Links   LinkExtractorFunc
}

var _ prodimg.SourceResolver = (*VendorResolver)(nil)

// Name implements prodimg.SourceResolver.
func (v *VendorResolver) Name() string { return "vendor" }

// Resolve implements prodimg.SourceResolver.
func (v *VendorResolver) Resolve(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
	key := NormalizeBrand(m.Brand)
	cfg, ok := vendorConfigs[key]
	if !ok {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no vendor site configured for brand %q", m.Brand)
	}

	q := strings.TrimSpace(m.Brand + " " + m.Model)
	tokens := searchTokens(m.Model, m.Brand)
	if key == "lg" {
		// LG's site search works best on the bare model reference.
		q = strings.TrimSpace(m.Model)
		if q == "" {
			q = strings.TrimSpace(m.Brand)
		}
		tokens = searchTokens(m.Model, "")
	}

	for _, tmpl := range cfg.search {
		searchURL := strings.ReplaceAll(tmpl, "{q}", url.QueryEscape(q))
		html, err := v.Fetcher.FetchText(ctx, searchURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		link, ok := v.Links(html, cfg.domains, tokens)
		if !ok {
			continue
		}

		page, err := v.Fetcher.FetchText(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		if img, ok := v.Preview.ExtractImage(page); ok {
			return &prodimg.Candidate{Source: v.Name(), ImageURL: img, DetailURL: link}, nil
		}
	}

	return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no vendor image found for %s", m.Label())
}

// searchTokens tokenizes the model, falling back to the given string when
// the model is empty, and caps the token list used to qualify links.
func searchTokens(model, fallback string) []string {
	s := model
	if s == "" {
		s = fallback
	}
	tokens := prodimg.TokenizeModel(s)
	if len(tokens) > maxSearchTokens {
		tokens = tokens[:maxSearchTokens]
	}
	return tokens
}
