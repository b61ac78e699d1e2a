// Package amazon implements prodimg.ProductSearcher against the
// marketplace's public search results page. It shares the pipeline's
// throttled Fetcher, so marketplace traffic counts against the same
// pacing and in-flight budget as everything else.
package amazon

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prodimg"
)

// DefaultBaseURL is the marketplace storefront the catalog targets.
const DefaultBaseURL = "https://www.amazon.fr"

// minSearchPageBytes guards against consent walls and bot interstitials,
// which are far smaller than a real results page.
const minSearchPageBytes = 1000

var asinRE = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// Ensure Searcher implements prodimg.ProductSearcher at compile time.
var _ prodimg.ProductSearcher = (*Searcher)(nil)

// Searcher finds marketplace products for brand + model queries.
type Searcher struct {
	fetcher      prodimg.Fetcher
	baseURL      string
	affiliateTag string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL overrides the storefront URL (used in tests).
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = strings.TrimSuffix(u, "/") }
}

// WithAffiliateTag appends an affiliate tag to search and product URLs.
func WithAffiliateTag(tag string) Option {
	return func(s *Searcher) { s.affiliateTag = tag }
}

// NewSearcher creates a Searcher backed by the given Fetcher.
func NewSearcher(fetcher prodimg.Fetcher, opts ...Option) *Searcher {
	s := &Searcher{
		fetcher: fetcher,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchProduct searches the marketplace for a machine and returns the
// first product hit. Returns ENOTFOUND when the results page has no
// usable product.
func (s *Searcher) SearchProduct(ctx context.Context, brand, model string) (*prodimg.ProductResult, error) {
	query := strings.TrimSpace(brand + " " + model)
	if query == "" {
		return nil, prodimg.Errorf(prodimg.EINVALID, "product search requires a brand or model")
	}

	html, err := s.fetcher.FetchText(ctx, s.searchURL(query))
	if err != nil {
		return nil, err
	}
	if len(html) < minSearchPageBytes || !strings.Contains(strings.ToLower(html), "amazon") {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "search for %q returned no usable results page", query)
	}

	result, ok := s.parseFirstResult(html)
	if !ok {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no product found for %q", query)
	}
	return result, nil
}

// DetailURL builds the product detail page URL for an ASIN.
func (s *Searcher) DetailURL(asin string) string {
	u := s.baseURL + "/dp/" + asin
	if s.affiliateTag != "" {
		u += "?tag=" + url.QueryEscape(s.affiliateTag)
	}
	return u
}

func (s *Searcher) searchURL(query string) string {
	u := s.baseURL + "/s?k=" + url.QueryEscape(query)
	if s.affiliateTag != "" {
		u += "&tag=" + url.QueryEscape(s.affiliateTag)
	}
	return u
}

// parseFirstResult extracts the first product card from a search results
// page. Structural drift yields a miss, never an error.
func (s *Searcher) parseFirstResult(html string) (*prodimg.ProductResult, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}

	var result *prodimg.ProductResult
	doc.Find("[data-asin]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		asin, _ := sel.Attr("data-asin")
		// Layout rows carry an empty data-asin attribute; skip them.
		if !asinRE.MatchString(asin) {
			return true
		}

		result = &prodimg.ProductResult{
			ASIN:       asin,
			Title:      strings.TrimSpace(sel.Find("h2 span").First().Text()),
			ImageURL:   sel.Find("img.s-image").First().AttrOr("src", ""),
			ProductURL: s.DetailURL(asin),
			Price:      parsePrice(sel.Find("span.a-price-whole").First().Text()),
		}
		return false
	})
	return result, result != nil
}

// parsePrice reads the whole-unit price text, tolerating the French
// thousands separator and non-breaking spaces. Zero means unknown.
func parsePrice(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', '.':
			return -1
		case ',':
			return '.'
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}
