package resolve

import (
	"context"

	"github.com/fwojciec/prodimg"
)

// defaultMarketplaceBaseURL builds detail URLs from bare marketplace
// identifiers when no product URL was recorded.
const defaultMarketplaceBaseURL = "https://www.amazon.fr"

// DetailResolver refines from known provenance: it revisits the recorded
// product detail page, or builds one from the marketplace identifier, and
// runs the full extractor chain against it. The page must describe the
// right category and model before any image is taken from it.
type DetailResolver struct {
	Fetcher   prodimg.Fetcher
	Extractor prodimg.ImageExtractor
	BaseURL   string
}

var _ prodimg.SourceResolver = (*DetailResolver)(nil)

// Name implements prodimg.SourceResolver.
func (d *DetailResolver) Name() string { return "detail" }

// Resolve implements prodimg.SourceResolver.
func (d *DetailResolver) Resolve(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
	detailURL := m.ProductURL
	if detailURL == "" && m.ASIN != "" {
		base := d.BaseURL
		if base == "" {
			base = defaultMarketplaceBaseURL
		}
		detailURL = base + "/dp/" + m.ASIN
	}
	if detailURL == "" {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no product page known for %s", m.Label())
	}

	html, err := d.Fetcher.FetchText(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	if !prodimg.RelevantPage(html, m.Model) {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "product page does not describe %s", m.Label())
	}

	img, ok := d.Extractor.ExtractImage(html)
	if !ok {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no image on product page for %s", m.Label())
	}

	return &prodimg.Candidate{Source: d.Name(), ImageURL: img, DetailURL: detailURL}, nil
}
