package resolve

import (
	"context"

	"github.com/fwojciec/prodimg"
)

// MarketplaceResolver delegates to a marketplace product search. The
// result's identifiers are always worth keeping as provenance; the
// search-result image is accepted only when it passes the product-image
// quality filter, since search thumbnails are sometimes sprites or
// placeholders. A candidate without an image still carries identifiers
// the detail refinement step can follow.
type MarketplaceResolver struct {
	Searcher prodimg.ProductSearcher
}

var _ prodimg.SourceResolver = (*MarketplaceResolver)(nil)

// Name implements prodimg.SourceResolver.
func (r *MarketplaceResolver) Name() string { return "marketplace" }

// Resolve implements prodimg.SourceResolver.
func (r *MarketplaceResolver) Resolve(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
	res, err := r.Searcher.SearchProduct(ctx, m.Brand, m.Model)
	if err != nil {
		return nil, err
	}

	cand := &prodimg.Candidate{
		Source:    r.Name(),
		DetailURL: res.ProductURL,
		ASIN:      res.ASIN,
	}
	if prodimg.IsProductImageURL(res.ImageURL) {
		cand.ImageURL = res.ImageURL
	}
	return cand, nil
}
