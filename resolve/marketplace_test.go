package resolve_test

import (
	"context"
	"testing"

	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/mock"
	"github.com/fwojciec/prodimg/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketplaceResolver(t *testing.T) {
	t.Parallel()

	t.Run("AcceptsQualityImage", func(t *testing.T) {
		t.Parallel()
		r := &resolve.MarketplaceResolver{
			Searcher: &mock.ProductSearcher{
				SearchProductFn: func(ctx context.Context, brand, model string) (*prodimg.ProductResult, error) {
					return &prodimg.ProductResult{
						ASIN:       "B0EXAMPLE1",
						ImageURL:   cdnImage,
						ProductURL: "https://www.amazon.fr/dp/B0EXAMPLE1",
					}, nil
				},
			},
		}

		cand, err := r.Resolve(context.Background(), &prodimg.Machine{Brand: "Samsung", Model: "WF20DG8650BWU3"})
		require.NoError(t, err)
		assert.Equal(t, cdnImage, cand.ImageURL)
		assert.Equal(t, "B0EXAMPLE1", cand.ASIN)
		assert.Equal(t, "https://www.amazon.fr/dp/B0EXAMPLE1", cand.DetailURL)
	})

	t.Run("KeepsIdentifiersWhenImageFailsFilter", func(t *testing.T) {
		t.Parallel()
		r := &resolve.MarketplaceResolver{
			Searcher: &mock.ProductSearcher{
				SearchProductFn: func(ctx context.Context, brand, model string) (*prodimg.ProductResult, error) {
					return &prodimg.ProductResult{
						ASIN:       "B0EXAMPLE1",
						ImageURL:   "https://m.media-amazon.com/images/i/sprite-nav.png",
						ProductURL: "https://www.amazon.fr/dp/B0EXAMPLE1",
					}, nil
				},
			},
		}

		cand, err := r.Resolve(context.Background(), &prodimg.Machine{Brand: "Samsung", Model: "WF20DG8650BWU3"})
		require.NoError(t, err)
		assert.Empty(t, cand.ImageURL)
		assert.Equal(t, "B0EXAMPLE1", cand.ASIN)
	})

	t.Run("PropagatesNoResult", func(t *testing.T) {
		t.Parallel()
		r := &resolve.MarketplaceResolver{
			Searcher: &mock.ProductSearcher{
				SearchProductFn: func(ctx context.Context, brand, model string) (*prodimg.ProductResult, error) {
					return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no search results")
				},
			},
		}

		_, err := r.Resolve(context.Background(), &prodimg.Machine{Brand: "Obscure", Model: "X1"})
		require.Error(t, err)
		assert.Equal(t, prodimg.ENOTFOUND, prodimg.ErrorCode(err))
	})
}
