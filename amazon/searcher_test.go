package amazon_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/amazon"
	"github.com/fwojciec/prodimg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchPage builds a plausible results-page fixture padded past the
// sanity threshold.
func searchPage(cards string) string {
	return `<html><head><title>Amazon.fr : samsung</title></head><body>` +
		cards + strings.Repeat("<!-- filler -->", 100) + `</body></html>`
}

func textFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchTextFn: func(ctx context.Context, url string) (string, error) {
			page, ok := pages[url]
			if !ok {
				return "", prodimg.Errorf(prodimg.ENOTFOUND, "HTTP 404 for %s", url)
			}
			return page, nil
		},
	}
}

func TestSearcher_SearchProduct(t *testing.T) {
	t.Parallel()

	t.Run("returns the first product card", func(t *testing.T) {
		t.Parallel()

		page := searchPage(`
			<div data-asin=""><span>sponsored separator</span></div>
			<div data-asin="B0ABCDE123">
				<h2><span>Samsung WF20DG8650BWU3 Lave-linge</span></h2>
				<img class="s-image" src="https://m.media-amazon.com/images/I/81p.jpg">
				<span class="a-price-whole">549,</span>
			</div>
			<div data-asin="B0ZZZZZ999"><h2><span>other</span></h2></div>`)

		fetcher := textFetcher(map[string]string{
			"https://www.amazon.fr/s?k=Samsung+WF20DG8650BWU3": page,
		})
		searcher := amazon.NewSearcher(fetcher)

		result, err := searcher.SearchProduct(context.Background(), "Samsung", "WF20DG8650BWU3")
		require.NoError(t, err)
		assert.Equal(t, "B0ABCDE123", result.ASIN)
		assert.Equal(t, "Samsung WF20DG8650BWU3 Lave-linge", result.Title)
		assert.Equal(t, "https://m.media-amazon.com/images/I/81p.jpg", result.ImageURL)
		assert.Equal(t, "https://www.amazon.fr/dp/B0ABCDE123", result.ProductURL)
		assert.InDelta(t, 549.0, result.Price, 0.001)
	})

	t.Run("returns ENOTFOUND when no card matches", func(t *testing.T) {
		t.Parallel()

		fetcher := textFetcher(map[string]string{
			"https://www.amazon.fr/s?k=Samsung+XYZ": searchPage(`<div>no results</div>`),
		})
		searcher := amazon.NewSearcher(fetcher)

		_, err := searcher.SearchProduct(context.Background(), "Samsung", "XYZ")
		require.Error(t, err)
		assert.Equal(t, prodimg.ENOTFOUND, prodimg.ErrorCode(err))
	})

	t.Run("rejects interstitial pages", func(t *testing.T) {
		t.Parallel()

		fetcher := textFetcher(map[string]string{
			"https://www.amazon.fr/s?k=Samsung+XYZ": "<html>tiny</html>",
		})
		searcher := amazon.NewSearcher(fetcher)

		_, err := searcher.SearchProduct(context.Background(), "Samsung", "XYZ")
		require.Error(t, err)
		assert.Equal(t, prodimg.ENOTFOUND, prodimg.ErrorCode(err))
	})

	t.Run("requires a query", func(t *testing.T) {
		t.Parallel()

		searcher := amazon.NewSearcher(textFetcher(nil))
		_, err := searcher.SearchProduct(context.Background(), "", "")
		require.Error(t, err)
		assert.Equal(t, prodimg.EINVALID, prodimg.ErrorCode(err))
	})

	t.Run("propagates fetch failures", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchTextFn: func(ctx context.Context, url string) (string, error) {
				return "", prodimg.Errorf(prodimg.EUNAVAILABLE, "HTTP 503 for %s", url)
			},
		}
		searcher := amazon.NewSearcher(fetcher)

		_, err := searcher.SearchProduct(context.Background(), "Samsung", "XYZ")
		require.Error(t, err)
		assert.Equal(t, prodimg.EUNAVAILABLE, prodimg.ErrorCode(err))
	})

	t.Run("affiliate tag lands on every URL", func(t *testing.T) {
		t.Parallel()

		var requested string
		fetcher := &mock.Fetcher{
			FetchTextFn: func(ctx context.Context, url string) (string, error) {
				requested = url
				return searchPage(`<div data-asin="B0ABCDE123"></div>`), nil
			},
		}
		searcher := amazon.NewSearcher(fetcher, amazon.WithAffiliateTag("shop-21"))

		result, err := searcher.SearchProduct(context.Background(), "Samsung", "XYZ")
		require.NoError(t, err)
		assert.Contains(t, requested, "&tag=shop-21")
		assert.Equal(t, "https://www.amazon.fr/dp/B0ABCDE123?tag=shop-21", result.ProductURL)
	})
}
