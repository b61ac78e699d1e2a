package mock

import (
	"context"

	"github.com/fwojciec/prodimg"
)

var _ prodimg.SourceResolver = (*SourceResolver)(nil)

// SourceResolver is a mock implementation of prodimg.SourceResolver.
type SourceResolver struct {
	NameFn    func() string
	ResolveFn func(ctx context.Context, machine *prodimg.Machine) (*prodimg.Candidate, error)
}

func (r *SourceResolver) Name() string {
	if r.NameFn == nil {
		return "mock"
	}
	return r.NameFn()
}

func (r *SourceResolver) Resolve(ctx context.Context, machine *prodimg.Machine) (*prodimg.Candidate, error) {
	return r.ResolveFn(ctx, machine)
}

var _ prodimg.ProductSearcher = (*ProductSearcher)(nil)

// ProductSearcher is a mock implementation of prodimg.ProductSearcher.
type ProductSearcher struct {
	SearchProductFn func(ctx context.Context, brand, model string) (*prodimg.ProductResult, error)
}

func (s *ProductSearcher) SearchProduct(ctx context.Context, brand, model string) (*prodimg.ProductResult, error) {
	return s.SearchProductFn(ctx, brand, model)
}

var _ prodimg.ImageExtractor = (*ImageExtractor)(nil)

// ImageExtractor is a mock implementation of prodimg.ImageExtractor.
type ImageExtractor struct {
	ExtractImageFn func(html string) (string, bool)
}

func (e *ImageExtractor) ExtractImage(html string) (string, bool) {
	return e.ExtractImageFn(html)
}
