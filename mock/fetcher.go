package mock

import (
	"context"

	"github.com/fwojciec/prodimg"
)

var _ prodimg.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of prodimg.Fetcher.
type Fetcher struct {
	FetchTextFn  func(ctx context.Context, url string) (string, error)
	FetchBytesFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	return f.FetchTextFn(ctx, url)
}

func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return f.FetchBytesFn(ctx, url)
}
