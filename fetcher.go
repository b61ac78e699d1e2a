package prodimg

import "context"

// Fetcher retrieves remote content with pacing, concurrency limiting, and
// retry on transient failures. All resolution traffic flows through a
// single shared Fetcher: its in-flight cap is the pipeline's backpressure
// boundary.
type Fetcher interface {
	// FetchText retrieves a page body as text.
	// Returns EUNAVAILABLE when the retry budget is exhausted on
	// transient failures and ENOTFOUND on fatal HTTP statuses.
	FetchText(ctx context.Context, url string) (string, error)

	// FetchBytes retrieves a binary payload.
	// Error semantics match FetchText.
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
