package prodimg

import "context"

// Candidate is an unvalidated image discovered by a source resolver.
// It exists only within one waterfall step.
type Candidate struct {
	// Source names the resolver that produced the candidate.
	Source string

	// ImageURL is the candidate image location.
	ImageURL string

	// DetailURL is the product detail page the image came from, if any.
	DetailURL string

	// ASIN is the marketplace identifier, when the source knows one.
	ASIN string
}

// SourceResolver tries to find one acceptable image candidate for a
// machine from a single external source kind.
//
// Returns ENOTFOUND when the source yields no candidate (expected outcome,
// the caller falls through to the next source) and EUNAVAILABLE when the
// source was unreachable after retries (also falls through).
type SourceResolver interface {
	// Name identifies the source kind for logging and provenance.
	Name() string

	// Resolve probes the source for an image candidate.
	Resolve(ctx context.Context, machine *Machine) (*Candidate, error)
}

// ProductResult is returned by a marketplace product search.
type ProductResult struct {
	ASIN       string  `json:"asin"`
	Title      string  `json:"title"`
	ImageURL   string  `json:"imageUrl"`
	ProductURL string  `json:"productUrl"`
	Price      float64 `json:"price"`
}

// ProductSearcher searches a marketplace for a product by brand and model.
// Returns ENOTFOUND when no product matches.
type ProductSearcher interface {
	SearchProduct(ctx context.Context, brand, model string) (*ProductResult, error)
}
