package prodimg

// ImageExtractor extracts a candidate image URL from raw HTML using a
// single heuristic. Implementations are pure and report a miss rather
// than an error when the page doesn't match their pattern.
type ImageExtractor interface {
	// ExtractImage returns the image URL and true on a match.
	ExtractImage(html string) (string, bool)
}

// Extractors tries a prioritized chain of extraction strategies and
// returns the first URL that passes the product-image quality filter.
// Later strategies are skipped once one matches.
type Extractors []ImageExtractor

// ExtractImage implements ImageExtractor over the chain.
func (e Extractors) ExtractImage(html string) (string, bool) {
	for _, x := range e {
		if url, ok := x.ExtractImage(html); ok && IsProductImageURL(url) {
			return url, true
		}
	}
	return "", false
}
