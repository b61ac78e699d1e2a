package resolve

import (
	"context"

	"github.com/fwojciec/prodimg"
)

// StoredResolver replays a machine's previously recorded image URL, so a
// run without external lookups can still download and validate images
// discovered by earlier enrichment.
type StoredResolver struct{}

var _ prodimg.SourceResolver = (*StoredResolver)(nil)

// Name implements prodimg.SourceResolver.
func (s *StoredResolver) Name() string { return "stored" }

// Resolve implements prodimg.SourceResolver.
func (s *StoredResolver) Resolve(_ context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
	if m.ImageURL == "" {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no image URL recorded for %s", m.Label())
	}
	return &prodimg.Candidate{Source: s.Name(), ImageURL: m.ImageURL}, nil
}
