package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodimg"
)

// Ensure LoggingSourceResolver implements prodimg.SourceResolver.
var _ prodimg.SourceResolver = (*LoggingSourceResolver)(nil)

// LoggingSourceResolver wraps a SourceResolver with debug logging.
type LoggingSourceResolver struct {
	next   prodimg.SourceResolver
	logger *slog.Logger
}

// NewLoggingSourceResolver creates a new LoggingSourceResolver.
func NewLoggingSourceResolver(next prodimg.SourceResolver, logger *slog.Logger) *LoggingSourceResolver {
	return &LoggingSourceResolver{next: next, logger: logger}
}

// Name delegates to the wrapped resolver.
func (r *LoggingSourceResolver) Name() string {
	return r.next.Name()
}

// Resolve delegates to the wrapped resolver and logs the probe.
func (r *LoggingSourceResolver) Resolve(ctx context.Context, machine *prodimg.Machine) (cand *prodimg.Candidate, err error) {
	defer func(begin time.Time) {
		var imageURL string
		if cand != nil {
			imageURL = cand.ImageURL
		}
		r.logger.Debug("source probe",
			"source", r.next.Name(),
			"machine", machine.Label(),
			"image", imageURL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, machine)
}
