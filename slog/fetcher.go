// Package slog provides logging decorators for prodimg services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodimg"
)

// Ensure LoggingFetcher implements prodimg.Fetcher.
var _ prodimg.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   prodimg.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next prodimg.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchText delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) FetchText(ctx context.Context, url string) (body string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch text",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchText(ctx, url)
}

// FetchBytes delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) FetchBytes(ctx context.Context, url string) (data []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch bytes",
			"url", url,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchBytes(ctx, url)
}
