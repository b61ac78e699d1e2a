package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/mock"
	prodimgslog "github.com/fwojciec/prodimg/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebugLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

func TestLoggingFetcher_FetchText(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		logger, buf := newDebugLogger()
		inner := &mock.Fetcher{
			FetchTextFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := prodimgslog.NewLoggingFetcher(inner, logger)
		html, err := fetcher.FetchText(context.Background(), "https://www.bosch-home.fr/recherche")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "fetch text")
		assert.Contains(t, output, "url=https://www.bosch-home.fr/recherche")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		logger, buf := newDebugLogger()
		inner := &mock.Fetcher{
			FetchTextFn: func(ctx context.Context, url string) (string, error) {
				return "", prodimg.Errorf(prodimg.EUNAVAILABLE, "retry budget exhausted")
			},
		}

		fetcher := prodimgslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.FetchText(context.Background(), "https://www.bosch-home.fr/recherche")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "retry budget exhausted")
	})
}

func TestLoggingFetcher_FetchBytes(t *testing.T) {
	t.Parallel()

	logger, buf := newDebugLogger()
	inner := &mock.Fetcher{
		FetchBytesFn: func(ctx context.Context, url string) ([]byte, error) {
			return []byte{0xff, 0xd8, 0xff}, nil
		},
	}

	fetcher := prodimgslog.NewLoggingFetcher(inner, logger)
	data, err := fetcher.FetchBytes(context.Background(), "https://m.media-amazon.com/images/I/81abc.jpg")

	require.NoError(t, err)
	assert.Len(t, data, 3)
	output := buf.String()
	assert.Contains(t, output, "fetch bytes")
	assert.Contains(t, output, "bytes=3")
}

func TestLoggingSourceResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("logs successful probe", func(t *testing.T) {
		t.Parallel()

		logger, buf := newDebugLogger()
		inner := &mock.SourceResolver{
			NameFn: func() string { return "vendor" },
			ResolveFn: func(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
				return &prodimg.Candidate{Source: "vendor", ImageURL: "https://media.bosch-home.fr/waw.jpg"}, nil
			},
		}

		r := prodimgslog.NewLoggingSourceResolver(inner, logger)
		assert.Equal(t, "vendor", r.Name())

		cand, err := r.Resolve(context.Background(), &prodimg.Machine{Brand: "Bosch", Model: "WAW28740"})
		require.NoError(t, err)
		assert.Equal(t, "https://media.bosch-home.fr/waw.jpg", cand.ImageURL)

		output := buf.String()
		assert.Contains(t, output, "source probe")
		assert.Contains(t, output, "source=vendor")
		assert.Contains(t, output, "machine=\"Bosch WAW28740\"")
	})

	t.Run("logs miss", func(t *testing.T) {
		t.Parallel()

		logger, buf := newDebugLogger()
		inner := &mock.SourceResolver{
			NameFn: func() string { return "retailer" },
			ResolveFn: func(ctx context.Context, m *prodimg.Machine) (*prodimg.Candidate, error) {
				return nil, prodimg.Errorf(prodimg.ENOTFOUND, "no retailer image found")
			},
		}

		r := prodimgslog.NewLoggingSourceResolver(inner, logger)
		_, err := r.Resolve(context.Background(), &prodimg.Machine{Brand: "Bosch", Model: "WAW28740"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "no retailer image found")
	})
}
