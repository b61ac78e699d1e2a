// Package http provides the throttled HTTP implementation of
// prodimg.Fetcher. Every request is paced with a jittered delay, capped by
// a process-wide in-flight semaphore, rate limited per host, and retried
// with exponential backoff on transient failures.
package http

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/fwojciec/prodimg"
	"golang.org/x/sync/semaphore"
)

// Defaults for fetch pacing and retry policy.
const (
	DefaultBaseDelay     = 250 * time.Millisecond
	DefaultMaxConcurrent = 6
	DefaultMaxRetries    = 4
	DefaultBackoffBase   = 1 * time.Second
	DefaultUserAgent     = "Mozilla/5.0"

	// Per-attempt timeouts. Text pages get a little longer than binary
	// payloads because search pages on slow retailers are the long tail.
	DefaultTextTimeout  = 25 * time.Second
	DefaultBytesTimeout = 20 * time.Second
)

// Ensure Fetcher implements prodimg.Fetcher at compile time.
var _ prodimg.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves remote content over HTTP. The zero value is not
// usable; construct with NewFetcher.
type Fetcher struct {
	client       *http.Client
	sem          *semaphore.Weighted
	hosts        *hostLimiter
	baseDelay    time.Duration
	backoffBase  time.Duration
	maxRetries   int
	userAgent    string
	textTimeout  time.Duration
	bytesTimeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseDelay sets the jittered pacing delay applied before every
// attempt. Zero disables pacing (useful in tests).
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.baseDelay = d }
}

// WithMaxConcurrent caps simultaneous in-flight requests across all
// callers of this Fetcher.
func WithMaxConcurrent(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxRetries sets the number of retries after the initial attempt.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) { f.maxRetries = n }
}

// WithBackoffBase sets the first retry delay; each retry doubles it.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) { f.backoffBase = d }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithPerHostRPS enables a per-host token-bucket limiter on top of the
// global pacing. Zero or negative disables it.
func WithPerHostRPS(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.hosts = newHostLimiter(rps)
		}
	}
}

// WithTimeouts overrides the per-attempt timeouts for text and binary
// fetches.
func WithTimeouts(text, bytes time.Duration) Option {
	return func(f *Fetcher) {
		f.textTimeout = text
		f.bytesTimeout = bytes
	}
}

// NewFetcher creates a Fetcher with default policy.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		sem:          semaphore.NewWeighted(DefaultMaxConcurrent),
		baseDelay:    DefaultBaseDelay,
		backoffBase:  DefaultBackoffBase,
		maxRetries:   DefaultMaxRetries,
		userAgent:    DefaultUserAgent,
		textTimeout:  DefaultTextTimeout,
		bytesTimeout: DefaultBytesTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText retrieves a page body as text.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	data, err := f.fetch(ctx, url, f.textTimeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchBytes retrieves a binary payload.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, f.bytesTimeout)
}

// fetch runs the attempt loop: pace, attempt, classify, back off.
func (f *Fetcher) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.pace(ctx); err != nil {
			return nil, err
		}

		data, err := f.attempt(ctx, url, timeout)
		if err == nil {
			return data, nil
		}
		lastErr = err

		// Only transient failures are worth another attempt, and a
		// canceled caller never is.
		if prodimg.ErrorCode(err) != prodimg.EUNAVAILABLE || ctx.Err() != nil {
			return nil, err
		}
		if attempt == f.maxRetries {
			break
		}

		if err := sleep(ctx, f.backoff(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// attempt performs one HTTP GET under the concurrency controls.
func (f *Fetcher) attempt(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if f.hosts != nil {
		if err := f.hosts.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.sem.Release(1)

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		// An expired attempt deadline is transient; a canceled
		// caller context is surfaced as-is.
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, prodimg.Errorf(prodimg.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, prodimg.Errorf(prodimg.EUNAVAILABLE, "read %s: %v", url, err)
		}
		return data, nil
	case resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode >= 500:
		return nil, prodimg.Errorf(prodimg.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	default:
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, url)
	}
}

// pace sleeps the base delay randomized by ±20%, independent of retry
// backoff, to avoid bursty request patterns.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.baseDelay <= 0 {
		return nil
	}
	jitter := 0.8 + rand.Float64()*0.4
	return sleep(ctx, time.Duration(float64(f.baseDelay)*jitter))
}

// backoff returns the wait before the next attempt: the base doubled per
// attempt with up to 25% added jitter.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := float64(f.backoffBase) * float64(int64(1)<<attempt)
	return time.Duration(d * (1.0 + rand.Float64()*0.25))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
