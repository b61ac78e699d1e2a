package http

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter provides per-host rate limiting using token buckets. Each
// host gets its own limiter with a burst of 1, so concurrent requests to
// different hosts proceed while requests within one host are spaced out.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

func newHostLimiter(rps float64) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the URL's host.
// URLs that fail to parse are not limited; the request itself will fail
// with a clearer error.
func (h *hostLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}

	h.mu.Lock()
	limiter, ok := h.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[u.Host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
