package services

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedTransport paces outgoing requests with a token bucket. It never retries.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// NewRateLimitedTransport allows rps requests per second (burst 1) through base.
// A non-positive rps lets every request through.
func NewRateLimitedTransport(base http.RoundTripper, rps float64) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimitedTransport{Base: base, Limiter: rate.NewLimiter(limit, 1)}
}

// RoundTrip waits for a token, then delegates to Base.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.Base.RoundTrip(req)
}
