package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Rate is a token-bucket limiter shared by all workers of a process.
type Rate struct {
	l *rate.Limiter
}

// NewRate constructs a limiter allowing rps requests per second with the given burst.
// rps <= 0 disables pacing.
func NewRate(rps float64, burst int) *Rate {
	lim := rate.Inf
	if rps > 0 {
		lim = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Rate{l: rate.NewLimiter(lim, burst)}
}

// Wait blocks until a token is available.
func (r *Rate) Wait(ctx context.Context) error {
	return r.l.Wait(ctx)
}

// Nop never blocks.
type Nop struct{}

// Wait returns ctx.Err() only.
func (Nop) Wait(ctx context.Context) error { return ctx.Err() }
