// Package limiter defines interfaces and implementations for outbound request pacing.
package limiter

import "context"

// Limiter paces requests sent to the remote API.
type Limiter interface {
	// Wait blocks until one request may be sent or ctx is done.
	Wait(ctx context.Context) error
}
