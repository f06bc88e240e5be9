package ratelimit

import "context"

// RateLimiter enforces a per-key send rate. Keys identify the scope
// being throttled, such as an organization.
type RateLimiter interface {
	// Allow reports whether one more send is permitted for the key
	// in the current window.
	Allow(ctx context.Context, key string) (bool, error)

	// Wait blocks until a send is permitted for the key or the
	// context is done.
	Wait(ctx context.Context, key string) error
}
