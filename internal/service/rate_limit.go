package service

import (
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/validators"
	"context"
	"fmt"
	"time"
)

const (
	DefaultMagicLinkLimit  = 3
	DefaultMagicLinkWindow = time.Hour
)

// RateLimiter caps magic link requests per email. The window is fixed: it
// starts with the first request and only resets once the counter key expires.
type RateLimiter struct {
	store  store.Store
	max    int
	window time.Duration
}

func NewRateLimiter(s store.Store, max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = DefaultMagicLinkLimit
	}

	if window <= 0 {
		window = DefaultMagicLinkWindow
	}

	return &RateLimiter{
		store:  s,
		max:    max,
		window: window,
	}
}

// RetryAfter is the hint given to rejected clients, in seconds
func (r *RateLimiter) RetryAfter() int {
	return int(r.window / time.Second)
}

// CheckAndConsume returns whether another request is allowed for email and
// how many are left afterwards. Rejected attempts don't touch the counter.
func (r *RateLimiter) CheckAndConsume(ctx context.Context, email string) (allowed bool, remaining int, err error) {
	key := store.MagicLinkRateLimitKey(validators.NormalizeEmail(email))

	n, ok, err := r.store.IncrBelow(ctx, key, int64(r.max), r.window)
	if err != nil {
		return false, 0, fmt.Errorf("failed to consume rate limit, %w", err)
	}

	if !ok {
		return false, 0, nil
	}

	return true, max(r.max-int(n), 0), nil
}
