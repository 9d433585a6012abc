// Package store is the key-value layer behind tokens, sessions, user records
// and rate limit counters. Every key may carry a TTL after which it's gone.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Store is implemented by RedisStore in production and MemoryStore for local
// development and tests. A ttl of 0 means the key never expires.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDel returns the value and removes the key in one atomic step
	GetDel(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error

	// Incr atomically increments the counter at key. The ttl is applied only
	// when the increment created the key.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// IncrBelow increments the counter at key only while it's below max, in
	// one atomic step. ok is false and the counter untouched once max is
	// reached. The ttl is applied only when the increment created the key.
	IncrBelow(ctx context.Context, key string, max int64, ttl time.Duration) (n int64, ok bool, err error)
	Exists(ctx context.Context, key string) (bool, error)

	SAdd(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

const UserEmailsKey = "users:emails"

func MagicLinkKey(token string) string {
	return "magic_link:" + token
}

func SessionKey(token string) string {
	return "session:" + token
}

func UserKey(email string) string {
	return "user:" + email
}

func MagicLinkRateLimitKey(email string) string {
	return "rate_limit:magic_link:" + email
}

// PurchaseKey is written by the payment webhooks, one namespace per product
func PurchaseKey(product, email string) string {
	return product + ":" + email
}
