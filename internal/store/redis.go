package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	C *redis.Client
}

// NewRedis connects to redis and makes sure it answers before returning
func NewRedis(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	c := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s, %w", opts.Addr, err)
	}

	return &RedisStore{C: c}, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.C.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.C.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	return b, err
}

func (r *RedisStore) GetDel(ctx context.Context, key string) ([]byte, error) {
	b, err := r.C.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	return b, err
}

func (r *RedisStore) Del(ctx context.Context, key string) error {
	return r.C.Del(ctx, key).Err()
}

// Both scripts set the expiry in the same step as the first increment so a
// counter can never be left without one.
var (
	incrScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 and tonumber(ARGV[1]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

	incrBelowScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n >= tonumber(ARGV[1]) then
	return {n, 0}
end
n = redis.call('INCR', KEYS[1])
if n == 1 and tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {n, 1}
`)
)

func (r *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := incrScript.Run(ctx, r.C, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s, %w", key, err)
	}

	return n, nil
}

func (r *RedisStore) IncrBelow(ctx context.Context, key string, max int64, ttl time.Duration) (int64, bool, error) {
	res, err := incrBelowScript.Run(ctx, r.C, []string{key}, max, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment %s, %w", key, err)
	}

	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected reply incrementing %s", key)
	}

	return res[0], res[1] == 1, nil
}

func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.C.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *RedisStore) SAdd(ctx context.Context, key, member string) error {
	return r.C.SAdd(ctx, key, member).Err()
}

func (r *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return r.C.SMembers(ctx, key).Result()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.C.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.C.Close()
}
