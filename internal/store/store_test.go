package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"claudecode-es/backend/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store   Store
	advance func(time.Duration)
}

func newMemoryHarness(t *testing.T) harness {
	t.Helper()

	clock := util.NewManualClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s := NewMemory(clock)
	t.Cleanup(func() { _ = s.Close() })

	return harness{store: s, advance: clock.Advance}
}

func newRedisHarness(t *testing.T) harness {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return harness{store: s, advance: mr.FastForward}
}

func forEachStore(t *testing.T, fn func(t *testing.T, h harness)) {
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryHarness(t)) })
	t.Run("redis", func(t *testing.T) { fn(t, newRedisHarness(t)) })
}

func TestSetGetExpires(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		require.NoError(t, h.store.Set(ctx, "k", []byte("v"), time.Minute))

		got, err := h.store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		h.advance(time.Minute + time.Second)

		_, err = h.store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSetWithoutTTLPersists(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		require.NoError(t, h.store.Set(ctx, "user:a@b.co", []byte("{}"), 0))
		h.advance(365 * 24 * time.Hour)

		ok, err := h.store.Exists(ctx, "user:a@b.co")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGetDelConsumesOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		require.NoError(t, h.store.Set(ctx, "magic_link:x", []byte("payload"), time.Minute))

		got, err := h.store.GetDel(ctx, "magic_link:x")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)

		_, err = h.store.GetDel(ctx, "magic_link:x")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = h.store.Get(ctx, "magic_link:x")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelMissingKeyIsNotAnError(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		assert.NoError(t, h.store.Del(context.Background(), "nope"))
	})
}

func TestIncrSetsTTLOnlyOnFirstIncrement(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		n, err := h.store.Incr(ctx, "counter", time.Hour)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		h.advance(50 * time.Minute)

		n, err = h.store.Incr(ctx, "counter", time.Hour)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		raw, err := h.store.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "2", string(raw))

		// the window started at the first increment, not the second
		h.advance(11 * time.Minute)

		ok, err := h.store.Exists(ctx, "counter")
		require.NoError(t, err)
		assert.False(t, ok)

		n, err = h.store.Incr(ctx, "counter", time.Hour)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestIncrBelowStopsAtMax(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		for want := int64(1); want <= 3; want++ {
			n, ok, err := h.store.IncrBelow(ctx, "counter", 3, time.Hour)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want, n)
		}

		n, ok, err := h.store.IncrBelow(ctx, "counter", 3, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.EqualValues(t, 3, n)

		raw, err := h.store.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "3", string(raw))

		h.advance(time.Hour)

		n, ok, err = h.store.IncrBelow(ctx, "counter", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 1, n)
	})
}

func TestIncrBelowConcurrentBurst(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		var (
			wg      sync.WaitGroup
			start   = make(chan struct{})
			allowed atomic.Int64
		)

		for _i := 0; _i < 20; _i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start

				_, ok, err := h.store.IncrBelow(ctx, "burst", 3, time.Hour)
				assert.NoError(t, err)
				if ok {
					allowed.Add(1)
				}
			}()
		}

		close(start)
		wg.Wait()

		assert.EqualValues(t, 3, allowed.Load())

		raw, err := h.store.Get(ctx, "burst")
		require.NoError(t, err)
		assert.Equal(t, "3", string(raw))
	})
}

func TestSets(t *testing.T) {
	forEachStore(t, func(t *testing.T, h harness) {
		ctx := context.Background()

		members, err := h.store.SMembers(ctx, UserEmailsKey)
		require.NoError(t, err)
		assert.Empty(t, members)

		for _, m := range []string{"b@x.io", "a@x.io", "b@x.io"} {
			require.NoError(t, h.store.SAdd(ctx, UserEmailsKey, m))
		}

		members, err = h.store.SMembers(ctx, UserEmailsKey)
		require.NoError(t, err)
		sort.Strings(members)
		assert.Equal(t, []string{"a@x.io", "b@x.io"}, members)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "magic_link:t", MagicLinkKey("t"))
	assert.Equal(t, "session:t", SessionKey("t"))
	assert.Equal(t, "user:a@b.co", UserKey("a@b.co"))
	assert.Equal(t, "rate_limit:magic_link:a@b.co", MagicLinkRateLimitKey("a@b.co"))
	assert.Equal(t, "ralph_loop:a@b.co", PurchaseKey("ralph_loop", "a@b.co"))
}
