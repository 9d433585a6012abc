package store

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"claudecode-es/backend/pkg/util"

	"github.com/jellydator/ttlcache/v2"
)

type entry struct {
	value     []byte
	members   map[string]struct{}
	expiresAt time.Time
}

// MemoryStore keeps everything in process. Expiry is checked against the
// clock on every read so tests can move time forward; ttlcache takes care of
// actually freeing the memory.
type MemoryStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache
	clock util.Clock
}

func NewMemory(clock util.Clock) *MemoryStore {
	if clock == nil {
		clock = util.RealClock{}
	}

	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryStore{
		cache: c,
		clock: clock,
	}
}

// load must be called with mu held
func (m *MemoryStore) load(key string) (*entry, bool) {
	v, err := m.cache.Get(key)
	if err != nil {
		return nil, false
	}

	e := v.(*entry)
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		m.cache.Remove(key)
		return nil, false
	}

	return e, true
}

// save must be called with mu held
func (m *MemoryStore) save(key string, e *entry) error {
	var ttl time.Duration
	if !e.expiresAt.IsZero() {
		ttl = e.expiresAt.Sub(m.clock.Now())
	}

	return m.cache.SetWithTTL(key, e, ttl)
}

func (m *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return m.clock.Now().Add(ttl)
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save(key, &entry{
		value:     slices.Clone(value),
		expiresAt: m.expiry(ttl),
	})
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok || e.members != nil {
		return nil, ErrNotFound
	}

	return slices.Clone(e.value), nil
}

func (m *MemoryStore) GetDel(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok || e.members != nil {
		return nil, ErrNotFound
	}

	m.cache.Remove(key)
	return e.value, nil
}

func (m *MemoryStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.cache.Remove(key)
	if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return err
	}

	return nil
}

func (m *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.incr(key, ttl)
}

func (m *MemoryStore) IncrBelow(_ context.Context, key string, max int64, ttl time.Duration) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.load(key); ok {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, false, errors.New("value is not an integer")
		}

		if n >= max {
			return n, false, nil
		}
	} else if max <= 0 {
		return 0, false, nil
	}

	n, err := m.incr(key, ttl)
	if err != nil {
		return 0, false, err
	}

	return n, true, nil
}

// incr must be called with mu held
func (m *MemoryStore) incr(key string, ttl time.Duration) (int64, error) {
	e, ok := m.load(key)
	if !ok {
		e = &entry{
			value:     []byte("0"),
			expiresAt: m.expiry(ttl),
		}
	}

	n, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		return 0, errors.New("value is not an integer")
	}

	n++
	e.value = []byte(strconv.FormatInt(n, 10))

	if err := m.save(key, e); err != nil {
		return 0, err
	}

	return n, nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.load(key)
	return ok, nil
}

func (m *MemoryStore) SAdd(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		e = &entry{members: make(map[string]struct{})}
	}

	if e.members == nil {
		return errors.New("value is not a set")
	}

	e.members[member] = struct{}{}
	return m.save(key, e)
}

func (m *MemoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.load(key)
	if !ok {
		return []string{}, nil
	}

	out := make([]string, 0, len(e.members))
	for k := range e.members {
		out = append(out, k)
	}

	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return m.cache.Close()
}
