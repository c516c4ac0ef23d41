package limiter

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Memory is an in-process limiter for single-instance deployments and tests.
// Idle entries are evicted once neither the window nor a block can apply.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	entries *cache.Cache
}

type memEntry struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(p Policy) *Memory {
	ttl := max(p.Window, p.BlockFor)
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Memory{policy: p, now: time.Now, entries: cache.New(ttl, ttl)}
}

func key(email string, ipHash []byte) string { return email + "\x00" + string(ipHash) }

func (m *Memory) get(k string) (memEntry, bool) {
	v, ok := m.entries.Get(k)
	if !ok {
		return memEntry{}, false
	}
	return v.(memEntry), true
}

func (m *Memory) Allow(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(key(email, ipHash))
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

func (m *Memory) Success(_ context.Context, email string, ipHash []byte) error {
	m.mu.Lock()
	m.entries.Delete(key(email, ipHash))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Failure(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := key(email, ipHash)
	e, ok := m.get(k)
	if !ok || now.Sub(e.updatedAt) > m.policy.Window {
		e = memEntry{}
	}
	e.fails++
	e.updatedAt = now
	blocked := e.fails >= m.policy.MaxFails
	if blocked {
		e.blockedUntil = now.Add(m.policy.BlockFor)
	}
	m.entries.SetDefault(k, e)
	if !blocked {
		return false, 0, nil
	}
	return true, m.policy.BlockFor, nil
}
