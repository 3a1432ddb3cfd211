package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aeeconecta/aee-service/internal/cache"
)

// RedisStore keeps sessions in redis through the session cache helper. Each
// RF also has a set of its tokens so its sessions can be revoked together.
type RedisStore struct {
	helper *cache.CacheHelper
	ttl    time.Duration
}

func NewRedisStore(helper *cache.CacheHelper, ttl time.Duration) *RedisStore {
	return &RedisStore{helper: helper, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if err := r.helper.Set(ctx, s.Token, s, r.ttl); err != nil {
		return err
	}
	if s.RF == "" {
		return nil
	}
	return r.helper.AddToSet(ctx, rfIndexKey(s.RF), r.ttl, s.Token)
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	var s Session
	if err := r.helper.Get(ctx, token, &s); err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.helper.Delete(ctx, token)
}

func (r *RedisStore) DeleteByRF(ctx context.Context, rf string) error {
	tokens, err := r.helper.SetMembers(ctx, rfIndexKey(rf))
	if err != nil {
		return err
	}
	return r.helper.Delete(ctx, append(tokens, rfIndexKey(rf))...)
}

func rfIndexKey(rf string) string {
	return "rf:" + rf
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is a process-local store used when redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Token] = memoryEntry{session: *s, expiresAt: m.now().Add(m.ttl)}
	m.sweep()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, token)
		return nil, ErrSessionNotFound
	}
	s := entry.session
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) DeleteByRF(_ context.Context, rf string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, entry := range m.sessions {
		if entry.session.RF == rf {
			delete(m.sessions, token)
		}
	}
	return nil
}

// sweep drops expired entries; callers hold mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for token, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, token)
		}
	}
}

// NewStore picks the redis store when the cache helper is backed by redis. A
// non-positive ttl falls back to the session cache default.
func NewStore(helper *cache.CacheHelper, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = cache.SessionCacheConfig.TTL
	}
	if helper.Enabled() {
		return NewRedisStore(helper, ttl)
	}
	return NewMemoryStore(ttl)
}
