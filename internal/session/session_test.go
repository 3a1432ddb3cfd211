package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeeconecta/aee-service/internal/cache"
	"github.com/aeeconecta/aee-service/internal/models"
)

func TestSession_Transitions(t *testing.T) {
	s := New()
	assert.Equal(t, StateLoggedOut, s.State)
	assert.NotEmpty(t, s.Token)

	require.NoError(t, s.AwaitPasswordSet("123"))
	assert.True(t, s.AwaitingPasswordSet())
	assert.False(t, s.Can(models.PermFileReport))
	assert.ErrorIs(t, s.AwaitPasswordSet("123"), ErrInvalidSessionState)

	err := s.LogIn(&models.Professor{RF: "999", Nome: "Outro"})
	assert.ErrorIs(t, err, ErrInvalidSessionState)

	require.NoError(t, s.LogIn(&models.Professor{RF: "123", Nome: "Ana", Perfil: "Gestora"}))
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, models.RoleManager, s.Role)
	assert.True(t, s.Can(models.PermExport))
	assert.ErrorIs(t, s.LogIn(&models.Professor{RF: "123"}), ErrInvalidSessionState)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	s := New()
	require.NoError(t, s.LogIn(&models.Professor{RF: "1", Nome: "Ana"}))
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Nome)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cm := cache.NewCacheManager(client)
	ctx := context.Background()

	store := NewStore(cm.Session, time.Hour)
	require.IsType(t, &RedisStore{}, store)

	s := New()
	require.NoError(t, s.AwaitPasswordSet("42"))
	require.NoError(t, store.Save(ctx, s))
	assert.True(t, mr.Exists("session:"+s.Token))

	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPasswordSet, got.State)
	assert.Equal(t, "42", got.RF)

	require.NoError(t, store.Delete(ctx, s.Token))
	_, err = store.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.IsType(t, &MemoryStore{}, NewStore(cache.NewCacheManager(nil).Session, time.Hour))
}

func TestStores_DeleteByRF(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  NewRedisStore(cache.NewCacheManager(client).Session, time.Hour),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, second, other := New(), New(), New()
			require.NoError(t, first.LogIn(&models.Professor{RF: "7", Nome: "Ana"}))
			require.NoError(t, second.AwaitPasswordSet("7"))
			require.NoError(t, other.LogIn(&models.Professor{RF: "8", Nome: "Gil"}))
			for _, s := range []*Session{first, second, other} {
				require.NoError(t, store.Save(ctx, s))
			}

			require.NoError(t, store.DeleteByRF(ctx, "7"))

			_, err := store.Get(ctx, first.Token)
			assert.ErrorIs(t, err, ErrSessionNotFound)
			_, err = store.Get(ctx, second.Token)
			assert.ErrorIs(t, err, ErrSessionNotFound)
			got, err := store.Get(ctx, other.Token)
			require.NoError(t, err)
			assert.Equal(t, "8", got.RF)

			require.NoError(t, store.DeleteByRF(ctx, "404"))
		})
	}
}

func TestNewStore_DefaultTTL(t *testing.T) {
	store := NewStore(cache.NewCacheManager(nil).Session, 0)
	mem, ok := store.(*MemoryStore)
	require.True(t, ok)
	assert.Equal(t, cache.SessionCacheConfig.TTL, mem.ttl)
}
