package cache

import (
	"context"
	"testing"
	"time"

	"mealmind/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestManager(maxSize int, ttl time.Duration) (*Manager, *fakeNow) {
	clock := &fakeNow{t: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
	return newManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl}, clock.now), clock
}

func TestManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(4, time.Minute)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestManagerExpires(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(4, time.Minute)
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))

	clock.t = clock.t.Add(2 * time.Minute)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Stats().Size)
}

func TestManagerPerEntryTTL(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(4, time.Minute)
	require.NoError(t, m.Set(ctx, "long", []byte("v"), time.Hour))
	require.NoError(t, m.Set(ctx, "default", []byte("v"), 0))

	clock.t = clock.t.Add(2 * time.Minute)
	_, err := m.Get(ctx, "long")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "default")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3"), 0))
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, m.Stats().Size)
}

func TestManagerOverwriteAtCapacity(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(1, time.Hour)
	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "a", []byte("2"), 0))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	assert.Zero(t, m.Stats().Evictions)
}

func TestKeyIsStable(t *testing.T) {
	a := Key("mealdb:search", "dal chawal")
	assert.Equal(t, a, Key("mealdb:search", "dal chawal"))
	assert.NotEqual(t, a, Key("mealdb:search", "dal"))
	assert.Contains(t, a, "mealdb:search:")
}

func TestNewByBackend(t *testing.T) {
	store, err := New(&config.Config{Cache: config.CacheConfig{Enabled: false}})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, store)

	store, err = New(&config.Config{Cache: config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 10, TTL: time.Minute}})
	require.NoError(t, err)
	assert.IsType(t, &Manager{}, store)
	require.NoError(t, store.Close())

	_, err = New(&config.Config{Cache: config.CacheConfig{Enabled: true, Backend: "disk"}})
	assert.Error(t, err)
}
