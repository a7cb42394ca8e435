package session

import (
	"context"
	"testing"
	"time"

	"religion-map/internal/mapview"
	"religion-map/internal/religion"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = mapview.State{Selected: "356", Filter: religion.Filter(religion.Hinduism)}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, ValidID(a))
	assert.False(t, ValidID("../../etc"))
	assert.False(t, ValidID(""))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(4, time.Hour)
	_, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "a", sample))
	got, ok, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sample, got)
}

func TestMemoryStoreEvicts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, time.Hour)
	require.NoError(t, s.Save(ctx, "a", sample))
	require.NoError(t, s.Save(ctx, "b", sample))
	_, _, _ = s.Load(ctx, "a")
	require.NoError(t, s.Save(ctx, "c", sample))

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Load(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = s.Load(ctx, "a")
	assert.True(t, ok)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 50*time.Millisecond)
	require.NoError(t, s.Save(ctx, "a", sample))
	_, ok, _ := s.Load(ctx, "a")
	assert.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	_, ok, _ = s.Load(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryStoreSaveResetsTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 200*time.Millisecond)
	require.NoError(t, s.Save(ctx, "a", sample))
	time.Sleep(120 * time.Millisecond)
	next := mapview.State{Selected: "156", Filter: religion.FilterAll}
	require.NoError(t, s.Save(ctx, "a", next))
	time.Sleep(120 * time.Millisecond)

	got, ok, _ := s.Load(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, next, got)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	ctx := context.Background()
	s := NewRedisStore(rc, time.Minute)

	_, ok, err := s.Load(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "x", sample))
	assert.True(t, mr.Exists("session:x"))
	assert.Equal(t, time.Minute, mr.TTL("session:x"))

	got, ok, err := s.Load(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sample, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Load(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreCorrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	require.NoError(t, mr.Set("session:bad", "{not json"))
	_, _, err := NewRedisStore(rc, time.Minute).Load(context.Background(), "bad")
	assert.Error(t, err)
}
