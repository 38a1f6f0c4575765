package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCourse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Catalog.Set(ctx, "list:go:1:20", []cachedCourse{{ID: "c1", Title: "Go"}}, time.Minute))
	assert.True(t, mr.Exists("catalog:list:go:1:20"))

	var got []cachedCourse
	require.NoError(t, cm.Catalog.Get(ctx, "list:go:1:20", &got))
	assert.Equal(t, []cachedCourse{{ID: "c1", Title: "Go"}}, got)

	err := cm.Catalog.Get(ctx, "list:missing", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &cachedCourse{ID: "c1", Title: "Go"}, nil
	}

	var first cachedCourse
	require.NoError(t, cm.Catalog.CacheOrExecute(ctx, "id:c1", &first, time.Minute, fetch))
	assert.Equal(t, "Go", first.Title)
	assert.Equal(t, 1, calls)

	// the write-back is asynchronous
	assert.Eventually(t, func() bool { return mr.Exists("catalog:id:c1") }, time.Second, 10*time.Millisecond)

	var second cachedCourse
	require.NoError(t, cm.Catalog.CacheOrExecute(ctx, "id:c1", &second, time.Minute, fetch))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheHelper_CacheOrExecute_FetchError(t *testing.T) {
	cm, _ := newTestManager(t)
	boom := errors.New("db down")

	var dest cachedCourse
	err := cm.Catalog.CacheOrExecute(context.Background(), "id:c2", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheHelper_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.NoError(t, cm.Catalog.Set(ctx, "k", "v", time.Minute))

	var dest cachedCourse
	assert.ErrorIs(t, cm.Catalog.Get(ctx, "k", &dest), ErrCacheNotAvailable)

	require.NoError(t, cm.Catalog.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
		return cachedCourse{ID: "c3"}, nil
	}))
	assert.Equal(t, "c3", dest.ID)
}

func TestInvalidateCatalogCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Catalog.Set(ctx, "list:a:1:20", "x", time.Minute))
	require.NoError(t, cm.Catalog.Set(ctx, "list:b:2:20", "x", time.Minute))
	require.NoError(t, cm.Catalog.Set(ctx, "count:a", 3, time.Minute))
	require.NoError(t, cm.User.Set(ctx, "auth:u1", "x", time.Minute))

	require.NoError(t, InvalidateCatalogCache(ctx, cm))

	assert.False(t, mr.Exists("catalog:list:a:1:20"))
	assert.False(t, mr.Exists("catalog:list:b:2:20"))
	assert.False(t, mr.Exists("catalog:count:a"))
	assert.True(t, mr.Exists("user:auth:u1"))

	InvalidateUserCache(ctx, cm, "u1")
	assert.False(t, mr.Exists("user:auth:u1"))
}

func TestInvalidateCatalogCache_RedisDown(t *testing.T) {
	cm, mr := newTestManager(t)
	mr.Close()

	assert.Error(t, InvalidateCatalogCache(context.Background(), cm))
}
