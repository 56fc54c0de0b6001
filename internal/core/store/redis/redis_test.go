package redis

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-base/internal/core/store"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	value, ok, err := s.Get(ctx, "article_1_title")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	require.NoError(t, s.Set(ctx, "article_1_title", "Hello"))
	mr.CheckGet(t, "article_1_title", "Hello")

	value, ok, err = s.Get(ctx, "article_1_title")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello", value)

	require.NoError(t, s.Delete(ctx, "article_1_title"))
	assert.False(t, mr.Exists("article_1_title"))

	snap := s.GetMetrics().Snapshot()
	assert.Equal(t, int64(2), snap.GetCount)
	assert.Equal(t, int64(1), snap.MissCount)
	assert.Equal(t, int64(1), snap.SetCount)
}

func TestRedisStore_Incr(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "article_id")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	mr.CheckGet(t, "article_id", "3")

	require.NoError(t, mr.Set("bad_counter", "abc"))
	_, err := s.Incr(ctx, "bad_counter")
	assert.ErrorIs(t, err, store.ErrInvalidType)
}

func TestRedisStore_Sets(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	members, err := s.SMembers(ctx, "article_ids")
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)

	require.NoError(t, s.SAdd(ctx, "article_ids", "1"))
	require.NoError(t, s.SAdd(ctx, "article_ids", "2"))
	mr.CheckSet(t, "article_ids", "1", "2")

	ok, err := s.SIsMember(ctx, "article_ids", "2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.SRem(ctx, "article_ids", "2"))
	members, err = s.SMembers(ctx, "article_ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)
}

func TestRedisStore_WrongType(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, mr.Set("plain", "v"))
	err := s.SAdd(ctx, "plain", "a")
	assert.ErrorIs(t, err, store.ErrInvalidType)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "SAdd", storeErr.Op)
	assert.Equal(t, "plain", storeErr.Key)
	assert.Equal(t, int64(1), s.GetMetrics().ErrorCount.Load())
}

func TestRedisStore_Scan(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set("article_"+strconv.Itoa(i), "x"))
	}
	require.NoError(t, mr.Set("user_1_name", "x"))

	keys, err := s.Scan(ctx, "article_*")
	require.NoError(t, err)
	assert.Len(t, keys, 250)

	keys, err = s.Scan(ctx, "user_*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"user_1_name"}, keys)
}

func TestRedisStore_CloseBorrowedClient(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Close())
	// 借用的客户端不被关闭
	assert.NoError(t, s.Ping(ctx))
}

func TestNewRedisStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := store.DefaultRedisConfig()
	cfg.Addr = mr.Addr()

	s, err := NewRedisStoreFromConfig(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	mr.CheckGet(t, "k", "v")

	require.NoError(t, s.Close())
	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestNewRedisStoreFromConfig_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := store.DefaultRedisConfig()
	cfg.Addr = addr
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.MaxRetries = -1

	_, err := NewRedisStoreFromConfig(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, store.IsConnectionFailed(err))
}
