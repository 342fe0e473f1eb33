package redis

import (
	"context"
	"fmt"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/groupcollect/groupcollect-backend/pkg/config"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, count)
	require.Len(t, mock.expireCalls, 1)

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 2, count)
	require.Len(t, mock.expireCalls, 1, "expire should only be set on the first hit")

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestClearCacheRemovesOnlyCacheNamespace(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.scanPageSize = 2
	client := &Client{store: mock}

	for i := 0; i < 5; i++ {
		require.NoError(t, client.Set(ctx, client.CacheKey(fmt.Sprintf("page-%d", i)), "body", time.Minute))
	}
	require.NoError(t, client.Set(ctx, client.AccessSessionKey("abc"), "token", time.Minute))

	removed, err := client.ClearCache(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, removed)

	_, err = client.Get(ctx, client.CacheKey("page-0"))
	require.ErrorIs(t, err, redis.Nil)

	token, err := client.Get(ctx, client.AccessSessionKey("abc"))
	require.NoError(t, err)
	require.Equal(t, "token", token)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	require.Equal(t, "gc:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	require.Equal(t, "gc:rate_limit:scope", client.RateLimitKey("scope"))
	require.Equal(t, "gc:cache:GET:abc", client.CacheKey("GET", "abc"))
	require.Equal(t, "gc:session:access:jti", client.AccessSessionKey("jti"))
	require.Equal(t, "gc:cache", client.CacheKey("", " "))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7})
	require.NoError(t, err)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	require.Error(t, client.Ping(ctx))
	_, err := client.ClearCache(ctx)
	require.Error(t, err)
	require.NoError(t, client.Close())
}

type mockCmdable struct {
	data         map[string]string
	incr         map[string]int64
	expireCalls  []expireCall
	scanPageSize int
	scanSnapshot []string
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			removed++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(removed, nil)
}

// Scan pages through a snapshot of the matching keys taken on the first
// call; the cursor is an offset into that snapshot.
func (m *mockCmdable) Scan(_ context.Context, cursor uint64, match string, _ int64) *redis.ScanCmd {
	if cursor == 0 {
		m.scanSnapshot = m.scanSnapshot[:0]
		for key := range m.data {
			if ok, _ := path.Match(match, key); ok {
				m.scanSnapshot = append(m.scanSnapshot, key)
			}
		}
		sort.Strings(m.scanSnapshot)
	}
	keys := m.scanSnapshot

	size := m.scanPageSize
	if size <= 0 {
		size = len(keys)
	}
	start := int(cursor)
	if start > len(keys) {
		start = len(keys)
	}
	end := start + size
	var next uint64
	if end < len(keys) {
		next = uint64(end)
	} else {
		end = len(keys)
	}
	return redis.NewScanCmdResult(keys[start:end], next, nil)
}
