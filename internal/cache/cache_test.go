package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestNewStoreNoop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := NewStore(lc, config.Config{Cache: config.Cache{Driver: "noop"}}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "orders:1", []byte("{}"), time.Minute))
	_, err = store.Get(ctx, "orders:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, store.Delete(ctx, "orders:1", "orders:2"))
}

func TestNewStoreFallsBackWhenOrderCacheDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := NewStore(lc, config.Config{
		Cache:  config.Cache{Driver: "redis"},
		Orders: config.Orders{CacheEnabled: false},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, noopStore{}, store)
}

func TestNewStoreRejectsUnknownDriver(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := NewStore(lc, config.Config{
		Cache:  config.Cache{Driver: "memcached"},
		Orders: config.Orders{CacheEnabled: true},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestRedisStoreRejectsEmptyKey(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := NewStore(lc, config.Config{
		Cache:  config.Cache{Driver: "redis", DefaultTTL: time.Minute, Redis: config.Redis{Addr: "127.0.0.1:0"}},
		Orders: config.Orders{CacheEnabled: true},
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, store.Set(ctx, "", nil, 0))
	assert.NoError(t, store.Delete(ctx, "", ""))
}
