package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisCacheFromClient(client, DefaultTTL)
}

func TestRedisCache_Pool(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()
	key := PoolCacheKey(1, tokenA, tokenB, entities.Fee500)

	_, ok, err := c.GetPool(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetPool(ctx, key, poolAB))

	got, ok, err := c.GetPool(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, poolAB, got)
	assert.Equal(t, DefaultTTL, mr.TTL(key))

	mr.FastForward(DefaultTTL)
	_, ok, err = c.GetPool(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Paths(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	tokenC := common.HexToAddress("0x3000000000000000000000000000000000000003")
	direct, err := entities.NewPath([]common.Address{tokenA, tokenB}, []entities.FeeTier{entities.Fee3000})
	require.NoError(t, err)
	twoHop, err := entities.NewPath([]common.Address{tokenA, tokenC, tokenB}, []entities.FeeTier{entities.Fee500, entities.Fee100})
	require.NoError(t, err)

	key := PathCacheKey(1, tokenA, tokenB, 2)
	require.NoError(t, c.SetPaths(ctx, key, []entities.Path{direct, twoHop}))

	got, ok, err := c.GetPaths(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, direct.ID(), got[0].ID())
	assert.Equal(t, twoHop.ID(), got[1].ID())
	assert.Equal(t, entities.PathMulti, got[1].Type())
}

func TestRedisCache_EmptyPathsAreCached(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()
	key := PathCacheKey(1, tokenA, tokenB, 1)

	require.NoError(t, c.SetPaths(ctx, key, nil))

	got, ok, err := c.GetPaths(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRedisCache_BackendDown(t *testing.T) {
	mr, c := setupTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := c.GetPool(ctx, PoolCacheKey(1, tokenA, tokenB, entities.Fee500))
	assert.Error(t, err)
}
