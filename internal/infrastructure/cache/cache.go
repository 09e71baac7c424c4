package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// DefaultTTL applies to both pool and path entries.
const DefaultTTL = 300 * time.Second

// Cache stores pool addresses and discovered path sets. A miss is
// (zero, false, nil); errors come only from remote backends.
type Cache interface {
	GetPool(ctx context.Context, key string) (common.Address, bool, error)
	SetPool(ctx context.Context, key string, pool common.Address) error
	GetPaths(ctx context.Context, key string) ([]entities.Path, bool, error)
	SetPaths(ctx context.Context, key string, paths []entities.Path) error
}

// PoolCacheKey is order-insensitive: a pool serves both swap directions.
func PoolCacheKey(chainID uint64, tokenA, tokenB common.Address, fee entities.FeeTier) string {
	a, b := entities.SortTokens(tokenA, tokenB)
	return fmt.Sprintf("pool:%d:%s:%s:%d", chainID, strings.ToLower(a.Hex()), strings.ToLower(b.Hex()), fee)
}

// PathCacheKey is directional since paths are ordered.
func PathCacheKey(chainID uint64, tokenIn, tokenOut common.Address, maxHops int) string {
	return fmt.Sprintf("paths:%d:%s:%s:%d", chainID, strings.ToLower(tokenIn.Hex()), strings.ToLower(tokenOut.Hex()), maxHops)
}

// InMemoryCache implements Cache with process-local TTL maps.
type InMemoryCache struct {
	pools *TTLMap[string, common.Address]
	paths *TTLMap[string, []entities.Path]
}

// NewInMemoryCache creates a new in-memory cache. clock may be nil.
func NewInMemoryCache(ttl time.Duration, clock Clock) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryCache{
		pools: NewTTLMap[string, common.Address](ttl, clock),
		paths: NewTTLMap[string, []entities.Path](ttl, clock),
	}
}

func (c *InMemoryCache) GetPool(_ context.Context, key string) (common.Address, bool, error) {
	addr, ok := c.pools.Get(key)
	return addr, ok, nil
}

func (c *InMemoryCache) SetPool(_ context.Context, key string, pool common.Address) error {
	c.pools.Set(key, pool)
	return nil
}

func (c *InMemoryCache) GetPaths(_ context.Context, key string) ([]entities.Path, bool, error) {
	paths, ok := c.paths.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]entities.Path(nil), paths...), true, nil
}

func (c *InMemoryCache) SetPaths(_ context.Context, key string, paths []entities.Path) error {
	c.paths.Set(key, append([]entities.Path{}, paths...))
	return nil
}
