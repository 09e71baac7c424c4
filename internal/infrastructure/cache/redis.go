package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// RedisCache implements Cache using Redis, so several router instances share
// discovery results. Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetPool(ctx context.Context, key string) (common.Address, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.Address{}, false, nil
		}
		return common.Address{}, false, err
	}
	if !common.IsHexAddress(val) {
		return common.Address{}, false, fmt.Errorf("corrupt pool entry %s: %q", key, val)
	}
	return common.HexToAddress(val), true, nil
}

func (c *RedisCache) SetPool(ctx context.Context, key string, pool common.Address) error {
	return c.client.Set(ctx, key, pool.Hex(), c.ttl).Err()
}

func (c *RedisCache) GetPaths(ctx context.Context, key string) ([]entities.Path, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var paths []entities.Path
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, false, err
	}
	return paths, true, nil
}

func (c *RedisCache) SetPaths(ctx context.Context, key string, paths []entities.Path) error {
	if paths == nil {
		paths = []entities.Path{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
