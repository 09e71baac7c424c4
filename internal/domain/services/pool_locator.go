package services

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/cache"
	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

// PoolRegistry resolves pool addresses. dex.Protocol satisfies it.
type PoolRegistry interface {
	GetPool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error)
}

type PoolLocatorConfig struct {
	ChainID        uint64
	CallTimeout    time.Duration
	MaxConcurrency int
}

// PoolLocator resolves (tokenA, tokenB, fee) to a pool address through a
// cache. Absent pools are never cached so newly created pools are found on
// the next lookup.
type PoolLocator struct {
	registry PoolRegistry
	cache    cache.Cache
	cfg      PoolLocatorConfig
	logger   *zap.Logger
}

func NewPoolLocator(registry PoolRegistry, c cache.Cache, cfg PoolLocatorConfig, logger *zap.Logger) *PoolLocator {
	if c == nil {
		c = cache.NewInMemoryCache(cache.DefaultTTL, nil)
	}
	return &PoolLocator{
		registry: registry,
		cache:    c,
		cfg:      cfg,
		logger:   orNop(logger),
	}
}

func validatePair(op string, tokenA, tokenB common.Address) error {
	if tokenA == (common.Address{}) || tokenB == (common.Address{}) {
		return entities.NewValidationError(op, "token address must not be the zero address")
	}
	if tokenA == tokenB {
		return entities.NewValidationError(op, "tokens must be different: %s", tokenA.Hex())
	}
	return nil
}

// LocatePool returns the pool address, or the zero address when the factory
// reports none.
func (l *PoolLocator) LocatePool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error) {
	if err := validatePair("locate pool", tokenA, tokenB); err != nil {
		return common.Address{}, err
	}
	if !fee.Valid() {
		return common.Address{}, entities.NewValidationError("locate pool", "invalid fee: %d, must be one of %v", fee, entities.FeeTiers)
	}

	key := cache.PoolCacheKey(l.cfg.ChainID, tokenA, tokenB, fee)
	cached, ok, err := l.cache.GetPool(ctx, key)
	if err != nil {
		l.logger.Warn("pool cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		metrics.CacheHits.WithLabelValues("pool").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("pool").Inc()

	callCtx, cancel := withCallTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()

	pool, err := l.registry.GetPool(callCtx, tokenA, tokenB, fee)
	if err != nil {
		metrics.PoolLookups.WithLabelValues("error").Inc()
		return common.Address{}, entities.NewProviderError(err, "locate pool", "getPool(%s, %s, %d) failed", tokenA.Hex(), tokenB.Hex(), fee)
	}
	if pool == (common.Address{}) {
		metrics.PoolLookups.WithLabelValues("absent").Inc()
		return common.Address{}, nil
	}
	metrics.PoolLookups.WithLabelValues("present").Inc()

	if err := l.cache.SetPool(ctx, key, pool); err != nil {
		l.logger.Warn("pool cache write failed", zap.String("key", key), zap.Error(err))
	}
	return pool, nil
}

// FindBestPool queries every fee tier concurrently and returns the first
// present pool to come back. Remaining lookups are cancelled. The winner
// depends on completion order, not on liquidity.
func (l *PoolLocator) FindBestPool(ctx context.Context, tokenA, tokenB common.Address) (entities.Pool, error) {
	if err := validatePair("find pool", tokenA, tokenB); err != nil {
		return entities.Pool{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan entities.Pool, len(entities.FeeTiers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit())

	for _, fee := range entities.FeeTiers {
		g.Go(func() error {
			addr, err := l.LocatePool(gctx, tokenA, tokenB, fee)
			if err != nil {
				if gctx.Err() == nil {
					l.logger.Warn("pool lookup failed",
						zap.String("tokenA", tokenA.Hex()),
						zap.String("tokenB", tokenB.Hex()),
						zap.Uint32("fee", uint32(fee)),
						zap.Error(err))
				}
				return nil
			}
			if addr != (common.Address{}) {
				found <- entities.Pool{Address: addr, TokenA: tokenA, TokenB: tokenB, Fee: fee}
			}
			return nil
		})
	}

	waited := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(found)
		close(waited)
	}()

	if pool, ok := <-found; ok {
		cancel()
		return pool, nil
	}
	<-waited

	if err := ctx.Err(); err != nil {
		return entities.Pool{}, entities.NewProviderError(err, "find pool", "lookup cancelled")
	}
	return entities.Pool{}, entities.NewProviderError(entities.ErrNoLiquidity, "find pool", "no pool found for %s/%s", tokenA.Hex(), tokenB.Hex())
}

func (l *PoolLocator) limit() int {
	if l.cfg.MaxConcurrency < 1 {
		return DefaultMaxConcurrency
	}
	return l.cfg.MaxConcurrency
}
