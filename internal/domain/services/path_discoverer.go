package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/cache"
	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

const DefaultMaxHops = 2

// PoolFinder is the part of PoolLocator discovery depends on.
type PoolFinder interface {
	LocatePool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error)
}

type PathDiscovererConfig struct {
	ChainID uint64
	// CommonBases are intermediate candidates, in enumeration order.
	CommonBases    []common.Address
	DefaultMaxHops int
	MaxConcurrency int
}

// PathDiscoverer enumerates direct, two-hop and three-hop candidate paths
// through the chain's common base tokens.
type PathDiscoverer struct {
	pools  PoolFinder
	cache  cache.Cache
	cfg    PathDiscovererConfig
	logger *zap.Logger
}

func NewPathDiscoverer(pools PoolFinder, c cache.Cache, cfg PathDiscovererConfig, logger *zap.Logger) *PathDiscoverer {
	if c == nil {
		c = cache.NewInMemoryCache(cache.DefaultTTL, nil)
	}
	if cfg.DefaultMaxHops == 0 {
		cfg.DefaultMaxHops = DefaultMaxHops
	}
	return &PathDiscoverer{
		pools:  pools,
		cache:  c,
		cfg:    cfg,
		logger: orNop(logger),
	}
}

// ResolveMaxHops maps 0 to the default and clamps to MaxHopsCeiling.
// Negative values are rejected.
func (d *PathDiscoverer) ResolveMaxHops(maxHops int) (int, error) {
	switch {
	case maxHops < 0:
		return 0, entities.NewValidationError("max hops", "maxHops must be at least 1, got %d", maxHops)
	case maxHops == 0:
		maxHops = d.cfg.DefaultMaxHops
	}
	if maxHops > entities.MaxHopsCeiling {
		maxHops = entities.MaxHopsCeiling
	}
	return maxHops, nil
}

// tokenPair is one hop whose pools have to be looked up. Pools are
// direction-free, so pairs are kept sorted.
type tokenPair struct {
	a, b common.Address
}

func newTokenPair(a, b common.Address) tokenPair {
	a, b = entities.SortTokens(a, b)
	return tokenPair{a, b}
}

// DiscoverPaths returns candidate paths in a fixed order: direct paths by fee
// tier, then two-hop paths by base, then three-hop paths by base pair. Each
// intermediate hop uses the first fee tier, in enumeration order, that has a
// pool. An empty result is not an error.
func (d *PathDiscoverer) DiscoverPaths(ctx context.Context, tokenIn, tokenOut common.Address, maxHops int) ([]entities.Path, error) {
	if err := validatePair("discover paths", tokenIn, tokenOut); err != nil {
		return nil, err
	}
	hops, err := d.ResolveMaxHops(maxHops)
	if err != nil {
		return nil, err
	}

	key := cache.PathCacheKey(d.cfg.ChainID, tokenIn, tokenOut, hops)
	cached, ok, err := d.cache.GetPaths(ctx, key)
	if err != nil {
		d.logger.Warn("path cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		metrics.CacheHits.WithLabelValues("paths").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("paths").Inc()

	bases := d.intermediates(tokenIn, tokenOut)

	direct := newTokenPair(tokenIn, tokenOut)
	pairs := []tokenPair{direct}
	index := map[tokenPair]int{direct: 0}
	need := func(a, b common.Address) {
		p := newTokenPair(a, b)
		if _, seen := index[p]; !seen {
			index[p] = len(pairs)
			pairs = append(pairs, p)
		}
	}
	if hops >= 2 {
		for _, base := range bases {
			need(tokenIn, base)
			need(base, tokenOut)
		}
	}
	if hops >= 3 && len(bases) >= 2 {
		for _, b1 := range bases {
			for _, b2 := range bases {
				if b1 != b2 {
					need(b1, b2)
				}
			}
		}
	}

	present, failures := d.lookupPools(ctx, pairs)
	if err := ctx.Err(); err != nil {
		return nil, entities.NewProviderError(err, "discover paths", "discovery cancelled")
	}

	firstTier := func(a, b common.Address) (entities.FeeTier, bool) {
		for t, ok := range present[index[newTokenPair(a, b)]] {
			if ok {
				return entities.FeeTiers[t], true
			}
		}
		return 0, false
	}

	var paths []entities.Path
	for t, ok := range present[0] {
		if ok {
			paths = appendPath(paths, []common.Address{tokenIn, tokenOut}, entities.FeeTiers[t])
		}
	}
	if hops >= 2 {
		for _, base := range bases {
			f1, ok1 := firstTier(tokenIn, base)
			f2, ok2 := firstTier(base, tokenOut)
			if ok1 && ok2 {
				paths = appendPath(paths, []common.Address{tokenIn, base, tokenOut}, f1, f2)
			}
		}
	}
	if hops >= 3 && len(bases) >= 2 {
		for _, b1 := range bases {
			for _, b2 := range bases {
				if b1 == b2 {
					continue
				}
				f1, ok1 := firstTier(tokenIn, b1)
				f2, ok2 := firstTier(b1, b2)
				f3, ok3 := firstTier(b2, tokenOut)
				if ok1 && ok2 && ok3 {
					paths = appendPath(paths, []common.Address{tokenIn, b1, b2, tokenOut}, f1, f2, f3)
				}
			}
		}
	}

	metrics.DiscoveredPaths.Observe(float64(len(paths)))
	d.logger.Debug("paths discovered",
		zap.String("tokenIn", tokenIn.Hex()),
		zap.String("tokenOut", tokenOut.Hex()),
		zap.Int("maxHops", hops),
		zap.Int("pairs", len(pairs)),
		zap.Int("paths", len(paths)),
		zap.Int("failures", failures))

	// A failed lookup may hide a route, so only complete results are cached.
	if failures == 0 {
		if err := d.cache.SetPaths(ctx, key, paths); err != nil {
			d.logger.Warn("path cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return paths, nil
}

// lookupPools checks every (pair, fee tier) combination concurrently. The
// result is indexed [pair][tier]; failed lookups count as absent.
func (d *PathDiscoverer) lookupPools(ctx context.Context, pairs []tokenPair) ([][]bool, int) {
	tiers := len(entities.FeeTiers)
	present := make([][]bool, len(pairs))
	errs := make([]error, len(pairs)*tiers)
	for i := range present {
		present[i] = make([]bool, tiers)
	}

	fanOut(ctx, len(pairs)*tiers, d.cfg.MaxConcurrency, func(ctx context.Context, job int) {
		p, t := job/tiers, job%tiers
		pool, err := d.pools.LocatePool(ctx, pairs[p].a, pairs[p].b, entities.FeeTiers[t])
		if err != nil {
			errs[job] = err
			return
		}
		present[p][t] = pool != (common.Address{})
	})

	failures := 0
	for job, err := range errs {
		if err == nil {
			continue
		}
		failures++
		p, t := job/tiers, job%tiers
		d.logger.Warn("pool lookup failed",
			zap.String("tokenA", pairs[p].a.Hex()),
			zap.String("tokenB", pairs[p].b.Hex()),
			zap.Uint32("fee", uint32(entities.FeeTiers[t])),
			zap.Error(err))
	}
	return present, failures
}

func (d *PathDiscoverer) intermediates(tokenIn, tokenOut common.Address) []common.Address {
	out := make([]common.Address, 0, len(d.cfg.CommonBases))
	seen := make(map[common.Address]bool, len(d.cfg.CommonBases))
	for _, base := range d.cfg.CommonBases {
		if base == tokenIn || base == tokenOut || base == (common.Address{}) || seen[base] {
			continue
		}
		seen[base] = true
		out = append(out, base)
	}
	return out
}

func appendPath(paths []entities.Path, tokens []common.Address, fees ...entities.FeeTier) []entities.Path {
	path, err := entities.NewPath(tokens, fees)
	if err != nil {
		return paths
	}
	return append(paths, path)
}
