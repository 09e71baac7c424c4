package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/config"
	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/domain/services"
	"github.com/bimakw/dex-router/internal/infrastructure/cache"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
	"github.com/bimakw/dex-router/internal/infrastructure/ethereum"
)

// app holds the wired service graph shared by every command.
type app struct {
	cfg      config.Config
	chain    config.ChainConfig
	logger   *zap.Logger
	client   *ethereum.Client
	cache    cache.Cache
	registry *entities.TokenRegistry

	protocol dex.Protocol
	locator  *services.PoolLocator
	router   *services.RouterService
	prices   *services.PriceService

	closers []func()
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	chain, err := config.Chain(cfg.ChainID)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, chain: chain, logger: logger}

	a.client, err = ethereum.NewClient(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	a.closers = append(a.closers, a.client.Close)
	if got := a.client.ChainID().Uint64(); got != cfg.ChainID {
		a.Close()
		return nil, fmt.Errorf("rpc chain id %d does not match configured chain id %d", got, cfg.ChainID)
	}

	a.registry = chain.Registry()
	if cfg.TokensFile != "" {
		if err := a.registry.LoadFromFile(cfg.TokensFile); err != nil {
			a.Close()
			return nil, fmt.Errorf("load tokens: %w", err)
		}
	}

	a.cache = a.newCache()
	a.wire()

	logger.Info("router ready",
		zap.String("chain", chain.Name),
		zap.Uint64("chain_id", chain.ID),
		zap.String("dex", a.protocol.Name()),
		zap.String("router", a.protocol.Router().Hex()),
		zap.Int("tokens", a.registry.Count()),
		zap.Int("max_hops", cfg.MaxHops),
	)
	return a, nil
}

// newCache prefers redis and falls back to memory when it is unreachable.
func (a *app) newCache() cache.Cache {
	if a.cfg.RedisAddr == "" {
		a.logger.Info("using in-memory cache", zap.Duration("ttl", a.cfg.CacheTTL))
		return cache.NewInMemoryCache(a.cfg.CacheTTL, nil)
	}

	rc, err := cache.NewRedisCache(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, a.cfg.CacheTTL)
	if err != nil {
		a.logger.Warn("redis unavailable, using in-memory cache", zap.String("addr", a.cfg.RedisAddr), zap.Error(err))
		return cache.NewInMemoryCache(a.cfg.CacheTTL, nil)
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	a.logger.Info("connected to redis", zap.String("addr", a.cfg.RedisAddr))
	return rc
}

func (a *app) wire() {
	cfg, chain, logger := a.cfg, a.chain, a.logger

	uniswap := dex.NewUniswapV3Client(a.client, dex.UniswapV3Addresses{
		Factory:       chain.Factory,
		Quoter:        chain.Quoter,
		Router:        chain.Router,
		RouterVersion: chain.RouterVersion,
	})
	a.protocol = uniswap
	erc20 := dex.NewERC20Client(a.client, a.registry)

	a.locator = services.NewPoolLocator(uniswap, a.cache, services.PoolLocatorConfig{
		ChainID:        chain.ID,
		CallTimeout:    cfg.CallTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger.Named("pools"))

	discoverer := services.NewPathDiscoverer(a.locator, a.cache, services.PathDiscovererConfig{
		ChainID:        chain.ID,
		CommonBases:    chain.BaseAddresses(),
		DefaultMaxHops: cfg.MaxHops,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger.Named("paths"))

	quotes := services.NewQuoteAggregator(uniswap, discoverer, erc20, services.QuoteAggregatorConfig{
		CallTimeout:    cfg.CallTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger.Named("quotes"))

	swaps := services.NewSwapBuilder(uniswap, a.client, services.SwapBuilderConfig{
		ChainID:        a.client.ChainID(),
		WrappedNative:  chain.WrappedNative.Address,
		DeadlineOffset: cfg.DeadlineOffset,
		CallTimeout:    cfg.CallTimeout,
	}, logger.Named("swaps"))

	approvals := services.NewApprovalBuilder(erc20, a.client, services.ApprovalBuilderConfig{
		ChainID:       a.client.ChainID(),
		Router:        uniswap.Router(),
		WrappedNative: chain.WrappedNative.Address,
		CallTimeout:   cfg.CallTimeout,
	}, logger.Named("approvals"))

	a.router = services.NewRouterService(quotes, swaps, approvals, erc20, a.registry, cfg.Slippage, logger)
	a.prices = services.NewPriceService(quotes, erc20, a.registry, chain.USDStable, logger.Named("prices"))
}

// Close releases clients in reverse order and flushes the logger.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}
