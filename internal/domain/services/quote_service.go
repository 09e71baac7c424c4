package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

// Quoter prices paths. dex.Protocol satisfies it.
type Quoter interface {
	QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee entities.FeeTier, amountIn *big.Int) (*dex.QuoteResult, error)
	QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (*dex.QuoteResult, error)
}

// PathSource supplies candidate paths. *PathDiscoverer satisfies it.
type PathSource interface {
	DiscoverPaths(ctx context.Context, tokenIn, tokenOut common.Address, maxHops int) ([]entities.Path, error)
}

// QuoteOptions narrow the search. Zero values mean "not pinned".
type QuoteOptions struct {
	Fee     entities.FeeTier
	PathID  string
	MaxHops int
}

type QuoteAggregatorConfig struct {
	CallTimeout    time.Duration
	MaxConcurrency int
}

// QuoteAggregator quotes every candidate path concurrently and picks the one
// with the greatest output.
type QuoteAggregator struct {
	quoter Quoter
	paths  PathSource
	tokens TokenMetadata
	cfg    QuoteAggregatorConfig
	logger *zap.Logger
}

// NewQuoteAggregator creates an aggregator. tokens may be nil, in which case
// quotes are returned without HumanAmount.
func NewQuoteAggregator(quoter Quoter, paths PathSource, tokens TokenMetadata, cfg QuoteAggregatorConfig, logger *zap.Logger) *QuoteAggregator {
	return &QuoteAggregator{
		quoter: quoter,
		paths:  paths,
		tokens: tokens,
		cfg:    cfg,
		logger: orNop(logger),
	}
}

// GetQuote returns the best quote with every candidate in Alternatives, in
// discovery order.
func (a *QuoteAggregator) GetQuote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, opts QuoteOptions) (*entities.Quote, error) {
	mode := quoteMode(opts)
	start := time.Now()

	quote, err := a.getQuote(ctx, tokenIn, tokenOut, amountIn, opts)

	metrics.QuoteDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.QuoteRequests.WithLabelValues(mode, quoteStatus(err)).Inc()
	return quote, err
}

func (a *QuoteAggregator) getQuote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, opts QuoteOptions) (*entities.Quote, error) {
	if err := validatePair("quote", tokenIn, tokenOut); err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, entities.NewValidationError("quote", "amountIn must be greater than 0")
	}

	var candidates []entities.Path
	switch {
	case opts.Fee != 0:
		if !opts.Fee.Valid() {
			return nil, entities.NewValidationError("quote", "invalid fee: %d, must be one of %v", opts.Fee, entities.FeeTiers)
		}
		path, err := entities.NewPath([]common.Address{tokenIn, tokenOut}, []entities.FeeTier{opts.Fee})
		if err != nil {
			return nil, err
		}
		candidates = []entities.Path{path}

	case opts.PathID != "":
		hops := opts.MaxHops
		if hops == 0 {
			hops = entities.MaxHopsCeiling
		}
		paths, err := a.paths.DiscoverPaths(ctx, tokenIn, tokenOut, hops)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if p.ID() == opts.PathID {
				candidates = []entities.Path{p}
				break
			}
		}
		if candidates == nil {
			return nil, entities.NewValidationError("quote", "invalid path id %s", opts.PathID)
		}

	default:
		paths, err := a.paths.DiscoverPaths(ctx, tokenIn, tokenOut, opts.MaxHops)
		if err != nil {
			return nil, err
		}
		candidates = paths
	}

	quotes := a.quoteAll(ctx, candidates, amountIn)
	if err := ctx.Err(); err != nil {
		return nil, entities.NewProviderError(err, "quote", "quote cancelled")
	}

	best := selectBest(quotes)
	if best < 0 {
		a.logger.Info("no valid route",
			zap.String("tokenIn", tokenIn.Hex()),
			zap.String("tokenOut", tokenOut.Hex()),
			zap.String("amountIn", amountIn.String()),
			zap.Int("candidates", len(quotes)))
		return nil, entities.NewProviderError(entities.ErrNoLiquidity, "quote", "no valid route")
	}

	a.annotate(ctx, tokenOut, quotes)
	winner := quotes[best]
	winner.Alternatives = quotes
	return &winner, nil
}

// quoteAll returns one quote per path, index-aligned with paths.
func (a *QuoteAggregator) quoteAll(ctx context.Context, paths []entities.Path, amountIn *big.Int) []entities.Quote {
	quotes := make([]entities.Quote, len(paths))
	fanOut(ctx, len(paths), a.cfg.MaxConcurrency, func(ctx context.Context, i int) {
		quotes[i] = a.quotePath(ctx, paths[i], amountIn)
	})
	return quotes
}

// quotePath never fails: errors become a zero-output quote with the reason.
func (a *QuoteAggregator) quotePath(ctx context.Context, path entities.Path, amountIn *big.Int) entities.Quote {
	callCtx, cancel := withCallTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	var (
		res *dex.QuoteResult
		err error
	)
	if path.Type() == entities.PathSingle {
		res, err = a.quoter.QuoteExactInputSingle(callCtx, path.Tokens[0], path.Tokens[1], path.Fees[0], amountIn)
	} else {
		var encoded []byte
		encoded, err = path.Encode()
		if err == nil {
			res, err = a.quoter.QuoteExactInput(callCtx, encoded, amountIn)
		}
	}

	if err == nil && (res == nil || res.AmountOut == nil) {
		err = entities.NewProviderError(nil, "quote path", "empty quoter response")
	}
	if err != nil {
		metrics.CandidateFailures.WithLabelValues(string(path.Type())).Inc()
		a.logger.Warn("candidate quote failed",
			zap.String("path", path.String()),
			zap.String("pathId", path.ID()),
			zap.Error(err))
		return entities.NewFailedQuote(path, amountIn, err)
	}

	return entities.NewQuote(path, amountIn, res.AmountOut, res.GasEstimate)
}

// selectBest returns the index of the strictly greatest non-zero output; the
// lowest index wins ties. -1 means nothing is viable.
func selectBest(quotes []entities.Quote) int {
	best := -1
	for i := range quotes {
		if !quotes[i].Viable() {
			continue
		}
		if best < 0 || quotes[i].ToAmount.Cmp(quotes[best].ToAmount) > 0 {
			best = i
		}
	}
	return best
}

func (a *QuoteAggregator) annotate(ctx context.Context, tokenOut common.Address, quotes []entities.Quote) {
	if a.tokens == nil {
		return
	}
	callCtx, cancel := withCallTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	decimals, err := a.tokens.Decimals(callCtx, tokenOut)
	if err != nil {
		a.logger.Warn("token decimals lookup failed", zap.String("token", tokenOut.Hex()), zap.Error(err))
		return
	}
	for i := range quotes {
		quotes[i].HumanAmount = entities.FormatAmount(quotes[i].ToAmount, decimals)
	}
}

func quoteMode(opts QuoteOptions) string {
	switch {
	case opts.Fee != 0:
		return "fee"
	case opts.PathID != "":
		return "path_id"
	default:
		return "discover"
	}
}

func quoteStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case entities.IsValidation(err):
		return "invalid"
	case entities.IsNoLiquidity(err):
		return "no_route"
	default:
		return "error"
	}
}
