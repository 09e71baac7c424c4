package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// QuoteRequest is a quote request in wire form. Exactly one of AmountIn (base
// units) and Amount (human units) is expected.
type QuoteRequest struct {
	TokenIn  string
	TokenOut string
	AmountIn string
	Amount   string
	Fee      uint64
	PathID   string
	MaxHops  int
}

// PathSummary is one priced candidate in a quote response.
type PathSummary struct {
	PathID       string             `json:"pathId"`
	PathType     entities.PathType  `json:"pathType"`
	Tokens       []common.Address   `json:"tokens"`
	Fees         []entities.FeeTier `json:"fees"`
	ToAmount     *big.Int           `json:"toAmount"`
	HumanAmount  string             `json:"humanAmount,omitempty"`
	EstimatedGas uint64             `json:"estimatedGas"`
}

type QuoteResponse struct {
	*entities.Quote
	AvailablePaths []PathSummary `json:"availablePaths"`
}

type SwapParams struct {
	QuoteRequest
	Slippage       string
	From           string
	Recipient      string
	DeadlineOffset time.Duration
}

type ApprovalParams struct {
	Token    string
	Owner    string
	AmountIn string
	Amount   string
	Infinite bool
}

// RouterService is the entry point for handlers and the CLI: it parses wire
// input and drives quoting, swap building and approvals.
type RouterService struct {
	quotes          *QuoteAggregator
	swaps           *SwapBuilder
	approvals       *ApprovalBuilder
	tokens          TokenMetadata
	registry        *entities.TokenRegistry
	defaultSlippage decimal.Decimal
	logger          *zap.Logger
}

// NewRouterService creates a new router service
func NewRouterService(quotes *QuoteAggregator, swaps *SwapBuilder, approvals *ApprovalBuilder, tokens TokenMetadata, registry *entities.TokenRegistry, defaultSlippage decimal.Decimal, logger *zap.Logger) *RouterService {
	if registry == nil {
		registry = entities.NewTokenRegistry()
	}
	return &RouterService{
		quotes:          quotes,
		swaps:           swaps,
		approvals:       approvals,
		tokens:          tokens,
		registry:        registry,
		defaultSlippage: defaultSlippage,
		logger:          orNop(logger),
	}
}

// GetQuote finds the best route and returns a quote with every viable
// alternative.
func (s *RouterService) GetQuote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	tokenIn, tokenOut, amountIn, opts, err := s.parseQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, tokenIn, tokenOut, amountIn, opts)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{Quote: quote, AvailablePaths: summarize(quote.Alternatives)}, nil
}

// PrepareSwap re-quotes the request and builds the router transaction for the
// winning path. Passing PathID reuses a previously quoted path.
func (s *RouterService) PrepareSwap(ctx context.Context, req SwapParams) (*entities.TransactionRequest, error) {
	tokenIn, tokenOut, amountIn, opts, err := s.parseQuote(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	from, err := entities.ParseAddress("from", req.From)
	if err != nil {
		return nil, err
	}
	recipient := from
	if req.Recipient != "" {
		if recipient, err = entities.ParseAddress("recipient", req.Recipient); err != nil {
			return nil, err
		}
	}
	slippage := s.defaultSlippage
	if req.Slippage != "" {
		if slippage, err = entities.ParseSlippage(req.Slippage); err != nil {
			return nil, err
		}
	}

	quote, err := s.quotes.GetQuote(ctx, tokenIn, tokenOut, amountIn, opts)
	if err != nil {
		return nil, err
	}

	return s.swaps.BuildSwap(ctx, SwapRequest{
		Path:           quote.Path,
		AmountIn:       amountIn,
		QuoteAmount:    quote.ToAmount,
		Slippage:       slippage,
		From:           from,
		Recipient:      recipient,
		DeadlineOffset: req.DeadlineOffset,
	})
}

// PrepareApproval returns nil when no approval is needed.
func (s *RouterService) PrepareApproval(ctx context.Context, req ApprovalParams) (*entities.TransactionRequest, error) {
	token, err := s.registry.Resolve("token", req.Token)
	if err != nil {
		return nil, err
	}
	owner, err := entities.ParseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	amount, err := s.parseAmount(ctx, token, req.AmountIn, req.Amount)
	if err != nil {
		return nil, err
	}

	return s.approvals.BuildApproval(ctx, ApprovalRequest{
		Token:    token,
		Owner:    owner,
		Amount:   amount,
		Infinite: req.Infinite,
	})
}

func (s *RouterService) parseQuote(ctx context.Context, req QuoteRequest) (common.Address, common.Address, *big.Int, QuoteOptions, error) {
	var opts QuoteOptions

	tokenIn, err := s.registry.Resolve("tokenIn", req.TokenIn)
	if err != nil {
		return common.Address{}, common.Address{}, nil, opts, err
	}
	tokenOut, err := s.registry.Resolve("tokenOut", req.TokenOut)
	if err != nil {
		return common.Address{}, common.Address{}, nil, opts, err
	}
	if tokenIn == tokenOut {
		return common.Address{}, common.Address{}, nil, opts, entities.NewValidationError("quote", "tokenIn and tokenOut must be different")
	}

	amountIn, err := s.parseAmount(ctx, tokenIn, req.AmountIn, req.Amount)
	if err != nil {
		return common.Address{}, common.Address{}, nil, opts, err
	}

	if req.Fee != 0 {
		if opts.Fee, err = entities.ParseFeeTier(req.Fee); err != nil {
			return common.Address{}, common.Address{}, nil, opts, err
		}
	}
	if req.MaxHops < 0 {
		return common.Address{}, common.Address{}, nil, opts, entities.NewValidationError("quote", "maxHops must be at least 1, got %d", req.MaxHops)
	}
	opts.PathID = req.PathID
	opts.MaxHops = req.MaxHops

	return tokenIn, tokenOut, amountIn, opts, nil
}

func (s *RouterService) parseAmount(ctx context.Context, token common.Address, raw, human string) (*big.Int, error) {
	switch {
	case raw != "":
		return entities.ParseRawAmount(raw)
	case human != "":
		decimals, err := s.tokens.Decimals(ctx, token)
		if err != nil {
			return nil, entities.NewProviderError(err, "parse amount", "decimals unavailable for %s", token.Hex())
		}
		return entities.ParseAmount(human, decimals)
	default:
		return nil, entities.NewValidationError("parse amount", "amountIn or amount is required")
	}
}

func summarize(quotes []entities.Quote) []PathSummary {
	out := make([]PathSummary, 0, len(quotes))
	for _, q := range quotes {
		if !q.Viable() {
			continue
		}
		out = append(out, PathSummary{
			PathID:       q.PathID,
			PathType:     q.PathType,
			Tokens:       q.Path.Tokens,
			Fees:         q.Path.Fees,
			ToAmount:     q.ToAmount,
			HumanAmount:  q.HumanAmount,
			EstimatedGas: q.EstimatedGas,
		})
	}
	return out
}
