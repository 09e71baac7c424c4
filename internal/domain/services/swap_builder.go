package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
)

const DefaultDeadlineOffset = 1800 * time.Second

// SwapEncoder encodes router calls. dex.Protocol satisfies it.
type SwapEncoder interface {
	Router() common.Address
	PackExactInputSingle(params dex.ExactInputSingleParams) ([]byte, error)
	PackExactInput(params dex.ExactInputParams) ([]byte, error)
}

type SwapBuilderConfig struct {
	ChainID        *big.Int
	WrappedNative  common.Address
	DeadlineOffset time.Duration
	FeeFactor      decimal.Decimal
	CallTimeout    time.Duration
}

// SwapRequest describes one exact-input swap along a chosen path.
type SwapRequest struct {
	Path        entities.Path
	AmountIn    *big.Int
	QuoteAmount *big.Int
	Slippage    decimal.Decimal
	From        common.Address
	// Recipient defaults to From.
	Recipient common.Address
	// DeadlineOffset defaults to the builder's configured offset.
	DeadlineOffset time.Duration
}

// SwapBuilder turns a path and quote into an unsigned router transaction.
type SwapBuilder struct {
	encoder SwapEncoder
	chain   ChainReader
	fees    *feeModel
	cfg     SwapBuilderConfig
	logger  *zap.Logger
}

func NewSwapBuilder(encoder SwapEncoder, chain ChainReader, cfg SwapBuilderConfig, logger *zap.Logger) *SwapBuilder {
	logger = orNop(logger)
	if cfg.DeadlineOffset <= 0 {
		cfg.DeadlineOffset = DefaultDeadlineOffset
	}
	if cfg.FeeFactor.IsZero() {
		cfg.FeeFactor = DefaultFeeFactor
	}
	return &SwapBuilder{
		encoder: encoder,
		chain:   chain,
		fees:    &feeModel{chain: chain, timeout: cfg.CallTimeout, logger: logger},
		cfg:     cfg,
		logger:  logger,
	}
}

func (b *SwapBuilder) BuildSwap(ctx context.Context, req SwapRequest) (*entities.TransactionRequest, error) {
	if err := req.Path.Validate(); err != nil {
		return nil, err
	}
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return nil, entities.NewValidationError("build swap", "amountIn must be greater than 0")
	}
	if req.From == (common.Address{}) {
		return nil, entities.NewValidationError("build swap", "from address is required")
	}
	minAmountOut, err := entities.MinAmountOut(req.QuoteAmount, req.Slippage)
	if err != nil {
		return nil, err
	}

	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = req.From
	}
	offset := req.DeadlineOffset
	if offset <= 0 {
		offset = b.cfg.DeadlineOffset
	}

	tsCtx, cancel := withCallTimeout(ctx, b.cfg.CallTimeout)
	blockTime, err := b.chain.BlockTimestamp(tsCtx)
	cancel()
	if err != nil {
		return nil, entities.NewProviderError(err, "build swap", "block timestamp unavailable")
	}
	deadline := blockTime + uint64(offset/time.Second)

	data, err := b.encode(req.Path, recipient, deadline, req.AmountIn, minAmountOut)
	if err != nil {
		return nil, err
	}

	value := new(big.Int)
	if req.Path.TokenIn() == b.cfg.WrappedNative {
		value.Set(req.AmountIn)
	}

	tx := &entities.TransactionRequest{
		From:    req.From,
		To:      b.encoder.Router(),
		Data:    data,
		Value:   value,
		ChainID: b.cfg.ChainID,
		Metadata: &entities.SwapMetadata{
			PathID:       req.Path.ID(),
			PathType:     req.Path.Type(),
			Path:         req.Path,
			AmountIn:     req.AmountIn,
			QuoteAmount:  req.QuoteAmount,
			MinAmountOut: minAmountOut,
			Deadline:     deadline,
		},
	}

	multiplier, fallback := singleHopGasMultiplier, defaultSingleHopGas
	if req.Path.Type() == entities.PathMulti {
		multiplier, fallback = multiHopGasMultiplier, defaultMultiHopGas
	}
	to := tx.To
	tx.Gas = b.fees.gasLimit(ctx, ethereum.CallMsg{
		From:  tx.From,
		To:    &to,
		Value: tx.Value,
		Data:  tx.Data,
	}, multiplier, fallback, "swap")

	if err := b.fees.nonce(ctx, tx, "swap"); err != nil {
		return nil, err
	}
	if err := b.fees.applyFees(ctx, tx, b.cfg.FeeFactor, "swap"); err != nil {
		return nil, err
	}

	b.logger.Info("swap built",
		zap.String("pathId", req.Path.ID()),
		zap.String("pathType", string(req.Path.Type())),
		zap.String("amountIn", req.AmountIn.String()),
		zap.String("minAmountOut", minAmountOut.String()),
		zap.Uint64("deadline", deadline),
		zap.Uint64("gas", tx.Gas),
		zap.Bool("dynamicFee", tx.IsDynamicFee()))
	return tx, nil
}

func (b *SwapBuilder) encode(path entities.Path, recipient common.Address, deadline uint64, amountIn, minAmountOut *big.Int) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path.Type() == entities.PathSingle {
		data, err = b.encoder.PackExactInputSingle(dex.ExactInputSingleParams{
			TokenIn:           path.Tokens[0],
			TokenOut:          path.Tokens[1],
			Fee:               big.NewInt(int64(path.Fees[0])),
			Recipient:         recipient,
			Deadline:          new(big.Int).SetUint64(deadline),
			AmountIn:          amountIn,
			AmountOutMinimum:  minAmountOut,
			SqrtPriceLimitX96: big.NewInt(0),
		})
	} else {
		var encoded []byte
		if encoded, err = path.Encode(); err != nil {
			return nil, err
		}
		data, err = b.encoder.PackExactInput(dex.ExactInputParams{
			Path:             encoded,
			Recipient:        recipient,
			Deadline:         new(big.Int).SetUint64(deadline),
			AmountIn:         amountIn,
			AmountOutMinimum: minAmountOut,
		})
	}
	if err != nil {
		return nil, entities.NewProviderError(err, "build swap", "encode router call")
	}
	return data, nil
}
