package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

var (
	// DefaultFeeFactor scales the base fee to absorb base fee growth until
	// inclusion.
	DefaultFeeFactor = decimal.NewFromInt(2)

	singleHopGasMultiplier = decimal.RequireFromString("1.2")
	multiHopGasMultiplier  = decimal.RequireFromString("1.3")
	approveGasMultiplier   = decimal.RequireFromString("1.2")
)

const (
	defaultSingleHopGas uint64 = 300_000
	defaultMultiHopGas  uint64 = 500_000
	defaultApproveGas   uint64 = 60_000
)

// feeModel fills gas and fee fields on transaction requests.
type feeModel struct {
	chain   ChainReader
	timeout time.Duration
	logger  *zap.Logger
}

// applyFees sets MaxFeePerGas = floor(baseFee*factor) + tip when the chain
// reports both values, and falls back to a legacy gas price otherwise. The
// fallback is logged, not returned.
func (f *feeModel) applyFees(ctx context.Context, tx *entities.TransactionRequest, factor decimal.Decimal, call string) error {
	callCtx, cancel := withCallTimeout(ctx, f.timeout)
	defer cancel()

	baseFee, err := f.chain.BaseFee(callCtx)
	var tip *big.Int
	if err == nil {
		tip, err = f.chain.SuggestGasTipCap(callCtx)
	}
	if err == nil && baseFee != nil && tip != nil {
		scaled := decimal.NewFromBigInt(baseFee, 0).Mul(factor).Floor().BigInt()
		tx.MaxFeePerGas = scaled.Add(scaled, tip)
		tx.MaxPriorityFeePerGas = tip
		tx.GasPrice = nil
		return nil
	}

	f.logger.Warn("dynamic fee unavailable, using legacy gas price", zap.String("call", call), zap.Error(err))
	metrics.TxFallbacks.WithLabelValues("legacy_fee", call).Inc()

	gasPrice, err := f.chain.SuggestGasPrice(callCtx)
	if err != nil {
		return entities.NewProviderError(err, call, "gas price unavailable")
	}
	tx.GasPrice = gasPrice
	tx.MaxFeePerGas = nil
	tx.MaxPriorityFeePerGas = nil
	return nil
}

// gasLimit estimates msg and applies multiplier, or returns fallback when the
// simulation fails.
func (f *feeModel) gasLimit(ctx context.Context, msg ethereum.CallMsg, multiplier decimal.Decimal, fallback uint64, call string) uint64 {
	callCtx, cancel := withCallTimeout(ctx, f.timeout)
	defer cancel()

	estimate, err := f.chain.EstimateGas(callCtx, msg)
	if err != nil || estimate == 0 {
		f.logger.Warn("gas estimation failed, using default",
			zap.String("call", call),
			zap.Uint64("gas", fallback),
			zap.Error(err))
		metrics.TxFallbacks.WithLabelValues("default_gas", call).Inc()
		return fallback
	}
	return decimal.NewFromInt(int64(estimate)).Mul(multiplier).Floor().BigInt().Uint64()
}

func (f *feeModel) nonce(ctx context.Context, tx *entities.TransactionRequest, call string) error {
	callCtx, cancel := withCallTimeout(ctx, f.timeout)
	defer cancel()

	nonce, err := f.chain.PendingNonceAt(callCtx, tx.From)
	if err != nil {
		return entities.NewProviderError(err, call, "nonce unavailable for %s", tx.From.Hex())
	}
	tx.Nonce = nonce
	return nil
}
