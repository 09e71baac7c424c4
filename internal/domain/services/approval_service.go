package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

type ApprovalBuilderConfig struct {
	ChainID       *big.Int
	Router        common.Address
	WrappedNative common.Address
	FeeFactor     decimal.Decimal
	CallTimeout   time.Duration
}

type ApprovalRequest struct {
	Token  common.Address
	Owner  common.Address
	Amount *big.Int
	// Infinite approves MaxUint256 instead of Amount.
	Infinite bool
}

// ApprovalBuilder builds ERC20 approve transactions for the swap router.
type ApprovalBuilder struct {
	erc20  TokenAllowance
	fees   *feeModel
	cfg    ApprovalBuilderConfig
	logger *zap.Logger
}

func NewApprovalBuilder(erc20 TokenAllowance, chain ChainReader, cfg ApprovalBuilderConfig, logger *zap.Logger) *ApprovalBuilder {
	logger = orNop(logger)
	if cfg.FeeFactor.IsZero() {
		cfg.FeeFactor = DefaultFeeFactor
	}
	return &ApprovalBuilder{
		erc20:  erc20,
		fees:   &feeModel{chain: chain, timeout: cfg.CallTimeout, logger: logger},
		cfg:    cfg,
		logger: logger,
	}
}

// BuildApproval returns nil when the router can already spend what the
// approval would grant, or when the token is the native asset (or its wrapped
// form) paid for with the transaction value.
func (b *ApprovalBuilder) BuildApproval(ctx context.Context, req ApprovalRequest) (*entities.TransactionRequest, error) {
	if req.Token == (common.Address{}) || req.Owner == (common.Address{}) {
		return nil, entities.NewValidationError("build approval", "token and owner are required")
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, entities.NewValidationError("build approval", "amount must be greater than 0")
	}
	if req.Token == b.cfg.WrappedNative || req.Token == entities.NativeTokenAddress {
		return nil, nil
	}

	amount := req.Amount
	if req.Infinite {
		amount = math.MaxBig256
	}

	callCtx, cancel := withCallTimeout(ctx, b.cfg.CallTimeout)
	allowance, err := b.erc20.Allowance(callCtx, req.Token, req.Owner, b.cfg.Router)
	cancel()
	if err != nil {
		return nil, entities.NewProviderError(err, "build approval", "allowance unavailable")
	}
	if allowance.Cmp(amount) >= 0 {
		b.logger.Debug("allowance sufficient",
			zap.String("token", req.Token.Hex()),
			zap.String("allowance", allowance.String()))
		return nil, nil
	}

	data, err := b.erc20.PackApprove(b.cfg.Router, amount)
	if err != nil {
		return nil, entities.NewProviderError(err, "build approval", "encode approve call")
	}

	tx := &entities.TransactionRequest{
		From:    req.Owner,
		To:      req.Token,
		Data:    data,
		Value:   new(big.Int),
		ChainID: b.cfg.ChainID,
	}
	to := tx.To
	tx.Gas = b.fees.gasLimit(ctx, ethereum.CallMsg{From: tx.From, To: &to, Data: tx.Data}, approveGasMultiplier, defaultApproveGas, "approve")

	if err := b.fees.nonce(ctx, tx, "approve"); err != nil {
		return nil, err
	}
	if err := b.fees.applyFees(ctx, tx, b.cfg.FeeFactor, "approve"); err != nil {
		return nil, err
	}
	return tx, nil
}
