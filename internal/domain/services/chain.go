package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ChainReader is the connectivity collaborator used when building
// transactions. *ethereum.Client satisfies it.
type ChainReader interface {
	BlockTimestamp(ctx context.Context) (uint64, error)
	BaseFee(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// TokenMetadata resolves token decimals.
type TokenMetadata interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// TokenAllowance reads and encodes ERC20 approvals.
type TokenAllowance interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	PackApprove(spender common.Address, amount *big.Int) ([]byte, error)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
