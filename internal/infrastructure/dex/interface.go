package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// Caller executes read-only contract calls. *ethereum.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// RouterVersion selects the swap call shape of a deployment.
type RouterVersion string

const (
	// SwapRouterV1 takes the deadline inside the swap params.
	SwapRouterV1 RouterVersion = "v1"
	// SwapRouter02 has no deadline in the params; swaps are wrapped in
	// multicall(deadline, [call]).
	SwapRouter02 RouterVersion = "02"
)

// QuoteResult is the quoter's answer for one path.
type QuoteResult struct {
	AmountOut   *big.Int
	GasEstimate uint64
}

// ExactInputSingleParams mirrors ISwapRouter.ExactInputSingleParams. The
// deadline moves to multicall on SwapRouter02.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// ExactInputParams mirrors ISwapRouter.ExactInputParams.
type ExactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// Protocol is the contract/registry collaborator of the routing engine: pool
// registry, quoter and swap-call encoding for one concentrated-liquidity DEX.
type Protocol interface {
	Name() string

	// Router is the swap contract transactions are sent to.
	Router() common.Address

	// GetPool returns the zero address when no pool exists.
	GetPool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error)

	QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee entities.FeeTier, amountIn *big.Int) (*QuoteResult, error)

	// QuoteExactInput quotes a packed multi-hop path.
	QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (*QuoteResult, error)

	PackExactInputSingle(params ExactInputSingleParams) ([]byte, error)
	PackExactInput(params ExactInputParams) ([]byte, error)
}
