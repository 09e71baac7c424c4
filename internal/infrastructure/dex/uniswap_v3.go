package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

// UniswapV3Addresses are the contracts of one V3 deployment.
type UniswapV3Addresses struct {
	Factory common.Address
	Quoter  common.Address
	Router  common.Address

	// RouterVersion defaults to SwapRouterV1.
	RouterVersion RouterVersion
}

var _ Protocol = (*UniswapV3Client)(nil)

// UniswapV3Client talks to the V3 factory, QuoterV2 and SwapRouter.
type UniswapV3Client struct {
	caller Caller
	addrs  UniswapV3Addresses
}

func NewUniswapV3Client(caller Caller, addrs UniswapV3Addresses) *UniswapV3Client {
	if addrs.RouterVersion == "" {
		addrs.RouterVersion = SwapRouterV1
	}
	return &UniswapV3Client{
		caller: caller,
		addrs:  addrs,
	}
}

func (c *UniswapV3Client) Name() string {
	return "uniswap_v3"
}

func (c *UniswapV3Client) Router() common.Address {
	return c.addrs.Router
}

// GetPool calls factory.getPool. The factory sorts the pair itself, but the
// call is made with sorted tokens so equal requests produce equal calldata.
func (c *UniswapV3Client) GetPool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, err
	}

	token0, token1 := entities.SortTokens(tokenA, tokenB)
	out, err := c.call(ctx, parsed, c.addrs.Factory, "getPool", token0, token1, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, err
	}

	pool, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getPool: unexpected return type %T", out[0])
	}
	return pool, nil
}

type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

func (c *UniswapV3Client) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee entities.FeeTier, amountIn *big.Int) (*QuoteResult, error) {
	parsed, err := QuoterV2ABI()
	if err != nil {
		return nil, err
	}

	params := quoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	}
	out, err := c.call(ctx, parsed, c.addrs.Quoter, "quoteExactInputSingle", params)
	if err != nil {
		return nil, fmt.Errorf("quoter call failed: %w", err)
	}
	return quoteResult(out)
}

func (c *UniswapV3Client) QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (*QuoteResult, error) {
	parsed, err := QuoterV2ABI()
	if err != nil {
		return nil, err
	}

	out, err := c.call(ctx, parsed, c.addrs.Quoter, "quoteExactInput", path, amountIn)
	if err != nil {
		return nil, fmt.Errorf("quoter call failed: %w", err)
	}
	return quoteResult(out)
}

// quoteResult reads (amountOut, ..., gasEstimate) from either quoter method.
func quoteResult(out []interface{}) (*QuoteResult, error) {
	if len(out) != 4 {
		return nil, fmt.Errorf("invalid quoter response: %d values", len(out))
	}
	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid quoter amountOut type %T", out[0])
	}
	gas, ok := out[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid quoter gasEstimate type %T", out[3])
	}

	result := &QuoteResult{AmountOut: amountOut}
	if gas.IsUint64() {
		result.GasEstimate = gas.Uint64()
	}
	return result, nil
}

func (c *UniswapV3Client) PackExactInputSingle(params ExactInputSingleParams) ([]byte, error) {
	if params.SqrtPriceLimitX96 == nil {
		params.SqrtPriceLimitX96 = big.NewInt(0)
	}
	if c.addrs.RouterVersion == SwapRouter02 {
		return packMulticall(params.Deadline, "exactInputSingle", router02ExactInputSingleParams{
			TokenIn:           params.TokenIn,
			TokenOut:          params.TokenOut,
			Fee:               params.Fee,
			Recipient:         params.Recipient,
			AmountIn:          params.AmountIn,
			AmountOutMinimum:  params.AmountOutMinimum,
			SqrtPriceLimitX96: params.SqrtPriceLimitX96,
		})
	}

	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("exactInputSingle", params)
}

func (c *UniswapV3Client) PackExactInput(params ExactInputParams) ([]byte, error) {
	if c.addrs.RouterVersion == SwapRouter02 {
		return packMulticall(params.Deadline, "exactInput", router02ExactInputParams{
			Path:             params.Path,
			Recipient:        params.Recipient,
			AmountIn:         params.AmountIn,
			AmountOutMinimum: params.AmountOutMinimum,
		})
	}

	parsed, err := SwapRouterABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("exactInput", params)
}

type router02ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type router02ExactInputParams struct {
	Path             []byte
	Recipient        common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// packMulticall packs one SwapRouter02 call and wraps it in
// multicall(deadline, [call]) so the router still enforces the deadline.
func packMulticall(deadline *big.Int, method string, params interface{}) ([]byte, error) {
	parsed, err := SwapRouter02ABI()
	if err != nil {
		return nil, err
	}
	inner, err := parsed.Pack(method, params)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	if deadline == nil {
		return nil, fmt.Errorf("pack %s: missing deadline", method)
	}
	return parsed.Pack("multicall", deadline, [][]byte{inner})
}

func (c *UniswapV3Client) call(ctx context.Context, parsed abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	return callContract(ctx, c.caller, c.Name(), parsed, to, method, args...)
}

// callContract packs, executes and unpacks one eth_call, recording its
// latency under the calling protocol's name.
func callContract(ctx context.Context, caller Caller, protocol string, parsed abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	start := time.Now()
	result, err := caller.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	})
	metrics.RPCDuration.WithLabelValues(protocol, method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	out, err := parsed.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty response", method)
	}
	return out, nil
}
