package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// ERC20Client reads token metadata and allowances.
type ERC20Client struct {
	caller   Caller
	registry *entities.TokenRegistry
}

// NewERC20Client resolves decimals from registry first and registers every
// token it has to look up on-chain.
func NewERC20Client(caller Caller, registry *entities.TokenRegistry) *ERC20Client {
	if registry == nil {
		registry = entities.NewTokenRegistry()
	}
	return &ERC20Client{caller: caller, registry: registry}
}

func (c *ERC20Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if known, ok := c.registry.GetByAddress(token); ok {
		return known.Decimals, nil
	}

	parsed, err := ERC20ABI()
	if err != nil {
		return 0, err
	}
	out, err := callContract(ctx, c.caller, "erc20", parsed, token, "decimals")
	if err != nil {
		return 0, fmt.Errorf("decimals(%s): %w", token.Hex(), err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals(%s): unexpected return type %T", token.Hex(), out[0])
	}

	c.registry.Register(entities.Token{Address: token, Decimals: decimals})
	return decimals, nil
}

func (c *ERC20Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	out, err := callContract(ctx, c.caller, "erc20", parsed, token, "allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("allowance(%s): %w", token.Hex(), err)
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("allowance(%s): unexpected return type %T", token.Hex(), out[0])
	}
	return allowance, nil
}

func (c *ERC20Client) PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("approve", spender, amount)
}
