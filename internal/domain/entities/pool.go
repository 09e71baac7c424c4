package entities

import (
	"github.com/ethereum/go-ethereum/common"
)

// Pool is a V3 pool resolved for a token pair at one fee tier.
type Pool struct {
	Address common.Address `json:"address"`
	TokenA  common.Address `json:"tokenA"`
	TokenB  common.Address `json:"tokenB"`
	Fee     FeeTier        `json:"fee"`
}

// Exists reports whether the factory returned a deployed pool; the factory
// answers with the zero address for pairs that were never created.
func (p Pool) Exists() bool {
	return p.Address != (common.Address{})
}

// SortTokens sorts two addresses in ascending order (V3 factory convention)
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if tokenA.Cmp(tokenB) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}
