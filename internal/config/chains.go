package config

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
)

// Uniswap V3 deployments share addresses on the chains below.
var (
	uniswapV3Factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	quoterV2         = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	swapRouter       = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
)

// BNB Chain has its own V3 deployment and ships SwapRouter02 only.
var (
	bscFactory      = common.HexToAddress("0xdB1d10011AD0Ff90774D0C6Bb92e5C5c8b4461F7")
	bscQuoterV2     = common.HexToAddress("0x78D78E420Da98ad378D7799bE8f4AF69033EB077")
	bscSwapRouter02 = common.HexToAddress("0xB971eF87ede563556b2ED4b1C0b0019111Dd85d2")
)

// ChainConfig describes one supported network.
type ChainConfig struct {
	ID      uint64
	Name    string
	Factory common.Address
	Quoter  common.Address
	Router  common.Address
	// RouterVersion picks the swap call shape Router expects.
	RouterVersion dex.RouterVersion
	// NativeSymbol names the gas asset. It and NativeTokenAddress resolve
	// to WrappedNative.
	NativeSymbol string
	// WrappedNative is paid for with msg.value when it is the swap input.
	WrappedNative entities.Token
	// CommonBases are the intermediate candidates for multi-hop discovery,
	// in enumeration order.
	CommonBases []entities.Token
	// USDStable prices tokens for the price endpoint.
	USDStable entities.Token
}

func token(addr, symbol, name string, decimals uint8) entities.Token {
	return entities.Token{
		Address:  common.HexToAddress(addr),
		Symbol:   symbol,
		Name:     name,
		Decimals: decimals,
	}
}

var chains = map[uint64]ChainConfig{
	1: {
		ID:            1,
		NativeSymbol:  "ETH",
		Name:          "ethereum",
		Factory:       uniswapV3Factory,
		Quoter:        quoterV2,
		Router:        swapRouter,
		RouterVersion: dex.SwapRouterV1,
		WrappedNative: entities.WETH,
		CommonBases:   []entities.Token{entities.WETH, entities.USDC, entities.USDT, entities.DAI, entities.WBTC},
		USDStable:     entities.USDC,
	},
	10: {
		ID:            10,
		NativeSymbol:  "ETH",
		Name:          "optimism",
		Factory:       uniswapV3Factory,
		Quoter:        quoterV2,
		Router:        swapRouter,
		RouterVersion: dex.SwapRouterV1,
		WrappedNative: token("0x4200000000000000000000000000000000000006", "WETH", "Wrapped Ether", 18),
		CommonBases: []entities.Token{
			token("0x4200000000000000000000000000000000000006", "WETH", "Wrapped Ether", 18),
			token("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", "USDC", "USD Coin", 6),
			token("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58", "USDT", "Tether USD", 6),
		},
		USDStable: token("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", "USDC", "USD Coin", 6),
	},
	137: {
		ID:            137,
		NativeSymbol:  "MATIC",
		Name:          "polygon",
		Factory:       uniswapV3Factory,
		Quoter:        quoterV2,
		Router:        swapRouter,
		RouterVersion: dex.SwapRouterV1,
		WrappedNative: token("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", "WMATIC", "Wrapped Matic", 18),
		CommonBases: []entities.Token{
			token("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", "WMATIC", "Wrapped Matic", 18),
			token("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", "USDC", "USD Coin", 6),
			token("0xc2132D05D31c914a87C6611C10748AEb04B58e8F", "USDT", "Tether USD", 6),
			token("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", "WETH", "Wrapped Ether", 18),
		},
		USDStable: token("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", "USDC", "USD Coin", 6),
	},
	42161: {
		ID:            42161,
		NativeSymbol:  "ETH",
		Name:          "arbitrum",
		Factory:       uniswapV3Factory,
		Quoter:        quoterV2,
		Router:        swapRouter,
		RouterVersion: dex.SwapRouterV1,
		WrappedNative: token("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", "WETH", "Wrapped Ether", 18),
		CommonBases: []entities.Token{
			token("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", "WETH", "Wrapped Ether", 18),
			token("0xaf88d065e77c8cC2239327C5EDb3A432268e5831", "USDC", "USD Coin", 6),
			token("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", "USDT", "Tether USD", 6),
		},
		USDStable: token("0xaf88d065e77c8cC2239327C5EDb3A432268e5831", "USDC", "USD Coin", 6),
	},
	56: {
		ID:            56,
		NativeSymbol:  "BNB",
		Name:          "bsc",
		Factory:       bscFactory,
		Quoter:        bscQuoterV2,
		Router:        bscSwapRouter02,
		RouterVersion: dex.SwapRouter02,
		WrappedNative: token("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", "WBNB", "Wrapped BNB", 18),
		CommonBases: []entities.Token{
			token("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", "WBNB", "Wrapped BNB", 18),
			token("0x55d398326f99059fF775485246999027B3197955", "USDT", "Tether USD", 18),
			token("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "USDC", "USD Coin", 18),
			token("0x2170Ed0880ac9A755fd29B2688956BD959F933F8", "ETH", "Binance-Peg Ethereum", 18),
		},
		USDStable: token("0x55d398326f99059fF775485246999027B3197955", "USDT", "Tether USD", 18),
	},
}

// Chain returns the built-in configuration for chainID.
func Chain(chainID uint64) (ChainConfig, error) {
	c, ok := chains[chainID]
	if !ok {
		return ChainConfig{}, entities.NewValidationError("chain", "unsupported chain id %d, supported: %v", chainID, SupportedChainIDs())
	}
	return c, nil
}

func SupportedChainIDs() []uint64 {
	return []uint64{1, 10, 56, 137, 42161}
}

// BaseAddresses returns the common-base addresses in enumeration order.
func (c ChainConfig) BaseAddresses() []common.Address {
	out := make([]common.Address, 0, len(c.CommonBases))
	for _, t := range c.CommonBases {
		out = append(out, t.Address)
	}
	return out
}

// Registry seeds a token registry with every token the chain table knows.
func (c ChainConfig) Registry() *entities.TokenRegistry {
	r := entities.NewTokenRegistry()
	r.Register(c.WrappedNative)
	for _, t := range c.CommonBases {
		r.Register(t)
	}
	r.Register(c.USDStable)
	r.SetNative(c.NativeSymbol, c.WrappedNative)
	return r
}
