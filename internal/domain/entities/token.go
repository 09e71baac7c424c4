package entities

import (
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
}

// Equal reports whether both tokens share an address. Addresses are parsed
// from hex, so the comparison is case-insensitive on the textual form.
func (t Token) Equal(other Token) bool {
	return t.Address == other.Address
}

// NativeTokenAddress is the placeholder used by wallets and aggregators for the
// chain's native asset.
var NativeTokenAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

var hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ParseAddress validates a 0x-prefixed, 40 hex digit address. The zero address
// is rejected because it is the "absent" sentinel on-chain.
func ParseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, NewValidationError("parse address", "%s is required", field)
	}
	if !hexAddressPattern.MatchString(value) {
		return common.Address{}, NewValidationError("parse address", "invalid %s format: %s", field, value)
	}
	addr := common.HexToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, NewValidationError("parse address", "%s must not be the zero address", field)
	}
	return addr, nil
}

// WETH is the canonical Wrapped Ether token on Ethereum mainnet
var WETH = Token{
	Address:  common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	Symbol:   "WETH",
	Name:     "Wrapped Ether",
	Decimals: 18,
}

// USDC is USD Coin on Ethereum mainnet
var USDC = Token{
	Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	Symbol:   "USDC",
	Name:     "USD Coin",
	Decimals: 6,
}

// USDT is Tether USD on Ethereum mainnet
var USDT = Token{
	Address:  common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
	Symbol:   "USDT",
	Name:     "Tether USD",
	Decimals: 6,
}

// DAI is Dai Stablecoin on Ethereum mainnet
var DAI = Token{
	Address:  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	Symbol:   "DAI",
	Name:     "Dai Stablecoin",
	Decimals: 18,
}

var WBTC = Token{
	Address:  common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"),
	Symbol:   "WBTC",
	Name:     "Wrapped BTC",
	Decimals: 8,
}
