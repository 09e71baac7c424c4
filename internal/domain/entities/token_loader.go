package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// TokenConfig represents token configuration from JSON
type TokenConfig struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// TokensConfig represents the tokens.json structure
type TokensConfig struct {
	Tokens []TokenConfig `json:"tokens"`
}

// TokenRegistry holds known tokens indexed by address and symbol. It is safe
// for concurrent use; the decimals lookup registers tokens it resolves on-chain.
type TokenRegistry struct {
	mu        sync.RWMutex
	byAddress map[common.Address]Token
	bySymbol  map[string]Token
	all       []Token

	// native is the wrapped token NativeTokenAddress and nativeSymbol stand for.
	native       *Token
	nativeSymbol string
}

// NewTokenRegistry creates a new token registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		byAddress: make(map[common.Address]Token),
		bySymbol:  make(map[string]Token),
		all:       make([]Token, 0),
	}
}

// LoadFromFile loads tokens from a JSON config file
func (r *TokenRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token config: %w", err)
	}
	return r.Load(data)
}

// Load registers every token in a tokens.json document.
func (r *TokenRegistry) Load(data []byte) error {
	var config TokensConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse token config: %w", err)
	}

	for _, tc := range config.Tokens {
		addr, err := ParseAddress("token address", tc.Address)
		if err != nil {
			return fmt.Errorf("token %s: %w", tc.Symbol, err)
		}
		r.Register(Token{
			Address:  addr,
			Symbol:   tc.Symbol,
			Name:     tc.Name,
			Decimals: tc.Decimals,
		})
	}

	return nil
}

// Register adds a token to the registry, replacing any entry with the same
// address.
func (r *TokenRegistry) Register(token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAddress[token.Address]; exists {
		for i := range r.all {
			if r.all[i].Address == token.Address {
				r.all[i] = token
			}
		}
	} else {
		r.all = append(r.all, token)
	}
	r.byAddress[token.Address] = token
	if token.Symbol != "" {
		r.bySymbol[strings.ToUpper(token.Symbol)] = token
	}
}

// SetNative makes the native asset, addressed by NativeTokenAddress or by
// symbol, resolve to its wrapped token. Swaps from the wrapped token are paid
// with the transaction value.
func (r *TokenRegistry) SetNative(symbol string, wrapped Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.native = &wrapped
	r.nativeSymbol = strings.ToUpper(symbol)
}

// GetByAddress returns a token by its address. NativeTokenAddress reports the
// native asset with the wrapped token's decimals.
func (r *TokenRegistry) GetByAddress(addr common.Address) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if addr == NativeTokenAddress && r.native != nil {
		return Token{Address: addr, Symbol: r.nativeSymbol, Decimals: r.native.Decimals}, true
	}
	token, ok := r.byAddress[addr]
	return token, ok
}

// GetBySymbol returns a token by its symbol, case-insensitively
func (r *TokenRegistry) GetBySymbol(symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.bySymbol[strings.ToUpper(symbol)]
	return token, ok
}

// Resolve accepts either a hex address or a registered symbol. The native
// asset resolves to its wrapped token once SetNative has been called.
func (r *TokenRegistry) Resolve(field, value string) (common.Address, error) {
	if !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "0X") {
		if wrapped, ok := r.nativeFor(value, common.Address{}); ok {
			return wrapped, nil
		}
		if token, ok := r.GetBySymbol(value); ok {
			return token.Address, nil
		}
	}

	addr, err := ParseAddress(field, value)
	if err != nil {
		return common.Address{}, err
	}
	if wrapped, ok := r.nativeFor("", addr); ok {
		return wrapped, nil
	}
	return addr, nil
}

func (r *TokenRegistry) nativeFor(symbol string, addr common.Address) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.native == nil {
		return common.Address{}, false
	}
	if addr == NativeTokenAddress || (symbol != "" && strings.ToUpper(symbol) == r.nativeSymbol) {
		return r.native.Address, true
	}
	return common.Address{}, false
}

// GetAll returns all registered tokens
func (r *TokenRegistry) GetAll() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Token(nil), r.all...)
}

// Count returns the number of registered tokens
func (r *TokenRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}
