package entities

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// PathType distinguishes the single-pool call shape from the encoded-path one
type PathType string

const (
	PathSingle PathType = "single"
	PathMulti  PathType = "multi"
)

// MaxHopsCeiling bounds path discovery regardless of what callers request.
const MaxHopsCeiling = 3

// Path is an ordered token sequence with one fee tier per hop.
type Path struct {
	Tokens []common.Address `json:"tokens"`
	Fees   []FeeTier        `json:"fees"`
}

// NewPath validates len(fees) == len(tokens)-1, at least one hop and known fee
// tiers.
func NewPath(tokens []common.Address, fees []FeeTier) (Path, error) {
	if err := validatePath(tokens, fees); err != nil {
		return Path{}, err
	}
	return Path{
		Tokens: append([]common.Address(nil), tokens...),
		Fees:   append([]FeeTier(nil), fees...),
	}, nil
}

func validatePath(tokens []common.Address, fees []FeeTier) error {
	if len(tokens) < 2 {
		return NewValidationError("path", "path needs at least 2 tokens, got %d", len(tokens))
	}
	if len(fees) != len(tokens)-1 {
		return NewValidationError("path", "path has %d tokens but %d fees", len(tokens), len(fees))
	}
	for _, fee := range fees {
		if !fee.Valid() {
			return NewValidationError("path", "unsupported fee tier %d", fee)
		}
	}
	return nil
}

func (p Path) Validate() error {
	return validatePath(p.Tokens, p.Fees)
}

func (p Path) Type() PathType {
	if len(p.Tokens) == 2 {
		return PathSingle
	}
	return PathMulti
}

// Hops is the number of pools traversed
func (p Path) Hops() int {
	return len(p.Fees)
}

func (p Path) TokenIn() common.Address {
	if len(p.Tokens) == 0 {
		return common.Address{}
	}
	return p.Tokens[0]
}

func (p Path) TokenOut() common.Address {
	if len(p.Tokens) == 0 {
		return common.Address{}
	}
	return p.Tokens[len(p.Tokens)-1]
}

// ID is derived from the packed token/fee sequence, so the same route always
// yields the same identifier across requests and processes.
func (p Path) ID() string {
	encoded, err := EncodePath(p.Tokens, p.Fees)
	if err != nil {
		return ""
	}
	return hexutil.Encode(crypto.Keccak256(encoded)[:8])
}

func (p Path) String() string {
	var b strings.Builder
	for i, token := range p.Tokens {
		b.WriteString(token.Hex())
		if i < len(p.Fees) {
			b.WriteString(" -(")
			b.WriteString(p.Fees[i].Percent())
			b.WriteString(")-> ")
		}
	}
	return b.String()
}
