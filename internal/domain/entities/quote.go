package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Quote is the expected output of one path. A failed lookup is a Quote with a
// zero ToAmount and Error set, not a Go error.
type Quote struct {
	FromToken    common.Address `json:"fromToken"`
	ToToken      common.Address `json:"toToken"`
	FromAmount   *big.Int       `json:"fromAmount"`
	ToAmount     *big.Int       `json:"toAmount"`
	HumanAmount  string         `json:"humanAmount,omitempty"`
	PathID       string         `json:"pathId"`
	Path         Path           `json:"path"`
	PathType     PathType       `json:"pathType"`
	EstimatedGas uint64         `json:"estimatedGas"`
	Error        string         `json:"error,omitempty"`
	Alternatives []Quote        `json:"alternatives,omitempty"`
}

func NewQuote(path Path, amountIn, amountOut *big.Int, gasEstimate uint64) Quote {
	if amountOut == nil || amountOut.Sign() < 0 {
		amountOut = big.NewInt(0)
	}
	return Quote{
		FromToken:    path.TokenIn(),
		ToToken:      path.TokenOut(),
		FromAmount:   amountIn,
		ToAmount:     amountOut,
		PathID:       path.ID(),
		Path:         path,
		PathType:     path.Type(),
		EstimatedGas: gasEstimate,
	}
}

func NewFailedQuote(path Path, amountIn *big.Int, reason error) Quote {
	q := NewQuote(path, amountIn, nil, 0)
	if reason != nil {
		q.Error = reason.Error()
	}
	return q
}

// Viable reports whether the quote produced any output.
func (q Quote) Viable() bool {
	return q.ToAmount != nil && q.ToAmount.Sign() > 0
}
