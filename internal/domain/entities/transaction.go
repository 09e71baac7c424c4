package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionRequest is an unsigned transaction ready for the signer. Exactly
// one fee model is populated: GasPrice, or MaxFeePerGas with
// MaxPriorityFeePerGas.
type TransactionRequest struct {
	From                 common.Address `json:"from"`
	To                   common.Address `json:"to"`
	Data                 hexutil.Bytes  `json:"data"`
	Value                *big.Int       `json:"value"`
	Gas                  uint64         `json:"gas"`
	ChainID              *big.Int       `json:"chainId"`
	Nonce                uint64         `json:"nonce"`
	GasPrice             *big.Int       `json:"gasPrice,omitempty"`
	MaxFeePerGas         *big.Int       `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *big.Int       `json:"maxPriorityFeePerGas,omitempty"`
	Metadata             *SwapMetadata  `json:"metadata,omitempty"`
}

// SwapMetadata carries the routing decision behind a swap transaction.
type SwapMetadata struct {
	PathID       string   `json:"pathId"`
	PathType     PathType `json:"pathType"`
	Path         Path     `json:"path"`
	AmountIn     *big.Int `json:"amountIn"`
	QuoteAmount  *big.Int `json:"quoteAmount"`
	MinAmountOut *big.Int `json:"minAmountOut"`
	Deadline     uint64   `json:"deadline"`
}

func (r *TransactionRequest) IsDynamicFee() bool {
	return r.MaxFeePerGas != nil
}

// Transaction converts the request into an unsigned go-ethereum transaction.
func (r *TransactionRequest) Transaction() *types.Transaction {
	value := r.Value
	if value == nil {
		value = new(big.Int)
	}
	to := r.To

	if r.IsDynamicFee() {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   r.ChainID,
			Nonce:     r.Nonce,
			GasTipCap: r.MaxPriorityFeePerGas,
			GasFeeCap: r.MaxFeePerGas,
			Gas:       r.Gas,
			To:        &to,
			Value:     value,
			Data:      r.Data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    r.Nonce,
		GasPrice: r.GasPrice,
		Gas:      r.Gas,
		To:       &to,
		Value:    value,
		Data:     r.Data,
	})
}
