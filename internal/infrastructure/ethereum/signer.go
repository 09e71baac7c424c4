package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// Broadcaster sends signed transactions. *Client satisfies it.
type Broadcaster interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Signer signs TransactionRequests and broadcasts them. Keys are passed per
// call and never stored.
type Signer struct {
	backend Broadcaster
}

func NewSigner(backend Broadcaster) *Signer {
	return &Signer{backend: backend}
}

// ParsePrivateKey accepts a hex key with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, entities.NewValidationError("parse private key", "invalid private key")
	}
	return key, nil
}

// Sign returns the signed transaction. The request sender must match the key.
func (s *Signer) Sign(req *entities.TransactionRequest, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	if req.ChainID == nil {
		return nil, entities.NewValidationError("sign", "chain id is required")
	}
	sender := crypto.PubkeyToAddress(key.PublicKey)
	if req.From != (common.Address{}) && req.From != sender {
		return nil, entities.NewValidationError("sign", "key address %s does not match from %s", sender.Hex(), req.From.Hex())
	}

	signer := types.LatestSignerForChainID(req.ChainID)
	signed, err := types.SignTx(req.Transaction(), signer, key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// Send signs and broadcasts req, returning the transaction hash.
func (s *Signer) Send(ctx context.Context, req *entities.TransactionRequest, key *ecdsa.PrivateKey) (common.Hash, error) {
	signed, err := s.Sign(req, key)
	if err != nil {
		return common.Hash{}, err
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, entities.NewProviderError(err, "send", "broadcast failed")
	}
	return signed.Hash(), nil
}
