package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// TokenPrice is the USD price of one whole token.
type TokenPrice struct {
	Token      common.Address `json:"token"`
	QuoteToken common.Address `json:"quoteToken"`
	PriceUSD   string         `json:"priceUsd"`
	PathID     string         `json:"pathId,omitempty"`
	Path       *entities.Path `json:"path,omitempty"`
	Decimals   uint8          `json:"decimals"`
}

// PriceService prices tokens against the chain's USD stablecoin using the
// quote engine.
type PriceService struct {
	quotes   *QuoteAggregator
	tokens   TokenMetadata
	registry *entities.TokenRegistry
	usd      entities.Token
	logger   *zap.Logger
}

func NewPriceService(quotes *QuoteAggregator, tokens TokenMetadata, registry *entities.TokenRegistry, usd entities.Token, logger *zap.Logger) *PriceService {
	if registry == nil {
		registry = entities.NewTokenRegistry()
	}
	return &PriceService{
		quotes:   quotes,
		tokens:   tokens,
		registry: registry,
		usd:      usd,
		logger:   orNop(logger),
	}
}

// GetTokenPrice quotes 10^decimals of token into the USD stablecoin.
func (s *PriceService) GetTokenPrice(ctx context.Context, tokenAddress string) (*TokenPrice, error) {
	token, err := s.registry.Resolve("token", tokenAddress)
	if err != nil {
		return nil, err
	}

	decimals, err := s.tokens.Decimals(ctx, token)
	if err != nil {
		return nil, entities.NewProviderError(err, "price", "decimals unavailable for %s", token.Hex())
	}

	price := &TokenPrice{
		Token:      token,
		QuoteToken: s.usd.Address,
		Decimals:   decimals,
	}
	if token == s.usd.Address {
		price.PriceUSD = entities.FormatAmount(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.usd.Decimals)), nil), s.usd.Decimals)
		return price, nil
	}

	oneToken := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quote, err := s.quotes.GetQuote(ctx, token, s.usd.Address, oneToken, QuoteOptions{})
	if err != nil {
		return nil, err
	}

	price.PriceUSD = entities.FormatAmount(quote.ToAmount, s.usd.Decimals)
	price.PathID = quote.PathID
	price.Path = &quote.Path
	s.logger.Debug("token priced", zap.String("token", token.Hex()), zap.String("priceUsd", price.PriceUSD))
	return price, nil
}
