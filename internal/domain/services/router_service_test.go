package services

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
)

func newRouterService(e *engine) *RouterService {
	chain := NewMockChain()
	encoder := dex.NewUniswapV3Client(nil, dex.UniswapV3Addresses{Router: router})
	swaps := NewSwapBuilder(encoder, chain, SwapBuilderConfig{ChainID: big.NewInt(1), WrappedNative: weth, CallTimeout: time.Second}, nil)
	approvals := NewApprovalBuilder(&MockERC20{allowance: big.NewInt(0)}, chain, ApprovalBuilderConfig{ChainID: big.NewInt(1), Router: router, WrappedNative: weth}, nil)

	registry := entities.NewTokenRegistry()
	registry.Register(entities.Token{Address: tokenA, Symbol: "AAA", Decimals: 18})
	registry.Register(entities.Token{Address: tokenB, Symbol: "BBB", Decimals: 6})
	registry.SetNative("ETH", entities.Token{Address: weth, Symbol: "WETH", Decimals: 18})

	tokens := MockTokens{tokenA: 18, tokenB: 6, weth: 18}
	return NewRouterService(e.aggregator, swaps, approvals, tokens, registry, decimal.RequireFromString("0.005"), nil)
}

func TestRouterService_GetQuote(t *testing.T) {
	e := newEngine(weth)
	e.registry.AddPool(tokenA, tokenB, entities.Fee500)
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	e.quoter.SetOutput([]common.Address{tokenA, tokenB}, []entities.FeeTier{entities.Fee500}, 2_000_000)
	e.quoter.SetError([]common.Address{tokenA, tokenB}, []entities.FeeTier{entities.Fee3000}, context.DeadlineExceeded)
	s := newRouterService(e)

	resp, err := s.GetQuote(context.Background(), QuoteRequest{TokenIn: "AAA", TokenOut: tokenB.Hex(), Amount: "1.5"})
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}
	if resp.FromAmount.String() != "1500000000000000000" {
		t.Errorf("FromAmount = %s, want 1.5e18", resp.FromAmount)
	}
	if resp.HumanAmount != "2.00000000" {
		t.Errorf("HumanAmount = %s, want 2.00000000", resp.HumanAmount)
	}
	if len(resp.AvailablePaths) != 1 {
		t.Errorf("len(AvailablePaths) = %d, want only the viable path", len(resp.AvailablePaths))
	}
}

func TestRouterService_GetQuoteValidation(t *testing.T) {
	s := newRouterService(newEngine())

	tests := []struct {
		name string
		req  QuoteRequest
	}{
		{"same token", QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: "AAA", AmountIn: "1"}},
		{"bad address", QuoteRequest{TokenIn: "0x123", TokenOut: tokenB.Hex(), AmountIn: "1"}},
		{"missing amount", QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex()}},
		{"zero amount", QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex(), AmountIn: "0"}},
		{"bad fee", QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex(), AmountIn: "1", Fee: 42}},
		{"negative hops", QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex(), AmountIn: "1", MaxHops: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.GetQuote(context.Background(), tt.req); !entities.IsValidation(err) {
				t.Errorf("GetQuote() error = %v, want validation error", err)
			}
		})
	}
}

func TestRouterService_PrepareSwap(t *testing.T) {
	e := newEngine()
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	e.quoter.SetOutput([]common.Address{tokenA, tokenB}, []entities.FeeTier{entities.Fee3000}, 1_000_000)
	s := newRouterService(e)

	tx, err := s.PrepareSwap(context.Background(), SwapParams{
		QuoteRequest: QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex(), AmountIn: "5000"},
		Slippage:     "0.01",
		From:         wallet.Hex(),
	})
	if err != nil {
		t.Fatalf("PrepareSwap() error = %v", err)
	}
	if tx.Metadata.MinAmountOut.Int64() != 990_000 {
		t.Errorf("MinAmountOut = %s, want 990000", tx.Metadata.MinAmountOut)
	}
	if tx.Metadata.AmountIn.Int64() != 5000 {
		t.Errorf("AmountIn = %s, want 5000", tx.Metadata.AmountIn)
	}

	_, err = s.PrepareSwap(context.Background(), SwapParams{
		QuoteRequest: QuoteRequest{TokenIn: tokenA.Hex(), TokenOut: tokenB.Hex(), AmountIn: "5000"},
		Slippage:     "2",
		From:         wallet.Hex(),
	})
	if !entities.IsValidation(err) {
		t.Errorf("PrepareSwap(slippage=2) error = %v, want validation error", err)
	}
}

func TestRouterService_PrepareApproval(t *testing.T) {
	s := newRouterService(newEngine())

	tx, err := s.PrepareApproval(context.Background(), ApprovalParams{Token: "BBB", Owner: wallet.Hex(), Amount: "10"})
	if err != nil {
		t.Fatalf("PrepareApproval() error = %v", err)
	}
	if tx == nil || tx.To != tokenB {
		t.Fatalf("PrepareApproval() = %+v, want approve tx on BBB", tx)
	}
}

func TestRouterService_NativeInput(t *testing.T) {
	e := newEngine()
	e.registry.AddPool(weth, tokenB, entities.Fee500)
	e.quoter.SetOutput([]common.Address{weth, tokenB}, []entities.FeeTier{entities.Fee500}, 3_000_000_000)
	s := newRouterService(e)

	for _, tokenIn := range []string{entities.NativeTokenAddress.Hex(), "ETH"} {
		t.Run(tokenIn, func(t *testing.T) {
			resp, err := s.GetQuote(context.Background(), QuoteRequest{TokenIn: tokenIn, TokenOut: "BBB", Amount: "1"})
			if err != nil {
				t.Fatalf("GetQuote() error = %v", err)
			}
			if resp.FromAmount.String() != "1000000000000000000" {
				t.Errorf("FromAmount = %s, want 1e18", resp.FromAmount)
			}
			if resp.Path.Tokens[0] != weth {
				t.Errorf("path starts at %s, want wrapped native", resp.Path.Tokens[0].Hex())
			}

			tx, err := s.PrepareSwap(context.Background(), SwapParams{
				QuoteRequest: QuoteRequest{TokenIn: tokenIn, TokenOut: "BBB", Amount: "1"},
				From:         wallet.Hex(),
			})
			if err != nil {
				t.Fatalf("PrepareSwap() error = %v", err)
			}
			if tx.Value.Cmp(resp.FromAmount) != 0 {
				t.Errorf("Value = %s, want amountIn %s", tx.Value, resp.FromAmount)
			}

			approval, err := s.PrepareApproval(context.Background(), ApprovalParams{Token: tokenIn, Owner: wallet.Hex(), Amount: "1"})
			if err != nil {
				t.Fatalf("PrepareApproval() error = %v", err)
			}
			if approval != nil {
				t.Errorf("PrepareApproval() = %+v, want no approval for the native asset", approval)
			}
		})
	}
}

func TestPriceService_GetTokenPrice(t *testing.T) {
	e := newEngine()
	e.registry.AddPool(tokenA, tokenB, entities.Fee500)
	e.quoter.SetOutput([]common.Address{tokenA, tokenB}, []entities.FeeTier{entities.Fee500}, 2_500_123_456)

	usd := entities.Token{Address: tokenB, Symbol: "BBB", Decimals: 6}
	s := NewPriceService(e.aggregator, MockTokens{tokenA: 18, tokenB: 6}, nil, usd, nil)

	price, err := s.GetTokenPrice(context.Background(), tokenA.Hex())
	if err != nil {
		t.Fatalf("GetTokenPrice() error = %v", err)
	}
	if price.PriceUSD != "2500.12345600" {
		t.Errorf("PriceUSD = %s, want 2500.12345600", price.PriceUSD)
	}

	stable, err := s.GetTokenPrice(context.Background(), tokenB.Hex())
	if err != nil || stable.PriceUSD != "1.00000000" {
		t.Errorf("GetTokenPrice(stable) = %+v, %v", stable, err)
	}
}
