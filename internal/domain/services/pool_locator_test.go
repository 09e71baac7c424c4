package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/cache"
)

func TestPoolLocator_CachesPresentPools(t *testing.T) {
	e := newEngine()
	want := e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := e.locator.LocatePool(ctx, tokenA, tokenB, entities.Fee3000)
		if err != nil {
			t.Fatalf("LocatePool() error = %v", err)
		}
		if got != want {
			t.Errorf("LocatePool() = %s, want %s", got.Hex(), want.Hex())
		}
	}
	// reversed order hits the same entry
	if _, err := e.locator.LocatePool(ctx, tokenB, tokenA, entities.Fee3000); err != nil {
		t.Fatalf("LocatePool() error = %v", err)
	}
	if calls := e.registry.Calls(tokenA, tokenB, entities.Fee3000); calls != 1 {
		t.Errorf("registry calls = %d, want 1 within TTL", calls)
	}

	e.clock.Advance(cache.DefaultTTL)
	if _, err := e.locator.LocatePool(ctx, tokenA, tokenB, entities.Fee3000); err != nil {
		t.Fatalf("LocatePool() error = %v", err)
	}
	if calls := e.registry.Calls(tokenA, tokenB, entities.Fee3000); calls != 2 {
		t.Errorf("registry calls = %d, want 2 after TTL expiry", calls)
	}
}

func TestPoolLocator_DoesNotCacheAbsentPools(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := e.locator.LocatePool(ctx, tokenA, tokenB, entities.Fee500)
		if err != nil {
			t.Fatalf("LocatePool() error = %v", err)
		}
		if got != (common.Address{}) {
			t.Errorf("LocatePool() = %s, want zero address", got.Hex())
		}
	}
	if calls := e.registry.Calls(tokenA, tokenB, entities.Fee500); calls != 2 {
		t.Errorf("registry calls = %d, want 2", calls)
	}

	// a pool created later is found on the next lookup
	want := e.registry.AddPool(tokenA, tokenB, entities.Fee500)
	got, _ := e.locator.LocatePool(ctx, tokenA, tokenB, entities.Fee500)
	if got != want {
		t.Errorf("LocatePool() = %s, want newly created %s", got.Hex(), want.Hex())
	}
}

func TestPoolLocator_Validation(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name   string
		tokenA common.Address
		tokenB common.Address
		fee    entities.FeeTier
	}{
		{"zero tokenA", common.Address{}, tokenB, entities.Fee500},
		{"same token", tokenA, tokenA, entities.Fee500},
		{"unknown fee", tokenA, tokenB, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.locator.LocatePool(context.Background(), tt.tokenA, tt.tokenB, tt.fee)
			if !entities.IsValidation(err) {
				t.Errorf("LocatePool() error = %v, want validation error", err)
			}
		})
	}
	if e.registry.Total() != 0 {
		t.Errorf("validation failures issued %d registry calls", e.registry.Total())
	}
}

func TestPoolLocator_ProviderError(t *testing.T) {
	e := newEngine()
	rpcErr := errors.New("connection reset")
	e.registry.FailPool(tokenA, tokenB, entities.Fee100, rpcErr)

	_, err := e.locator.LocatePool(context.Background(), tokenA, tokenB, entities.Fee100)
	if !entities.IsProvider(err) || !errors.Is(err, rpcErr) {
		t.Errorf("LocatePool() error = %v, want provider error wrapping %v", err, rpcErr)
	}
}

func TestPoolLocator_FindBestPool(t *testing.T) {
	t.Run("returns a present tier", func(t *testing.T) {
		e := newEngine()
		want := e.registry.AddPool(tokenA, tokenB, entities.Fee10000)
		e.registry.FailPool(tokenA, tokenB, entities.Fee100, errors.New("timeout"))

		pool, err := e.locator.FindBestPool(context.Background(), tokenA, tokenB)
		if err != nil {
			t.Fatalf("FindBestPool() error = %v", err)
		}
		if pool.Address != want || pool.Fee != entities.Fee10000 {
			t.Errorf("FindBestPool() = %+v, want %s at fee 10000", pool, want.Hex())
		}
	})

	t.Run("no pool at any tier", func(t *testing.T) {
		e := newEngine()
		_, err := e.locator.FindBestPool(context.Background(), tokenA, tokenB)
		if !entities.IsProvider(err) || !entities.IsNoLiquidity(err) {
			t.Errorf("FindBestPool() error = %v, want no-liquidity provider error", err)
		}
		if e.registry.Total() != len(entities.FeeTiers) {
			t.Errorf("registry calls = %d, want one per tier", e.registry.Total())
		}
	})

	t.Run("invalid pair", func(t *testing.T) {
		e := newEngine()
		if _, err := e.locator.FindBestPool(context.Background(), tokenA, tokenA); !entities.IsValidation(err) {
			t.Errorf("FindBestPool() error = %v, want validation error", err)
		}
	})
}
