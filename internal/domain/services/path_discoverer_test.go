package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

func TestDiscoverPaths_SingleTier(t *testing.T) {
	e := newEngine(weth)
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)

	paths, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenB, 1)
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("DiscoverPaths() returned %d paths, want 1", len(paths))
	}
	if paths[0].Type() != entities.PathSingle || paths[0].Fees[0] != entities.Fee3000 {
		t.Errorf("DiscoverPaths()[0] = %s, want single hop at 0.30%%", paths[0])
	}
}

func TestDiscoverPaths_TwoHop(t *testing.T) {
	e := newEngine(tokenB)
	e.registry.AddPool(tokenA, tokenB, entities.Fee500)
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	e.registry.AddPool(tokenB, tokenC, entities.Fee10000)

	paths, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenC, 2)
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("DiscoverPaths() returned %d paths, want 1", len(paths))
	}

	want, _ := entities.NewPath([]common.Address{tokenA, tokenB, tokenC}, []entities.FeeTier{entities.Fee500, entities.Fee10000})
	if paths[0].ID() != want.ID() {
		t.Errorf("DiscoverPaths()[0] = %s, want %s (first tier per hop)", paths[0], want)
	}
}

func TestDiscoverPaths_Order(t *testing.T) {
	e := newEngine(weth, tokenC)
	e.registry.AddPool(tokenA, tokenB, entities.Fee10000)
	e.registry.AddPool(tokenA, tokenB, entities.Fee100)
	for _, base := range []common.Address{weth, tokenC} {
		e.registry.AddPool(tokenA, base, entities.Fee3000)
		e.registry.AddPool(base, tokenB, entities.Fee3000)
	}

	paths, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenB, 2)
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}

	want := []string{
		mustPath(t, []common.Address{tokenA, tokenB}, entities.Fee100).ID(),
		mustPath(t, []common.Address{tokenA, tokenB}, entities.Fee10000).ID(),
		mustPath(t, []common.Address{tokenA, weth, tokenB}, entities.Fee3000, entities.Fee3000).ID(),
		mustPath(t, []common.Address{tokenA, tokenC, tokenB}, entities.Fee3000, entities.Fee3000).ID(),
	}
	if len(paths) != len(want) {
		t.Fatalf("DiscoverPaths() returned %d paths, want %d", len(paths), len(want))
	}
	for i := range want {
		if paths[i].ID() != want[i] {
			t.Errorf("DiscoverPaths()[%d] = %s", i, paths[i])
		}
	}
}

func TestDiscoverPaths_MaxHops(t *testing.T) {
	e := newEngine(tokenB, tokenC)
	e.registry.AddPool(tokenA, tokenB, entities.Fee500)
	e.registry.AddPool(tokenB, tokenC, entities.Fee500)
	e.registry.AddPool(tokenC, tokenD, entities.Fee500)

	tests := []struct {
		name      string
		maxHops   int
		wantPaths int
	}{
		{"one hop", 1, 0},
		{"two hops", 2, 0},
		{"three hops", 3, 1},
		{"clamped", 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenD, tt.maxHops)
			if err != nil {
				t.Fatalf("DiscoverPaths() error = %v", err)
			}
			if len(paths) != tt.wantPaths {
				t.Fatalf("DiscoverPaths() returned %d paths, want %d", len(paths), tt.wantPaths)
			}
			for _, p := range paths {
				if p.Hops() > tt.maxHops || p.Hops() > entities.MaxHopsCeiling {
					t.Errorf("path %s exceeds maxHops %d", p, tt.maxHops)
				}
			}
		})
	}

	if _, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenD, -1); !entities.IsValidation(err) {
		t.Errorf("DiscoverPaths(maxHops=-1) error = %v, want validation error", err)
	}
}

func TestDiscoverPaths_CachesResults(t *testing.T) {
	e := newEngine(weth)
	ctx := context.Background()

	if _, err := e.discoverer.DiscoverPaths(ctx, tokenA, tokenB, 2); err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}
	calls := e.registry.Total()
	if calls == 0 {
		t.Fatal("first discovery issued no registry calls")
	}

	paths, err := e.discoverer.DiscoverPaths(ctx, tokenA, tokenB, 2)
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("DiscoverPaths() = %d paths, want cached empty result", len(paths))
	}
	if e.registry.Total() != calls {
		t.Errorf("cached discovery issued %d more registry calls", e.registry.Total()-calls)
	}
}

func TestDiscoverPaths_LookupFailure(t *testing.T) {
	e := newEngine()
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	e.registry.FailPool(tokenA, tokenB, entities.Fee500, errors.New("rate limited"))
	ctx := context.Background()

	paths, err := e.discoverer.DiscoverPaths(ctx, tokenA, tokenB, 1)
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("DiscoverPaths() returned %d paths, want 1", len(paths))
	}

	// incomplete results are not cached
	before := e.registry.Calls(tokenA, tokenB, entities.Fee500)
	_, _ = e.discoverer.DiscoverPaths(ctx, tokenA, tokenB, 1)
	if e.registry.Calls(tokenA, tokenB, entities.Fee500) != before+1 {
		t.Errorf("failed lookup was not retried")
	}
}

func TestDiscoverPaths_ThreeHopLooksUpEachPairOnce(t *testing.T) {
	bases := []common.Address{weth, tokenC, tokenD}
	e := newEngine(bases...)

	if _, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenB, 3); err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}

	// direct, tokenIn-base, base-tokenOut and the three unordered base pairs
	wantPairs := 1 + len(bases) + len(bases) + 3
	if got, want := e.registry.Total(), wantPairs*len(entities.FeeTiers); got != want {
		t.Errorf("registry calls = %d, want %d", got, want)
	}
	for i, b1 := range bases {
		for _, b2 := range bases[i+1:] {
			for _, fee := range entities.FeeTiers {
				if n := e.registry.Calls(b1, b2, fee); n != 1 {
					t.Errorf("Calls(%s, %s, %d) = %d, want 1", b1.Hex(), b2.Hex(), fee, n)
				}
			}
		}
	}
}

func TestDiscoverPaths_StuckLookupTimesOut(t *testing.T) {
	e := newTimedEngine(50*time.Millisecond, weth)
	e.registry.AddPool(tokenA, tokenB, entities.Fee3000)
	e.registry.AddPool(tokenA, weth, entities.Fee500)
	e.registry.AddPool(weth, tokenB, entities.Fee500)
	e.registry.BlockPool(tokenA, tokenB, entities.Fee500)

	start := time.Now()
	paths, err := e.discoverer.DiscoverPaths(context.Background(), tokenA, tokenB, 2)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("DiscoverPaths() took %s with a stuck pool lookup", elapsed)
	}
	if err != nil {
		t.Fatalf("DiscoverPaths() error = %v", err)
	}

	want := []entities.Path{
		mustPath(t, []common.Address{tokenA, tokenB}, entities.Fee3000),
		mustPath(t, []common.Address{tokenA, weth, tokenB}, entities.Fee500, entities.Fee500),
	}
	if len(paths) != len(want) {
		t.Fatalf("DiscoverPaths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i].ID() != want[i].ID() {
			t.Errorf("DiscoverPaths()[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func mustPath(t *testing.T, tokens []common.Address, fees ...entities.FeeTier) entities.Path {
	t.Helper()
	p, err := entities.NewPath(tokens, fees)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
