package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
)

// PoolFinder is satisfied by *services.PoolLocator.
type PoolFinder interface {
	FindBestPool(ctx context.Context, tokenA, tokenB common.Address) (entities.Pool, error)
}

type PoolHandler struct {
	pools  PoolFinder
	tokens *entities.TokenRegistry
	logger *zap.Logger
}

func NewPoolHandler(pools PoolFinder, tokens *entities.TokenRegistry, logger *zap.Logger) *PoolHandler {
	if tokens == nil {
		tokens = entities.NewTokenRegistry()
	}
	return &PoolHandler{pools: pools, tokens: tokens, logger: orNop(logger)}
}

// GetPool handles GET /api/v1/pool?tokenA=..&tokenB=..
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tokenA, err := h.tokens.Resolve("tokenA", query.Get("tokenA"))
	if err != nil {
		writeServiceError(w, h.logger, "pool", err)
		return
	}
	tokenB, err := h.tokens.Resolve("tokenB", query.Get("tokenB"))
	if err != nil {
		writeServiceError(w, h.logger, "pool", err)
		return
	}

	pool, err := h.pools.FindBestPool(r.Context(), tokenA, tokenB)
	if err != nil {
		writeServiceError(w, h.logger, "pool", err)
		return
	}

	writeJSON(w, http.StatusOK, pool)
}
