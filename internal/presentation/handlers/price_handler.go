package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/services"
)

// PriceService is satisfied by *services.PriceService.
type PriceService interface {
	GetTokenPrice(ctx context.Context, tokenAddress string) (*services.TokenPrice, error)
}

type PriceHandler struct {
	prices PriceService
	logger *zap.Logger
	now    func() time.Time
}

func NewPriceHandler(prices PriceService, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{
		prices: prices,
		logger: orNop(logger),
		now:    time.Now,
	}
}

type PriceResponse struct {
	*services.TokenPrice
	UpdatedAt string `json:"updatedAt"`
}

// GetPrice handles GET /api/v1/price/{tokenAddress}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	tokenAddr := chi.URLParam(r, "tokenAddress")
	if tokenAddr == "" {
		writeError(w, http.StatusBadRequest, "missing_token", "token address is required")
		return
	}

	price, err := h.prices.GetTokenPrice(r.Context(), tokenAddr)
	if err != nil {
		writeServiceError(w, h.logger, "price", err)
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{
		TokenPrice: price,
		UpdatedAt:  h.now().UTC().Format(time.RFC3339),
	})
}
