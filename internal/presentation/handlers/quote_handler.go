package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/services"
)

// QuoteService is satisfied by *services.RouterService.
type QuoteService interface {
	GetQuote(ctx context.Context, req services.QuoteRequest) (*services.QuoteResponse, error)
}

// QuoteHandler handles quote requests
type QuoteHandler struct {
	quotes QuoteService
	logger *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, logger: orNop(logger)}
}

// GetQuote handles GET /api/v1/quote
//
// Query: tokenIn, tokenOut (address or registered symbol), amountIn (base
// units) or amount (human units), and optional fee, pathId, maxHops.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := services.QuoteRequest{
		TokenIn:  query.Get("tokenIn"),
		TokenOut: query.Get("tokenOut"),
		AmountIn: query.Get("amountIn"),
		Amount:   query.Get("amount"),
		PathID:   query.Get("pathId"),
	}
	if req.TokenIn == "" || req.TokenOut == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "tokenIn and tokenOut are required")
		return
	}
	if req.AmountIn == "" && req.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "amountIn or amount is required")
		return
	}

	if v := query.Get("fee"); v != "" {
		fee, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_fee", "fee must be one of 100, 500, 3000, 10000")
			return
		}
		req.Fee = fee
	}
	if v := query.Get("maxHops"); v != "" {
		maxHops, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_max_hops", "maxHops must be an integer")
			return
		}
		req.MaxHops = maxHops
	}

	resp, err := h.quotes.GetQuote(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, "quote", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
