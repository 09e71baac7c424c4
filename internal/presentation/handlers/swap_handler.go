package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/domain/services"
)

// SwapService is satisfied by *services.RouterService.
type SwapService interface {
	PrepareSwap(ctx context.Context, req services.SwapParams) (*entities.TransactionRequest, error)
	PrepareApproval(ctx context.Context, req services.ApprovalParams) (*entities.TransactionRequest, error)
}

const (
	maxBodyBytes = 1 << 16
	// maxDeadlineOffset caps deadlineOffset, in seconds.
	maxDeadlineOffset = 24 * 60 * 60
)

// SwapHandler builds unsigned swap and approval transactions.
type SwapHandler struct {
	swaps  SwapService
	logger *zap.Logger
}

func NewSwapHandler(swaps SwapService, logger *zap.Logger) *SwapHandler {
	return &SwapHandler{swaps: swaps, logger: orNop(logger)}
}

// SwapRequest is the POST /api/v1/swap body.
type SwapRequest struct {
	TokenIn        string `json:"tokenIn"`
	TokenOut       string `json:"tokenOut"`
	AmountIn       string `json:"amountIn,omitempty"`
	Amount         string `json:"amount,omitempty"`
	Fee            uint64 `json:"fee,omitempty"`
	PathID         string `json:"pathId,omitempty"`
	MaxHops        int    `json:"maxHops,omitempty"`
	Slippage       string `json:"slippage,omitempty"`
	From           string `json:"from"`
	Recipient      string `json:"recipient,omitempty"`
	DeadlineOffset uint64 `json:"deadlineOffset,omitempty"` // seconds
}

// ApproveRequest is the POST /api/v1/approve body.
type ApproveRequest struct {
	Token    string `json:"token"`
	Owner    string `json:"owner"`
	AmountIn string `json:"amountIn,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Infinite bool   `json:"infinite,omitempty"`
}

// ApproveResponse carries a nil transaction when the allowance already covers
// the amount.
type ApproveResponse struct {
	Required    bool                         `json:"required"`
	Transaction *entities.TransactionRequest `json:"transaction,omitempty"`
}

// BuildSwap handles POST /api/v1/swap
func (h *SwapHandler) BuildSwap(w http.ResponseWriter, r *http.Request) {
	var body SwapRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.DeadlineOffset > maxDeadlineOffset {
		writeError(w, http.StatusBadRequest, "invalid_deadline", fmt.Sprintf("deadlineOffset must be at most %d seconds", maxDeadlineOffset))
		return
	}

	tx, err := h.swaps.PrepareSwap(r.Context(), services.SwapParams{
		QuoteRequest: services.QuoteRequest{
			TokenIn:  body.TokenIn,
			TokenOut: body.TokenOut,
			AmountIn: body.AmountIn,
			Amount:   body.Amount,
			Fee:      body.Fee,
			PathID:   body.PathID,
			MaxHops:  body.MaxHops,
		},
		Slippage:       body.Slippage,
		From:           body.From,
		Recipient:      body.Recipient,
		DeadlineOffset: time.Duration(body.DeadlineOffset) * time.Second,
	})
	if err != nil {
		writeServiceError(w, h.logger, "swap", err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// BuildApproval handles POST /api/v1/approve
func (h *SwapHandler) BuildApproval(w http.ResponseWriter, r *http.Request) {
	var body ApproveRequest
	if !decodeBody(w, r, &body) {
		return
	}

	tx, err := h.swaps.PrepareApproval(r.Context(), services.ApprovalParams{
		Token:    body.Token,
		Owner:    body.Owner,
		AmountIn: body.AmountIn,
		Amount:   body.Amount,
		Infinite: body.Infinite,
	})
	if err != nil {
		writeServiceError(w, h.logger, "approve", err)
		return
	}

	writeJSON(w, http.StatusOK, ApproveResponse{Required: tx != nil, Transaction: tx})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}
