package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/infrastructure/metrics"
)

// Handlers groups the endpoints mounted by NewRouter. Nil handlers are not
// mounted.
type Handlers struct {
	Health *HealthHandler
	Quote  *QuoteHandler
	Price  *PriceHandler
	Pool   *PoolHandler
	Swap   *SwapHandler
}

// NewRouter wires middleware, the v1 API and the metrics endpoint.
func NewRouter(h Handlers, logger *zap.Logger, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}
	r.Use(CORS)

	if h.Health != nil {
		r.Get("/health", h.Health.Health)
	}
	r.Mount("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if h.Quote != nil {
			r.Get("/quote", h.Quote.GetQuote)
		}
		if h.Price != nil {
			r.Get("/price/{tokenAddress}", h.Price.GetPrice)
		}
		if h.Pool != nil {
			r.Get("/pool", h.Pool.GetPool)
		}
		if h.Swap != nil {
			r.Post("/swap", h.Swap.BuildSwap)
			r.Post("/approve", h.Swap.BuildApproval)
		}
	})

	return r
}
