// Package handler exposes the checkout engine over HTTP. Handlers are thin:
// they decode requests, delegate to the domain, and map domain errors to the
// response taxonomy.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnQE180187/aura-checkout/internal/domain/auth"
	"github.com/AnQE180187/aura-checkout/internal/domain/order"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// PromotionStore is the admin-facing persistence surface for promotion codes.
type PromotionStore interface {
	promotion.Repository
	Create(ctx context.Context, c *promotion.Code) error
	Deactivate(ctx context.Context, code string) error
}

// Handler serves the checkout API.
type Handler struct {
	orders     *order.Service
	promotions *promotion.Validator
	promoStore PromotionStore
	security   *Security
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	promotions *promotion.Validator,
	promoStore PromotionStore,
	apikeys auth.Repository,
	pepper []byte,
) *Handler {
	return &Handler{
		orders:     orders,
		promotions: promotions,
		promoStore: promoStore,
		security:   NewSecurity(apikeys, pepper),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/checkout", h.Checkout)
	r.Post("/checkout/preview", h.PreviewCheckout)
	r.Post("/promotions/validate", h.ValidatePromotion)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.security.RequireScope(auth.ScopeManagePromotions))
		r.Post("/promotions", h.CreatePromotion)
		r.Post("/promotions/{code}/deactivate", h.DeactivatePromotion)
	})

	return r
}
