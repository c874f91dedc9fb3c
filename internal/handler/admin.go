package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

type createPromotionRequest struct {
	Code           string           `json:"code"`
	Description    string           `json:"description,omitempty"`
	DiscountType   string           `json:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
}

func (req *createPromotionRequest) validate() string {
	switch {
	case promotion.Normalize(req.Code) == "":
		return "code is required"
	case req.DiscountType != string(promotion.DiscountPercentage) &&
		req.DiscountType != string(promotion.DiscountFixedAmount):
		return "discount_type must be percentage or fixed_amount"
	case req.DiscountValue.IsNegative():
		return "discount_value must not be negative"
	case req.MinOrderAmount != nil && req.MinOrderAmount.IsNegative():
		return "min_order_amount must not be negative"
	case req.MaxDiscount != nil && req.MaxDiscount.IsNegative():
		return "max_discount must not be negative"
	case req.UsageLimit != nil && *req.UsageLimit < 0:
		return "usage_limit must not be negative"
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return "start_date and end_date are required"
	case req.EndDate.Before(req.StartDate):
		return "end_date must not precede start_date"
	}
	return ""
}

type promotionResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	DiscountType string `json:"discount_type"`
	IsActive     bool   `json:"is_active"`
}

// CreatePromotion registers a new promotion code. Admin only.
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, reasonBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, reasonBadRequest, msg)
		return
	}

	c := &promotion.Code{
		ID:             uuid.NewString(),
		Code:           promotion.Normalize(req.Code),
		Description:    req.Description,
		DiscountType:   promotion.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		UsageLimit:     req.UsageLimit,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       true,
	}

	if err := h.promoStore.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, promotionResponse{
		ID:           c.ID,
		Code:         c.Code,
		DiscountType: string(c.DiscountType),
		IsActive:     c.IsActive,
	})
}

// DeactivatePromotion turns a promotion code off. Deactivated codes validate
// identically to codes that never existed.
func (h *Handler) DeactivatePromotion(w http.ResponseWriter, r *http.Request) {
	code := promotion.Normalize(chi.URLParam(r, "code"))
	if code == "" {
		respondError(w, http.StatusBadRequest, reasonBadRequest, "code is required")
		return
	}

	if err := h.promoStore.Deactivate(r.Context(), code); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"code": code, "status": "deactivated"})
}
