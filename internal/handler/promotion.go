package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type validatePromotionRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

type validatePromotionResponse struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// ValidatePromotion checks a promotion code against a candidate order amount
// without consuming a use. Storefronts call this while the shopper types a
// code, before any checkout happens.
func (h *Handler) ValidatePromotion(w http.ResponseWriter, r *http.Request) {
	var req validatePromotionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, reasonBadRequest, err.Error())
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, reasonBadRequest, "code is required")
		return
	}

	applied, err := h.promotions.Validate(r.Context(), req.Code, req.Amount)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, validatePromotionResponse{
		Code:           applied.Code,
		DiscountType:   string(applied.DiscountType),
		DiscountValue:  applied.DiscountValue,
		DiscountAmount: applied.DiscountAmount,
		FinalAmount:    req.Amount.Sub(applied.DiscountAmount),
	})
}
