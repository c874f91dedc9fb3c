package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/order"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

type checkoutRequest struct {
	UserID          string `json:"user_id"`
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
	PromotionCode   string `json:"promotion_code,omitempty"`
}

func (req *checkoutRequest) validate() string {
	switch {
	case req.UserID == "":
		return "user_id is required"
	case req.ShippingAddress == "":
		return "shipping_address is required"
	case req.Phone == "":
		return "phone is required"
	}
	return ""
}

type orderItemResponse struct {
	VariantID   string          `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type appliedPromotionResponse struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type orderResponse struct {
	ID              string                    `json:"id"`
	Code            string                    `json:"code"`
	TotalAmount     decimal.Decimal           `json:"total_amount"`
	DiscountAmount  decimal.Decimal           `json:"discount_amount"`
	FinalAmount     decimal.Decimal           `json:"final_amount"`
	Status          string                    `json:"status"`
	PaymentStatus   string                    `json:"payment_status"`
	Items           []orderItemResponse       `json:"items"`
	Promotion       *appliedPromotionResponse `json:"promotion,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

type totalsResponse struct {
	TotalAmount    decimal.Decimal           `json:"total_amount"`
	DiscountAmount decimal.Decimal           `json:"discount_amount"`
	FinalAmount    decimal.Decimal           `json:"final_amount"`
	Promotion      *appliedPromotionResponse `json:"promotion,omitempty"`
}

// Checkout commits the user's cart into an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, reasonBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, reasonBadRequest, msg)
		return
	}

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		PromotionCode:   req.PromotionCode,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

// PreviewCheckout prices the user's cart without committing anything.
func (h *Handler) PreviewCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, reasonBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, reasonBadRequest, "user_id is required")
		return
	}

	totals, err := h.orders.PreviewTotals(r.Context(), req.UserID, req.PromotionCode)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, totalsResponse{
		TotalAmount:    totals.TotalAmount,
		DiscountAmount: totals.DiscountAmount,
		FinalAmount:    totals.FinalAmount,
		Promotion:      toAppliedResponse(totals.Promotion),
	})
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			TotalPrice:  it.TotalPrice,
		}
	}

	return orderResponse{
		ID:             o.ID,
		Code:           o.Code,
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		FinalAmount:    o.FinalAmount,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		Items:          items,
		Promotion:      toAppliedResponse(o.Promotion),
		CreatedAt:      o.CreatedAt,
	}
}

func toAppliedResponse(p *promotion.Applied) *appliedPromotionResponse {
	if p == nil {
		return nil
	}
	return &appliedPromotionResponse{
		Code:           p.Code,
		DiscountType:   string(p.DiscountType),
		DiscountValue:  p.DiscountValue,
		DiscountAmount: p.DiscountAmount,
	}
}
