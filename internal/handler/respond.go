package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/AnQE180187/aura-checkout/internal/domain/order"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// Reason codes for the error response body. Every domain rejection maps to
// exactly one of these; clients branch on the code, not the message.
const (
	reasonNotFound      = "NOT_FOUND"
	reasonExpired       = "EXPIRED_OR_NOT_YET_ACTIVE"
	reasonUsageLimit    = "USAGE_LIMIT_REACHED"
	reasonBelowMinimum  = "BELOW_MINIMUM"
	reasonEmptyCart     = "EMPTY_CART"
	reasonConflict      = "PERSISTENCE_CONFLICT"
	reasonBadRequest    = "BAD_REQUEST"
	reasonInternalError = "INTERNAL_ERROR"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}

// respondDomainError translates a domain rejection into its HTTP shape.
// Unrecognized errors are logged and answered with a generic 500: nothing
// in this service is fatal beyond the single request.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var belowMin *promotion.BelowMinimumError

	switch {
	case errors.Is(err, promotion.ErrNotFound):
		respondError(w, http.StatusNotFound, reasonNotFound, err.Error())
	case errors.Is(err, promotion.ErrExpired):
		respondError(w, http.StatusUnprocessableEntity, reasonExpired, err.Error())
	case errors.Is(err, promotion.ErrUsageLimitReached):
		respondError(w, http.StatusUnprocessableEntity, reasonUsageLimit, err.Error())
	case errors.As(err, &belowMin):
		respondError(w, http.StatusUnprocessableEntity, reasonBelowMinimum, belowMin.Error())
	case errors.Is(err, promotion.ErrNegativeAmount):
		respondError(w, http.StatusBadRequest, reasonBadRequest, err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, reasonEmptyCart, err.Error())
	case errors.Is(err, order.ErrConflict):
		respondError(w, http.StatusConflict, reasonConflict,
			"checkout conflicted with a concurrent request, please retry")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, reasonInternalError,
			"internal error")
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
