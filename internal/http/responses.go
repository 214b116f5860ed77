package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps expected domain conditions to HTTP statuses.
// Anything unrecognized is a genuine server fault.
func respondDomainError(w http.ResponseWriter, err error) {
	var decline *payment.DeclineError
	var finalization *order.FinalizationError

	switch {
	case errors.Is(err, pricing.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, "coupon_invalid", err.Error())
	case errors.Is(err, pricing.ErrExpired):
		respondError(w, http.StatusBadRequest, "coupon_expired", err.Error())
	case errors.Is(err, pricing.ErrMinimumNotMet):
		respondError(w, http.StatusBadRequest, "coupon_minimum_not_met", err.Error())
	case errors.Is(err, pricing.ErrUsageExhausted):
		respondError(w, http.StatusBadRequest, "coupon_exhausted", err.Error())
	case errors.Is(err, payment.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, order.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, payment.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, payment.ErrTransactionDead):
		respondError(w, http.StatusConflict, "transaction_failed", err.Error())
	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable", err.Error())
	case errors.Is(err, order.ErrNotEligible):
		respondError(w, http.StatusConflict, "transaction_not_eligible", err.Error())
	case errors.As(err, &decline):
		// The gateway's refusal goes to the shopper word for word.
		respondError(w, http.StatusPaymentRequired, "payment_declined", decline.Reason)
	case errors.As(err, &finalization):
		respondError(w, http.StatusUnprocessableEntity, "finalization_failed", finalization.Reason)
	default:
		slog.Error("unhandled domain error", "err", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
