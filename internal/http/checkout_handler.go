package http

import (
	"encoding/json"
	"net/http"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

type CheckoutHandler struct {
	payments  *payment.Orchestrator
	finalizer *order.Finalizer
	txs       payment.TransactionStore
}

func NewCheckoutHandler(payments *payment.Orchestrator, finalizer *order.Finalizer, txs payment.TransactionStore) *CheckoutHandler {
	return &CheckoutHandler{payments: payments, finalizer: finalizer, txs: txs}
}

type CreatePaymentIntentRequestDTO struct {
	CouponCode string `json:"coupon_code"`
}

type PaymentIntentResponseDTO struct {
	TransactionID string            `json:"transaction_id"`
	Mode          payment.Mode      `json:"mode"`
	ClientSecret  string            `json:"client_secret"`
	Amount        int64             `json:"amount"`
	Pricing       pricing.Breakdown `json:"pricing"`
}

type ConfirmPaymentRequestDTO struct {
	TransactionID string `json:"transaction_id"`
}

type CreateOrderRequestDTO struct {
	PaymentTransactionID string        `json:"payment_transaction_id"`
	ShippingAddress      order.Address `json:"shipping_address"`
}

// POST /orders/create-payment-intent
//
// Opens a payment transaction against the server-side recomputed price of the
// caller's current cart. The client never sends an amount.
func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req CreatePaymentIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tx, err := h.payments.CreateIntent(r.Context(), sess.OwnerID, sess.Authenticated, req.CouponCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, PaymentIntentResponseDTO{
		TransactionID: tx.ID,
		Mode:          tx.Mode,
		ClientSecret:  tx.ClientSecret,
		Amount:        tx.Pricing.Total,
		Pricing:       tx.Pricing,
	})
}

// POST /orders/confirm-payment
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req ConfirmPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.TransactionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_transaction_id", "transaction_id is required")
		return
	}

	if existing, err := h.txs.GetTransaction(r.Context(), req.TransactionID); err != nil {
		respondDomainError(w, err)
		return
	} else if existing.OwnerID != sess.OwnerID {
		respondError(w, http.StatusForbidden, "forbidden", "transaction does not belong to this session")
		return
	}

	tx, err := h.payments.Confirm(r.Context(), req.TransactionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// POST /orders/create
//
// Finalizes a confirmed (or degraded) payment transaction into an order.
// Retrying with the same transaction id returns the already-created order.
func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentTransactionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_transaction_id", "payment_transaction_id is required")
		return
	}

	tx, err := h.txs.GetTransaction(r.Context(), req.PaymentTransactionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if tx.OwnerID != sess.OwnerID {
		respondError(w, http.StatusForbidden, "forbidden", "transaction does not belong to this session")
		return
	}

	o, err := h.finalizer.Finalize(r.Context(), req.PaymentTransactionID, req.ShippingAddress)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, o)
}
