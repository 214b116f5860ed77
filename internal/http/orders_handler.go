package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
)

type OrdersHandler struct {
	orders    order.Repository
	finalizer *order.Finalizer
}

func NewOrdersHandler(orders order.Repository, finalizer *order.Finalizer) *OrdersHandler {
	return &OrdersHandler{orders: orders, finalizer: finalizer}
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status"`
}

// GET /orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	orders, err := h.orders.ListOrdersByOwner(r.Context(), sess.OwnerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /orders/{orderID}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	orderID := chi.URLParam(r, "orderID")
	o, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if o.OwnerID != sess.OwnerID {
		// Do not leak that the order exists.
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// PATCH /orders/{orderID}/status
//
// Fulfillment-side endpoint. Status moves forward only; cancellation is
// allowed while the order is still processing.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	orderID := chi.URLParam(r, "orderID")

	var req UpdateOrderStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	next := order.Status(req.Status)
	switch next {
	case order.StatusShipped, order.StatusDelivered, order.StatusCancelled:
	default:
		respondError(w, http.StatusBadRequest, "invalid_status", "status must be SHIPPED, DELIVERED or CANCELLED")
		return
	}

	existing, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if existing.OwnerID != sess.OwnerID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if !order.CanTransition(existing.Status, next) {
		respondError(w, http.StatusConflict, "illegal_transition", "order cannot move from "+string(existing.Status)+" to "+string(next))
		return
	}

	o, err := h.finalizer.UpdateStatus(r.Context(), orderID, next)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
