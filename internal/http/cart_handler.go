package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartstore"
)

type CartHandler struct {
	carts *cartstore.Manager
}

func NewCartHandler(carts *cartstore.Manager) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type MergeCartRequestDTO struct {
	GuestID string `json:"guest_id"`
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*cartstore.Store, bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}
	store, err := h.carts.Session(r.Context(), sess.OwnerID, sess.Authenticated)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "could not load cart")
		return nil, false
	}
	return store, true
}

// GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, store.Cart())
}

// POST /cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "unit_price must not be negative")
		return
	}

	updated := store.Add(r.Context(), cart.Add{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Size:      req.Size,
		Color:     req.Color,
	})
	respondJSON(w, http.StatusCreated, updated)
}

// PATCH /cart/update/{lineID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Zero is allowed: setting a quantity to zero removes the line.
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	updated := store.SetQuantity(r.Context(), lineID, req.Quantity)
	respondJSON(w, http.StatusOK, updated)
}

// DELETE /cart/remove/{lineID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}

	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line id is required")
		return
	}

	respondJSON(w, http.StatusOK, store.Remove(r.Context(), lineID))
}

// POST /cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, store.Clear(r.Context()))
}

// POST /cart/merge
//
// Runs the login-time reconciliation: the guest cart named in the body is
// folded into the authenticated user's remote cart.
func (h *CartHandler) MergeGuestCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok || !sess.Authenticated {
		respondError(w, http.StatusUnauthorized, "unauthorized", "merge requires authentication")
		return
	}

	var req MergeCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GuestID == "" {
		respondError(w, http.StatusBadRequest, "invalid_guest_id", "guest_id is required")
		return
	}

	if err := h.carts.MergeGuestCart(r.Context(), req.GuestID, sess.OwnerID); err != nil {
		// The guest snapshot is preserved; the client may retry.
		respondError(w, http.StatusServiceUnavailable, "merge_failed", "could not merge guest cart, retry later")
		return
	}

	store, err := h.carts.Session(r.Context(), sess.OwnerID, true)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "could not load cart")
		return
	}
	respondJSON(w, http.StatusOK, store.Cart())
}
