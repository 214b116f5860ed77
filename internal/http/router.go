package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter assembles the storefront's HTTP surface. All cart and order
// routes sit behind the session middleware; guests and authenticated users
// share the same endpoints.
func NewRouter(jwtSecret []byte, carts *CartHandler, checkout *CheckoutHandler, orders *OrdersHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware(jwtSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/add", carts.AddItem)
			r.Patch("/update/{lineID}", carts.UpdateQuantity)
			r.Delete("/remove/{lineID}", carts.RemoveItem)
			r.Post("/clear", carts.ClearCart)
			r.Post("/merge", carts.MergeGuestCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/create-payment-intent", checkout.CreatePaymentIntent)
			r.Post("/confirm-payment", checkout.ConfirmPayment)
			r.Post("/create", checkout.CreateOrder)
			r.Get("/", orders.ListOrders)
			r.Get("/{orderID}", orders.GetOrder)
			r.Patch("/{orderID}/status", orders.UpdateStatus)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
