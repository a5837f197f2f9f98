package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/vpetukhov/depstore-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/", h.GetOrders)
			r.Get("/{orderID}", h.GetOrder)
			r.Put("/{orderID}", h.UpdateOrder)
			r.Delete("/{orderID}", h.CancelOrder)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.CreateCustomer)
			r.Get("/", h.GetCustomers)
			r.Get("/{customerID}", h.GetCustomer)
			r.Put("/{customerID}", h.UpdateCustomer)
			r.Delete("/{customerID}", h.DeleteCustomer)
			r.Get("/{customerID}/orders", h.GetCustomerOrders)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.CreateProduct)
			r.Get("/", h.GetProducts)
			r.Get("/{productID}", h.GetProduct)
			r.Put("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
		})

		r.Route("/backorders", func(r chi.Router) {
			r.Get("/", h.GetBackorders)
			r.Get("/{backorderID}", h.GetBackorder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
