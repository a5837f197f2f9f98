package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vpetukhov/depstore-system/internal/model"
	"github.com/vpetukhov/depstore-system/internal/service"
)

type customerRequest struct {
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
}

type customerResponse struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	CreatedAt     string `json:"created_at"`
}

func toCustomerResponse(c model.Customer) customerResponse {
	return customerResponse{
		ID:            c.ID,
		FullName:      c.FullName,
		Address:       c.Address,
		ContactNumber: c.ContactNumber,
		Email:         c.Email,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}

// CreateCustomer регистрирует нового покупателя.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), service.CustomerInput{
		FullName:      req.FullName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	})
	if err != nil {
		h.writeError(w, err, "create customer error")
		return
	}

	h.writeJSON(w, http.StatusCreated, toCustomerResponse(*customer))
}

// GetCustomer возвращает покупателя по идентификатору.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get customer error")
		return
	}

	h.writeJSON(w, http.StatusOK, toCustomerResponse(*customer))
}

// GetCustomers возвращает список всех покупателей.
func (h *Handler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, err, "get customers error")
		return
	}

	resp := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomerResponse(c))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// UpdateCustomer обновляет данные покупателя.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), id, service.CustomerInput{
		FullName:      req.FullName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	})
	if err != nil {
		h.writeError(w, err, "update customer error")
		return
	}

	h.writeJSON(w, http.StatusOK, toCustomerResponse(*customer))
}

// DeleteCustomer удаляет покупателя вместе с его заказами.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		h.writeError(w, err, "delete customer error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetCustomerOrders возвращает заказы покупателя.
func (h *Handler) GetCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	orders, err := h.service.GetCustomerOrders(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get customer orders error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"created_at"`
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       centsToPrice(p.PriceCents),
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// CreateProduct добавляет новый товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  priceToCents(req.Price),
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.writeError(w, err, "create product error")
		return
	}

	h.writeJSON(w, http.StatusCreated, toProductResponse(*product))
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get product error")
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(*product))
}

// GetProducts возвращает список всех товаров.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err, "get products error")
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// UpdateProduct обновляет товар, включая остаток на складе.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  priceToCents(req.Price),
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.writeError(w, err, "update product error")
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(*product))
}

// DeleteProduct удаляет товар из каталога.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err, "delete product error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

type backorderResponse struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	CreatedAt string `json:"created_at"`
}

func toBackorderResponse(b model.Backorder) backorderResponse {
	return backorderResponse{
		ID:        b.ID,
		OrderID:   b.OrderID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// GetBackorders возвращает список всех отметок об отложенных заказах.
func (h *Handler) GetBackorders(w http.ResponseWriter, r *http.Request) {
	backorders, err := h.service.ListBackorders(r.Context())
	if err != nil {
		h.writeError(w, err, "get backorders error")
		return
	}

	resp := make([]backorderResponse, 0, len(backorders))
	for _, b := range backorders {
		resp = append(resp, toBackorderResponse(b))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetBackorder возвращает отметку об отложенном заказе по идентификатору.
func (h *Handler) GetBackorder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "backorderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	backorder, err := h.service.GetBackorder(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get backorder error")
		return
	}

	h.writeJSON(w, http.StatusOK, toBackorderResponse(*backorder))
}
