// Package handler содержит HTTP-обработчики API магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vpetukhov/depstore-system/internal/model"
	"github.com/vpetukhov/depstore-system/internal/repository"
	"github.com/vpetukhov/depstore-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	PlaceOrder(ctx context.Context, in service.OrderInput) (*service.OrderResult, error)
	UpdateOrder(ctx context.Context, orderID int64, in service.OrderInput) (*service.OrderResult, error)
	CancelOrder(ctx context.Context, orderID int64) error
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)

	CreateCustomer(ctx context.Context, in service.CustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in service.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	GetCustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error)

	CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListBackorders(ctx context.Context) ([]model.Backorder, error)
	GetBackorder(ctx context.Context, id int64) (*model.Backorder, error)
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrBackorderNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrProductHasOrders):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func centsToPrice(cents int64) float64 {
	return float64(cents) / 100
}

func priceToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

type orderRequest struct {
	CustomerID int64   `json:"customer_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int     `json:"quantity"`
	Discount   float64 `json:"discount"`
}

type orderResponse struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"product_id"`
	CustomerID      int64   `json:"customer_id"`
	Quantity        int     `json:"quantity"`
	Discount        float64 `json:"discount"`
	TotalPrice      float64 `json:"total_price"`
	DiscountedPrice float64 `json:"discounted_price"`
	CreatedAt       string  `json:"created_at"`
}

type orderResultResponse struct {
	orderResponse
	Fulfilled bool `json:"fulfilled"`
}

func toOrderResponse(o model.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		ProductID:       o.ProductID,
		CustomerID:      o.CustomerID,
		Quantity:        o.Quantity,
		Discount:        o.DiscountPct,
		TotalPrice:      centsToPrice(o.TotalCents),
		DiscountedPrice: centsToPrice(o.DiscountedCents),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}

// PlaceOrder размещает новый заказ. Заказ, принятый как отложенный,
// отвечает статусом 202 и fulfilled=false.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.PlaceOrder(r.Context(), service.OrderInput{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		DiscountPct: req.Discount,
	})
	if err != nil {
		h.writeError(w, err, "place order error")
		return
	}

	status := http.StatusCreated
	if !res.Fulfilled {
		status = http.StatusAccepted
	}

	h.writeJSON(w, status, orderResultResponse{
		orderResponse: toOrderResponse(res.Order),
		Fulfilled:     res.Fulfilled,
	})
}

// UpdateOrder изменяет существующий заказ.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.UpdateOrder(r.Context(), orderID, service.OrderInput{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		DiscountPct: req.Discount,
	})
	if err != nil {
		h.writeError(w, err, "update order error")
		return
	}

	status := http.StatusOK
	if !res.Fulfilled {
		status = http.StatusAccepted
	}

	h.writeJSON(w, status, orderResultResponse{
		orderResponse: toOrderResponse(res.Order),
		Fulfilled:     res.Fulfilled,
	})
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err, "get order error")
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// GetOrders возвращает список всех заказов.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.writeError(w, err, "get orders error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// CancelOrder отменяет заказ.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.CancelOrder(r.Context(), orderID); err != nil {
		h.writeError(w, err, "cancel order error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
