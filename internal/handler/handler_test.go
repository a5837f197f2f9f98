package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vpetukhov/depstore-system/internal/model"
	"github.com/vpetukhov/depstore-system/internal/repository"
	"github.com/vpetukhov/depstore-system/internal/service"
)

type stubService struct {
	placeResult *service.OrderResult
	placeErr    error

	updateResult *service.OrderResult
	updateErr    error

	cancelErr error

	order    *model.Order
	orderErr error

	orders    []model.Order
	ordersErr error

	customer    *model.Customer
	customerErr error

	customers    []model.Customer
	customersErr error

	deleteCustomerErr error

	product    *model.Product
	productErr error

	products    []model.Product
	productsErr error

	deleteProductErr error

	backorder     *model.Backorder
	backorderErr  error
	backorders    []model.Backorder
	backordersErr error
}

func (s *stubService) PlaceOrder(ctx context.Context, in service.OrderInput) (*service.OrderResult, error) {
	return s.placeResult, s.placeErr
}

func (s *stubService) UpdateOrder(ctx context.Context, orderID int64, in service.OrderInput) (*service.OrderResult, error) {
	return s.updateResult, s.updateErr
}

func (s *stubService) CancelOrder(ctx context.Context, orderID int64) error {
	return s.cancelErr
}

func (s *stubService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders, s.ordersErr
}

func (s *stubService) CreateCustomer(ctx context.Context, in service.CustomerInput) (*model.Customer, error) {
	return s.customer, s.customerErr
}

func (s *stubService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customer, s.customerErr
}

func (s *stubService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers, s.customersErr
}

func (s *stubService) UpdateCustomer(ctx context.Context, id int64, in service.CustomerInput) (*model.Customer, error) {
	return s.customer, s.customerErr
}

func (s *stubService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.deleteCustomerErr
}

func (s *stubService) GetCustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	return s.orders, s.ordersErr
}

func (s *stubService) CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.products, s.productsErr
}

func (s *stubService) UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteProductErr
}

func (s *stubService) ListBackorders(ctx context.Context) ([]model.Backorder, error) {
	return s.backorders, s.backordersErr
}

func (s *stubService) GetBackorder(ctx context.Context, id int64) (*model.Backorder, error) {
	return s.backorder, s.backorderErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger)
}

func sampleOrder() model.Order {
	return model.Order{
		ID:              1,
		ProductID:       2,
		CustomerID:      3,
		Quantity:        4,
		DiscountPct:     10,
		TotalCents:      10000,
		DiscountedCents: 9000,
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPlaceOrder_Fulfilled(t *testing.T) {
	svc := &stubService{
		placeResult: &service.OrderResult{Order: sampleOrder(), Fulfilled: true},
	}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"customer_id":3,"product_id":2,"quantity":4,"discount":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp struct {
		ID              int64   `json:"id"`
		TotalPrice      float64 `json:"total_price"`
		DiscountedPrice float64 `json:"discounted_price"`
		Fulfilled       bool    `json:"fulfilled"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 1 || !resp.Fulfilled {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.TotalPrice != 100 || resp.DiscountedPrice != 90 {
		t.Fatalf("prices = %v / %v, want 100 / 90", resp.TotalPrice, resp.DiscountedPrice)
	}
}

func TestPlaceOrder_Backordered(t *testing.T) {
	svc := &stubService{
		placeResult: &service.OrderResult{Order: sampleOrder(), Fulfilled: false},
	}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"customer_id":3,"product_id":2,"quantity":4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}

	var resp struct {
		Fulfilled bool `json:"fulfilled"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Fulfilled {
		t.Fatalf("fulfilled must be false for a backordered outcome")
	}
}

func TestPlaceOrder_BadRequest(t *testing.T) {
	svc := &stubService{placeErr: service.ErrInvalidArgument}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"customer_id":3,"product_id":2,"quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPlaceOrder_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{broken`))
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc := &stubService{placeErr: repository.ErrProductNotFound}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"customer_id":3,"product_id":999,"quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetOrder_OK(t *testing.T) {
	order := sampleOrder()
	svc := &stubService{order: &order}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		ID        int64  `json:"id"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 1 {
		t.Fatalf("id = %d, want 1", resp.ID)
	}
	if resp.CreatedAt != "2025-06-01T12:00:00Z" {
		t.Fatalf("created_at = %q", resp.CreatedAt)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &stubService{orderErr: repository.ErrOrderNotFound}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/999", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateOrder_Backordered(t *testing.T) {
	svc := &stubService{
		updateResult: &service.OrderResult{Order: sampleOrder(), Fulfilled: false},
	}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"customer_id":3,"product_id":2,"quantity":40}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/1", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
}

func TestCancelOrder_OK(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/1", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCancelOrder_NotFound(t *testing.T) {
	svc := &stubService{cancelErr: repository.ErrOrderNotFound}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/999", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCreateCustomer_OK(t *testing.T) {
	svc := &stubService{
		customer: &model.Customer{
			ID:            7,
			FullName:      "Ivan Petrov",
			Address:       "Moscow",
			ContactNumber: "+79991234567",
			Email:         "ivan@example.com",
			CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"full_name":"Ivan Petrov","address":"Moscow","contact_number":"+79991234567","email":"ivan@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 7 || resp.FullName != "Ivan Petrov" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateCustomer_InvalidEmail(t *testing.T) {
	svc := &stubService{customerErr: service.ErrInvalidArgument}
	h := newTestHandler(t, svc)

	body := bytes.NewBufferString(`{"full_name":"Ivan","address":"Moscow","contact_number":"+79991234567","email":"bad"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", body)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteProduct_Conflict(t *testing.T) {
	svc := &stubService{deleteProductErr: repository.ErrProductHasOrders}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/2", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestGetBackorders_OK(t *testing.T) {
	svc := &stubService{
		backorders: []model.Backorder{
			{ID: 1, OrderID: 5, CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/backorders", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []struct {
		ID      int64 `json:"id"`
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].OrderID != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetProducts_Prices(t *testing.T) {
	svc := &stubService{
		products: []model.Product{
			{ID: 1, Name: "Kettle", Description: "Electric kettle", PriceCents: 2550, Quantity: 3, CreatedAt: time.Now()},
		},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []struct {
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Price != 25.5 || resp[0].Quantity != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
