// Package service реализует бизнес-логику движка сверки остатков магазина.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/vpetukhov/depstore-system/internal/model"
	"github.com/vpetukhov/depstore-system/internal/repository"
	"github.com/vpetukhov/depstore-system/internal/validation"
)

// ErrInvalidArgument возвращается при некорректных входных данных запроса.
var ErrInvalidArgument = errors.New("invalid argument")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, c model.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	GetOrdersByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)

	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductIDs(ctx context.Context) ([]int64, error)
	UpdateProduct(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, o model.Order) (*model.Order, bool, error)
	UpdateOrder(ctx context.Context, o model.Order) (*model.Order, bool, error)
	DeleteOrder(ctx context.Context, id int64) error
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)

	ListBackorders(ctx context.Context) ([]model.Backorder, error)
	GetBackorderByID(ctx context.Context, id int64) (*model.Backorder, error)
	GetBackorderByOrder(ctx context.Context, orderID int64) (*model.Backorder, error)
	ReconcileProduct(ctx context.Context, productID int64) (int, error)
}

// Service содержит бизнес-логику магазина: размещение и изменение заказов,
// сверку остатков и управление покупателями и каталогом.
type Service struct {
	repo     Repository
	patterns *validation.Patterns
	logger   *zap.Logger
}

// NewService создаёт новый сервис с указанным репозиторием и шаблонами валидации.
func NewService(repo Repository, patterns *validation.Patterns, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		patterns: patterns,
		logger:   logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// OrderInput содержит параметры размещения или изменения заказа.
type OrderInput struct {
	CustomerID  int64
	ProductID   int64
	Quantity    int
	DiscountPct float64
}

// OrderResult — результат решения по заказу. Fulfilled равен false для
// заказа, принятого как отложенный: это различимый успешный исход, а не ошибка.
type OrderResult struct {
	Order     model.Order
	Fulfilled bool
}

func validateOrderInput(in OrderInput) error {
	if !validation.IsValidQuantity(in.Quantity) {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}
	if !validation.IsValidDiscount(in.DiscountPct) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidArgument)
	}
	return nil
}

func computePrices(quantity int, priceCents int64, discountPct float64) (totalCents, discountedCents int64) {
	totalCents = int64(quantity) * priceCents
	discountedCents = int64(math.Round(float64(totalCents) * (1 - discountPct/100)))
	return totalCents, discountedCents
}

// PlaceOrder размещает заказ: проверяет входные данные, разрешает ссылки на
// покупателя и товар, рассчитывает цены и атомарно принимает решение по
// остатку. При нехватке остатка заказ принимается как отложенный.
func (s *Service) PlaceOrder(ctx context.Context, in OrderInput) (*OrderResult, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomerByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	totalCents, discountedCents := computePrices(in.Quantity, product.PriceCents, in.DiscountPct)

	order := model.Order{
		ProductID:       product.ID,
		CustomerID:      customer.ID,
		Quantity:        in.Quantity,
		DiscountPct:     in.DiscountPct,
		TotalCents:      totalCents,
		DiscountedCents: discountedCents,
	}

	saved, fulfilled, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	return &OrderResult{Order: *saved, Fulfilled: fulfilled}, nil
}

// UpdateOrder изменяет заказ: заново разрешает ссылки, пересчитывает цены и
// повторно принимает решение по остатку. Прежнее резервирование при этом
// снимается до проверки нового количества.
func (s *Service) UpdateOrder(ctx context.Context, orderID int64, in OrderInput) (*OrderResult, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomerByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	totalCents, discountedCents := computePrices(in.Quantity, product.PriceCents, in.DiscountPct)

	order := model.Order{
		ID:              orderID,
		ProductID:       product.ID,
		CustomerID:      customer.ID,
		Quantity:        in.Quantity,
		DiscountPct:     in.DiscountPct,
		TotalCents:      totalCents,
		DiscountedCents: discountedCents,
	}

	saved, fulfilled, err := s.repo.UpdateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	return &OrderResult{Order: *saved, Fulfilled: fulfilled}, nil
}

// CancelOrder отменяет заказ: для исполненного заказа остаток возвращается
// на склад, для отложенного удаляется только его отметка.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) error {
	return s.repo.DeleteOrder(ctx, orderID)
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.repo.GetOrderByID(ctx, orderID)
}

// ListOrders возвращает все заказы.
func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ReconcileBackorders пересматривает отложенные заказы всех товаров.
// Блокировка берётся по одному товару за раз, обход каталога её не держит.
func (s *Service) ReconcileBackorders(ctx context.Context) error {
	ids, err := s.repo.ListProductIDs(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	for _, id := range ids {
		resolved, err := s.repo.ReconcileProduct(ctx, id)
		if err != nil {
			// Товар могли удалить между обходом каталога и сверкой
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return fmt.Errorf("reconcile product %d: %w", id, err)
		}
		if resolved > 0 && s.logger != nil {
			s.logger.Info("backorders fulfilled",
				zap.Int64("productID", id),
				zap.Int("resolved", resolved),
			)
		}
	}

	return nil
}

// StartRestockSweep запускает фоновый процесс периодического пересмотра
// отложенных заказов.
func (s *Service) StartRestockSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ReconcileBackorders(ctx); err != nil && s.logger != nil {
					s.logger.Error("restock sweep error", zap.Error(err))
				}
			}
		}
	}()
}
