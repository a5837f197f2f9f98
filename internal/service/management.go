package service

import (
	"context"
	"fmt"

	"github.com/vpetukhov/depstore-system/internal/model"
)

// CustomerInput содержит данные покупателя для создания или обновления.
// При обновлении пустые поля сохраняют прежние значения.
type CustomerInput struct {
	FullName      string
	Address       string
	ContactNumber string
	Email         string
}

func (s *Service) validateCustomer(c model.Customer) error {
	if c.FullName == "" || c.Address == "" {
		return fmt.Errorf("%w: full name and address are required", ErrInvalidArgument)
	}
	if !s.patterns.IsValidContact(c.ContactNumber) {
		return fmt.Errorf("%w: invalid country code or contact number", ErrInvalidArgument)
	}
	if !s.patterns.IsValidEmail(c.Email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidArgument)
	}
	return nil
}

// CreateCustomer регистрирует нового покупателя.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	c := model.Customer{
		FullName:      in.FullName,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Email:         in.Email,
	}
	if err := s.validateCustomer(c); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomer(ctx, c)
}

// GetCustomer возвращает покупателя по идентификатору.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

// ListCustomers возвращает всех покупателей.
func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// UpdateCustomer обновляет данные покупателя. Непереданные поля не меняются,
// итоговые контактные данные проходят валидацию заново.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) (*model.Customer, error) {
	existing, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FullName != "" {
		existing.FullName = in.FullName
	}
	if in.Address != "" {
		existing.Address = in.Address
	}
	if in.ContactNumber != "" {
		existing.ContactNumber = in.ContactNumber
	}
	if in.Email != "" {
		existing.Email = in.Email
	}

	if err := s.validateCustomer(*existing); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCustomer(ctx, *existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteCustomer удаляет покупателя вместе с его заказами.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

// GetCustomerOrders возвращает заказы покупателя.
func (s *Service) GetCustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.repo.GetOrdersByCustomer(ctx, customerID)
}

// ProductInput содержит данные товара для создания или обновления.
type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Quantity    int
}

// CreateProduct добавляет новый товар в каталог.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.Name == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: product name and description are required", ErrInvalidArgument)
	}
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidArgument)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidArgument)
	}

	p := model.Product{
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Quantity:    in.Quantity,
	}
	return s.repo.CreateProduct(ctx, p)
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

// ListProducts возвращает все товары каталога.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

// UpdateProduct обновляет товар. Название и описание при пустых значениях
// не меняются, цена и остаток принимаются как есть. Слияние и запись
// выполняются репозиторием в одной транзакции, чтобы пополнение остатка
// не перекрыло параллельное списание по заказу. Пополнение подхватит
// ближайший пересмотр отложенных заказов.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidArgument)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidArgument)
	}

	return s.repo.UpdateProduct(ctx, id, model.ProductUpdate{
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Quantity:    in.Quantity,
	})
}

// DeleteProduct удаляет товар из каталога.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ListBackorders возвращает все отметки об отложенных заказах.
func (s *Service) ListBackorders(ctx context.Context) ([]model.Backorder, error) {
	return s.repo.ListBackorders(ctx)
}

// GetBackorder возвращает отметку об отложенном заказе по идентификатору.
func (s *Service) GetBackorder(ctx context.Context, id int64) (*model.Backorder, error) {
	return s.repo.GetBackorderByID(ctx, id)
}
