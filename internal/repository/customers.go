package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vpetukhov/depstore-system/internal/model"
)

// CreateCustomer создаёт нового покупателя и возвращает его с присвоенным идентификатором.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (full_name, address, contact_number, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.FullName, c.Address, c.ContactNumber, c.Email,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}

// GetCustomerByID возвращает покупателя по идентификатору.
func (r *PostgresRepository) GetCustomerByID(ctx context.Context, id int64) (*model.Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, full_name, address, contact_number, email, created_at
		 FROM customers WHERE id = $1`,
		id,
	)

	var c model.Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Address, &c.ContactNumber, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &c, nil
}

// ListCustomers возвращает список всех покупателей.
func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, full_name, address, contact_number, email, created_at
		 FROM customers
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var res []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Address, &c.ContactNumber, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateCustomer обновляет данные покупателя.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, c model.Customer) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE customers
		 SET full_name = $2, address = $3, contact_number = $4, email = $5
		 WHERE id = $1`,
		c.ID, c.FullName, c.Address, c.ContactNumber, c.Email,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomer удаляет покупателя. Его заказы и их отметки об отложенности
// удаляются каскадно на уровне схемы; остаток товара при этом не восстанавливается.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// GetOrdersByCustomer возвращает заказы указанного покупателя.
func (r *PostgresRepository) GetOrdersByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, customer_id, quantity, discount, total_cents, discounted_cents, created_at
		 FROM orders
		 WHERE customer_id = $1
		 ORDER BY id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders by customer: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}
