package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/vpetukhov/depstore-system/internal/model"
)

// CreateOrder сохраняет заказ и принимает решение по остатку в одной
// транзакции: строка товара блокируется через FOR UPDATE, при достаточном
// остатке он списывается, иначе создаётся отметка об отложенности, а остаток
// не меняется. Возвращает сохранённый заказ и признак его исполнения.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o model.Order) (*model.Order, bool, error) {
	var (
		saved     model.Order
		fulfilled bool
	)

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var stock int
		err = tx.QueryRow(ctx,
			`SELECT quantity FROM products WHERE id = $1 FOR UPDATE`,
			o.ProductID,
		).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		saved = o
		err = tx.QueryRow(ctx,
			`INSERT INTO orders (product_id, customer_id, quantity, discount, total_cents, discounted_cents)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`,
			o.ProductID, o.CustomerID, o.Quantity, o.DiscountPct, o.TotalCents, o.DiscountedCents,
		).Scan(&saved.ID, &saved.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if stock >= o.Quantity {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET quantity = quantity - $2 WHERE id = $1`,
				o.ProductID, o.Quantity,
			); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			fulfilled = true
		} else {
			if _, err := tx.Exec(ctx,
				`INSERT INTO backorders (order_id) VALUES ($1)`,
				saved.ID,
			); err != nil {
				return fmt.Errorf("insert backorder: %w", err)
			}
			fulfilled = false
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &saved, fulfilled, nil
}

// UpdateOrder обновляет заказ и заново принимает решение по остатку.
// Прежнее резервирование сначала снимается: если заказ был исполнен,
// его старое количество возвращается на склад до проверки нового.
// Строки старого и нового товара блокируются в порядке возрастания
// идентификаторов, чтобы исключить взаимные блокировки.
func (r *PostgresRepository) UpdateOrder(ctx context.Context, o model.Order) (*model.Order, bool, error) {
	var (
		saved     model.Order
		fulfilled bool
	)

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var (
			oldProductID int64
			oldQuantity  int
		)
		err = tx.QueryRow(ctx,
			`SELECT product_id, quantity FROM orders WHERE id = $1 FOR UPDATE`,
			o.ID,
		).Scan(&oldProductID, &oldQuantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		var wasBackordered bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM backorders WHERE order_id = $1)`,
			o.ID,
		).Scan(&wasBackordered)
		if err != nil {
			return fmt.Errorf("check backorder: %w", err)
		}

		productIDs := []int64{oldProductID}
		if o.ProductID != oldProductID {
			productIDs = append(productIDs, o.ProductID)
			sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })
		}

		stocks := make(map[int64]int, len(productIDs))
		for _, id := range productIDs {
			var stock int
			err = tx.QueryRow(ctx,
				`SELECT quantity FROM products WHERE id = $1 FOR UPDATE`,
				id,
			).Scan(&stock)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrProductNotFound
				}
				return fmt.Errorf("lock product: %w", err)
			}
			stocks[id] = stock
		}

		if !wasBackordered {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET quantity = quantity + $2 WHERE id = $1`,
				oldProductID, oldQuantity,
			); err != nil {
				return fmt.Errorf("release stock: %w", err)
			}
			stocks[oldProductID] += oldQuantity
		}

		if stocks[o.ProductID] >= o.Quantity {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET quantity = quantity - $2 WHERE id = $1`,
				o.ProductID, o.Quantity,
			); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if wasBackordered {
				if _, err := tx.Exec(ctx,
					`DELETE FROM backorders WHERE order_id = $1`,
					o.ID,
				); err != nil {
					return fmt.Errorf("delete backorder: %w", err)
				}
			}
			fulfilled = true
		} else {
			if !wasBackordered {
				if _, err := tx.Exec(ctx,
					`INSERT INTO backorders (order_id) VALUES ($1)`,
					o.ID,
				); err != nil {
					return fmt.Errorf("insert backorder: %w", err)
				}
			}
			fulfilled = false
		}

		saved = o
		err = tx.QueryRow(ctx,
			`UPDATE orders
			 SET product_id = $2, customer_id = $3, quantity = $4, discount = $5, total_cents = $6, discounted_cents = $7
			 WHERE id = $1
			 RETURNING created_at`,
			o.ID, o.ProductID, o.CustomerID, o.Quantity, o.DiscountPct, o.TotalCents, o.DiscountedCents,
		).Scan(&saved.CreatedAt)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &saved, fulfilled, nil
}

// DeleteOrder отменяет заказ. Для отложенного заказа удаляется только отметка
// об отложенности: остаток не списывался. Для исполненного заказа его
// количество возвращается на склад. Строка заказа удаляется последней.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, id int64) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var (
			productID int64
			quantity  int
		)
		err = tx.QueryRow(ctx,
			`SELECT product_id, quantity FROM orders WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&productID, &quantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM backorders WHERE order_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete backorder: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET quantity = quantity + $2 WHERE id = $1`,
				productID, quantity,
			); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, product_id, customer_id, quantity, discount, total_cents, discounted_cents, created_at
		 FROM orders WHERE id = $1`,
		id,
	)

	var o model.Order
	err := row.Scan(&o.ID, &o.ProductID, &o.CustomerID, &o.Quantity, &o.DiscountPct, &o.TotalCents, &o.DiscountedCents, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

// ListOrders возвращает список всех заказов.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, customer_id, quantity, discount, total_cents, discounted_cents, created_at
		 FROM orders
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	var res []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.CustomerID, &o.Quantity, &o.DiscountPct, &o.TotalCents, &o.DiscountedCents, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
