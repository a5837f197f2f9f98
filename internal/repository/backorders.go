package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vpetukhov/depstore-system/internal/model"
)

// ListBackorders возвращает список всех отметок об отложенных заказах.
func (r *PostgresRepository) ListBackorders(ctx context.Context) ([]model.Backorder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, created_at FROM backorders ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select backorders: %w", err)
	}
	defer rows.Close()

	var res []model.Backorder
	for rows.Next() {
		var b model.Backorder
		if err := rows.Scan(&b.ID, &b.OrderID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backorder: %w", err)
		}
		res = append(res, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetBackorderByID возвращает отметку об отложенном заказе по идентификатору.
func (r *PostgresRepository) GetBackorderByID(ctx context.Context, id int64) (*model.Backorder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, order_id, created_at FROM backorders WHERE id = $1`,
		id,
	)

	var b model.Backorder
	err := row.Scan(&b.ID, &b.OrderID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBackorderNotFound
		}
		return nil, fmt.Errorf("get backorder: %w", err)
	}

	return &b, nil
}

// GetBackorderByOrder возвращает отметку об отложенности указанного заказа.
func (r *PostgresRepository) GetBackorderByOrder(ctx context.Context, orderID int64) (*model.Backorder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, order_id, created_at FROM backorders WHERE order_id = $1`,
		orderID,
	)

	var b model.Backorder
	err := row.Scan(&b.ID, &b.OrderID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBackorderNotFound
		}
		return nil, fmt.Errorf("get backorder by order: %w", err)
	}

	return &b, nil
}

// ReconcileProduct пересматривает отложенные заказы одного товара: в порядке
// возрастания идентификатора заказа исполняет те, на которые хватает текущего
// остатка, и оставляет прочие отложенными. Блокировка берётся только на строку
// этого товара и только на время одной короткой транзакции. Возвращает число
// исполненных заказов; повторный вызов без изменения остатка ничего не меняет.
func (r *PostgresRepository) ReconcileProduct(ctx context.Context, productID int64) (int, error) {
	var resolved int

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var stock int
		err = tx.QueryRow(ctx,
			`SELECT quantity FROM products WHERE id = $1 FOR UPDATE`,
			productID,
		).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT o.id, o.quantity
			 FROM orders o
			 JOIN backorders b ON b.order_id = o.id
			 WHERE o.product_id = $1
			 ORDER BY o.id`,
			productID,
		)
		if err != nil {
			return fmt.Errorf("select backordered orders: %w", err)
		}

		var satisfiable []int64
		for rows.Next() {
			var (
				orderID  int64
				quantity int
			)
			if err := rows.Scan(&orderID, &quantity); err != nil {
				rows.Close()
				return fmt.Errorf("scan backordered order: %w", err)
			}
			// Каждый отложенный заказ оценивается независимо против
			// оставшегося остатка, без прерывания обхода.
			if stock >= quantity {
				stock -= quantity
				satisfiable = append(satisfiable, orderID)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		// Ничего не исполнено — фиксировать нечего, транзакция откатится.
		if len(satisfiable) == 0 {
			return nil
		}

		for _, orderID := range satisfiable {
			if _, err := tx.Exec(ctx,
				`DELETE FROM backorders WHERE order_id = $1`,
				orderID,
			); err != nil {
				return fmt.Errorf("delete backorder: %w", err)
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET quantity = $2 WHERE id = $1`,
			productID, stock,
		); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		resolved = len(satisfiable)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return resolved, nil
}
