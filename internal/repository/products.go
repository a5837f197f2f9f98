package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vpetukhov/depstore-system/internal/model"
)

// CreateProduct добавляет новый товар и возвращает его с присвоенным идентификатором.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, price_cents, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Name, p.Description, p.PriceCents, p.Quantity,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// GetProductByID возвращает товар по идентификатору.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price_cents, quantity, created_at
		 FROM products WHERE id = $1`,
		id,
	)

	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// ListProducts возвращает список всех товаров.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, price_cents, quantity, created_at
		 FROM products
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListProductIDs возвращает идентификаторы всех товаров. Используется
// процессом пересмотра отложенных заказов, чтобы не держать блокировки
// при обходе всего каталога.
func (r *PostgresRepository) ListProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select product ids: %w", err)
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		res = append(res, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateProduct обновляет данные товара в одной транзакции: строка товара
// блокируется через FOR UPDATE, чтобы запись остатка не перекрыла
// параллельное списание по заказу. Пустые название и описание оставляют
// прежние значения, цена и остаток применяются как есть.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error) {
	var saved model.Product

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var p model.Product
		err = tx.QueryRow(ctx,
			`SELECT id, name, description, price_cents, quantity, created_at
			 FROM products WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Quantity, &p.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		if upd.Name != "" {
			p.Name = upd.Name
		}
		if upd.Description != "" {
			p.Description = upd.Description
		}
		p.PriceCents = upd.PriceCents
		p.Quantity = upd.Quantity

		if _, err := tx.Exec(ctx,
			`UPDATE products
			 SET name = $2, description = $3, price_cents = $4, quantity = $5
			 WHERE id = $1`,
			p.ID, p.Name, p.Description, p.PriceCents, p.Quantity,
		); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// DeleteProduct удаляет товар. Товар, на который ссылаются заказы, удалить нельзя.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrProductHasOrders
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
