// Package model содержит доменные сущности магазина.
package model

import "time"

// Customer представляет покупателя магазина.
type Customer struct {
	ID            int64
	FullName      string
	Address       string
	ContactNumber string
	Email         string
	CreatedAt     time.Time
}

// Product описывает товар на складе. Цена хранится в копейках,
// Quantity — текущий остаток, никогда не отрицательный.
type Product struct {
	ID          int64
	Name        string
	Description string
	PriceCents  int64
	Quantity    int
	CreatedAt   time.Time
}

// ProductUpdate описывает изменение товара. Пустые название и описание
// оставляют прежние значения, цена и остаток применяются как есть.
type ProductUpdate struct {
	Name        string
	Description string
	PriceCents  int64
	Quantity    int
}

// Order описывает размещённый заказ. Суммы рассчитываются движком при
// размещении и обновлении и хранятся в копейках.
type Order struct {
	ID              int64
	ProductID       int64
	CustomerID      int64
	Quantity        int
	DiscountPct     float64
	TotalCents      int64
	DiscountedCents int64
	CreatedAt       time.Time
}

// Backorder — отметка о том, что заказ принят, но не обеспечен остатком.
// У заказа может быть не более одной такой отметки; её отсутствие означает,
// что заказ исполнен и остаток уже списан.
type Backorder struct {
	ID        int64
	OrderID   int64
	CreatedAt time.Time
}
