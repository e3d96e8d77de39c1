package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusActive OrderStatus = "active"
	OrderStatusClosed OrderStatus = "closed"
)

type Order struct {
	ID           string
	TableNumber  int
	CustomerName string
	Status       OrderStatus
	CreatedAt    time.Time
	ClosedAt     *time.Time
}

// OrderLine captures the unit price at add time; later menu price changes
// do not touch existing lines.
type OrderLine struct {
	ID           int64
	OrderID      string
	MenuItemID   int64
	MenuItemName string
	Quantity     int
	UnitPrice    decimal.Decimal
	Notes        string
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Payment struct {
	ID        int64
	OrderID   string
	Method    string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// OrderClosure is everything a successful close writes. The store applies
// it as one transaction or not at all.
type OrderClosure struct {
	OrderID   string
	ClosedAt  time.Time
	Movements []Movement
	Payments  []Payment
}
