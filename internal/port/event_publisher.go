package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderClosedEvent struct {
	OrderID      string          `json:"order_id"`
	TableNumber  int             `json:"table_number"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	Payments     int             `json:"payments"`
	ClosedAt     time.Time       `json:"closed_at"`
}

// EventPublisher notifies external consumers after a commit. Publishing is
// best-effort; failures must not affect committed state.
type EventPublisher interface {
	PublishOrderClosed(ctx context.Context, event OrderClosedEvent) error
}
