package port

import (
	"context"
	"errors"

	"github.com/lmoreno/comanda/internal/core/domain"
)

var (
	// ErrTableUnavailable is returned by OpenOrder when the guarded table
	// seize matches no row (table missing or already in use).
	ErrTableUnavailable = errors.New("table unavailable")

	// ErrOrderNotActive is returned by CloseOrder when the guarded status
	// flip matches no row (order missing or already closed).
	ErrOrderNotActive = errors.New("order not active")
)

// DatabaseRepository is the persistence collaborator. Lookups return
// (nil, nil) for absent rows. Every method touching more than one row runs
// in its own transaction; callers never see partial effects.
type DatabaseRepository interface {
	// Menu catalog.
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (int64, error)
	UpdateMenuItem(ctx context.Context, item domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
	GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error)
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	ListStockableItems(ctx context.Context) ([]domain.MenuItem, error)
	InsertMenuAudit(ctx context.Context, audit domain.MenuAudit) error
	ListMenuAudit(ctx context.Context) ([]domain.MenuAudit, error)

	// Tables.
	CreateTable(ctx context.Context, table domain.RestaurantTable) error
	GetTable(ctx context.Context, number int) (*domain.RestaurantTable, error)
	ListTables(ctx context.Context) ([]domain.RestaurantTable, error)

	// Orders. OpenOrder inserts the order and seizes the table in one
	// transaction. AddOrderLine/UpdateOrderLine/DeleteOrderLine write the
	// line and its history rows in one transaction.
	OpenOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	GetOrderLine(ctx context.Context, orderID string, lineID int64) (*domain.OrderLine, error)
	AddOrderLine(ctx context.Context, line domain.OrderLine, hist domain.LineHistory) (int64, error)
	UpdateOrderLine(ctx context.Context, line domain.OrderLine, before, after domain.LineHistory) error
	DeleteOrderLine(ctx context.Context, orderID string, lineID int64, hist domain.LineHistory) error
	ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error)
	ListLineHistory(ctx context.Context, orderID string) ([]domain.LineHistory, error)

	// CloseOrder applies the whole closure atomically: flips the order to
	// closed, inserts movements and payments, and releases the table only
	// if it still references this order.
	CloseOrder(ctx context.Context, closure domain.OrderClosure) error

	// Stock ledger.
	SumMovements(ctx context.Context, itemID int64) (int, error)
	InsertMovement(ctx context.Context, m domain.Movement) (domain.Movement, error)
	ListMovements(ctx context.Context) ([]domain.Movement, error)

	// Cash register.
	InsertCashMovement(ctx context.Context, m domain.CashMovement) (int64, error)
	CashReport(ctx context.Context) ([]domain.CashReportRow, error)
}
