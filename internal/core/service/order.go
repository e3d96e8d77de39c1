package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// OrderService owns the order lifecycle: open on a table, mutate lines
// while active, close with split payments.
type OrderService struct {
	db     port.DatabaseRepository
	ledger *LedgerService
	events port.EventPublisher
}

// NewOrderService builds the order aggregate. events may be nil.
func NewOrderService(db port.DatabaseRepository, ledger *LedgerService, events port.EventPublisher) *OrderService {
	return &OrderService{db: db, ledger: ledger, events: events}
}

// Open creates an active order on an available table and seizes the table
// (status, customer name, open-order reference) in the same transaction.
func (s *OrderService) Open(ctx context.Context, tableNumber int, customerName string) (domain.Order, error) {
	table, err := s.db.GetTable(ctx, tableNumber)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get table: %w", err)
	}
	if table == nil {
		return domain.Order{}, fmt.Errorf("table %d: %w", tableNumber, ErrNotFound)
	}
	if table.Status != domain.TableStatusAvailable {
		return domain.Order{}, fmt.Errorf("table %d: %w", tableNumber, ErrTableOccupied)
	}

	order := domain.Order{
		ID:           uuid.NewString(),
		TableNumber:  tableNumber,
		CustomerName: customerName,
		Status:       domain.OrderStatusActive,
		CreatedAt:    time.Now(),
	}

	if err := s.db.OpenOrder(ctx, order); err != nil {
		if errors.Is(err, port.ErrTableUnavailable) {
			return domain.Order{}, fmt.Errorf("table %d: %w", tableNumber, ErrTableOccupied)
		}
		return domain.Order{}, fmt.Errorf("open order: %w", err)
	}

	return order, nil
}

// AddLine appends a line to an active order, capturing the item's current
// price, and writes an "added" history row in the same transaction.
func (s *OrderService) AddLine(ctx context.Context, orderID string, itemID int64, quantity int, notes string) (domain.OrderLine, error) {
	if quantity < 1 {
		return domain.OrderLine{}, ErrInvalidQuantity
	}

	if _, err := s.activeOrder(ctx, orderID); err != nil {
		return domain.OrderLine{}, err
	}

	item, err := s.db.GetMenuItem(ctx, itemID)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("get menu item: %w", err)
	}
	if item == nil {
		return domain.OrderLine{}, fmt.Errorf("menu item %d: %w", itemID, ErrNotFound)
	}

	line := domain.OrderLine{
		OrderID:      orderID,
		MenuItemID:   item.ID,
		MenuItemName: item.Name,
		Quantity:     quantity,
		UnitPrice:    item.Price,
		Notes:        notes,
	}

	id, err := s.db.AddOrderLine(ctx, line, lineSnapshot(line, domain.HistoryAdded))
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("add order line: %w", err)
	}
	line.ID = id

	return line, nil
}

// EditLine updates quantity and notes, writing an old_edited/new_edited
// history pair (prior state first) in the same transaction. The captured
// unit price is never changed by an edit.
func (s *OrderService) EditLine(ctx context.Context, orderID string, lineID int64, quantity int, notes string) (domain.OrderLine, error) {
	if quantity < 1 {
		return domain.OrderLine{}, ErrInvalidQuantity
	}

	if _, err := s.activeOrder(ctx, orderID); err != nil {
		return domain.OrderLine{}, err
	}

	current, err := s.db.GetOrderLine(ctx, orderID, lineID)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("get order line: %w", err)
	}
	if current == nil {
		return domain.OrderLine{}, fmt.Errorf("order line %d: %w", lineID, ErrNotFound)
	}

	updated := *current
	updated.Quantity = quantity
	updated.Notes = notes

	before := lineSnapshot(*current, domain.HistoryEditedBefore)
	after := lineSnapshot(updated, domain.HistoryEditedAfter)
	if err := s.db.UpdateOrderLine(ctx, updated, before, after); err != nil {
		return domain.OrderLine{}, fmt.Errorf("update order line: %w", err)
	}

	return updated, nil
}

// RemoveLine deletes a line, recording its last state as a "removed"
// history row in the same transaction.
func (s *OrderService) RemoveLine(ctx context.Context, orderID string, lineID int64) error {
	if _, err := s.activeOrder(ctx, orderID); err != nil {
		return err
	}

	current, err := s.db.GetOrderLine(ctx, orderID, lineID)
	if err != nil {
		return fmt.Errorf("get order line: %w", err)
	}
	if current == nil {
		return fmt.Errorf("order line %d: %w", lineID, ErrNotFound)
	}

	hist := lineSnapshot(*current, domain.HistoryRemoved)
	if err := s.db.DeleteOrderLine(ctx, orderID, lineID, hist); err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}

	return nil
}

// Total recomputes the order total from current lines on every call.
func (s *OrderService) Total(ctx context.Context, orderID string) (decimal.Decimal, error) {
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return decimal.Zero, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	lines, err := s.db.ListOrderLines(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list order lines: %w", err)
	}
	return sumLines(lines), nil
}

// OrderDetail is the read model for one order.
type OrderDetail struct {
	Order    domain.Order
	Lines    []domain.OrderLine
	Payments []domain.Payment
	Total    decimal.Decimal
}

func (s *OrderService) Detail(ctx context.Context, orderID string) (OrderDetail, error) {
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return OrderDetail{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	lines, err := s.db.ListOrderLines(ctx, orderID)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("list order lines: %w", err)
	}
	payments, err := s.db.ListPayments(ctx, orderID)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("list payments: %w", err)
	}

	return OrderDetail{
		Order:    *order,
		Lines:    lines,
		Payments: payments,
		Total:    sumLines(lines),
	}, nil
}

func (s *OrderService) List(ctx context.Context) ([]OrderDetail, error) {
	orders, err := s.db.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail, err := s.Detail(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *OrderService) History(ctx context.Context, orderID string) ([]domain.LineHistory, error) {
	return s.db.ListLineHistory(ctx, orderID)
}

// activeOrder loads the order and rejects line mutations on anything but an
// active order; a closed order is indistinguishable from a missing one here.
func (s *OrderService) activeOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.Status != domain.OrderStatusActive {
		return nil, fmt.Errorf("active order %s: %w", orderID, ErrNotFound)
	}
	return order, nil
}

func lineSnapshot(line domain.OrderLine, action domain.HistoryAction) domain.LineHistory {
	return domain.LineHistory{
		OrderID:      line.OrderID,
		MenuItemID:   line.MenuItemID,
		MenuItemName: line.MenuItemName,
		Action:       action,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		Notes:        line.Notes,
		CreatedAt:    time.Now(),
	}
}

func sumLines(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
