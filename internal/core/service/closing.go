package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// paymentTolerance absorbs rounding noise from user-typed amounts.
var paymentTolerance = decimal.New(1, -2) // $0.01

// Close settles an active order with split payments. It validates the
// submitted rows, checks the payment total against the order total within
// a one-cent tolerance, and hands the store one closure record: stock-out
// movements for stockable lines, payments with positive amounts, the order
// status flip, and the guarded table release. The store applies all of it
// or none of it.
func (s *OrderService) Close(ctx context.Context, orderID string, methods, amounts []string) error {
	parsed, err := parseAmounts(amounts)
	if err != nil {
		return err
	}
	if len(methods) != len(parsed) {
		return fmt.Errorf("%d payment methods for %d amounts: %w", len(methods), len(parsed), ErrInvalidPayment)
	}

	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if order.Status != domain.OrderStatusActive {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderNotActive)
	}

	lines, err := s.db.ListOrderLines(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}

	orderTotal := sumLines(lines)
	paymentTotal := decimal.Zero
	for _, amount := range parsed {
		paymentTotal = paymentTotal.Add(amount)
	}

	if orderTotal.Sub(paymentTotal).Abs().GreaterThan(paymentTolerance) {
		return fmt.Errorf("payment total $%s doesn't match order total $%s: %w",
			paymentTotal.StringFixed(2), orderTotal.StringFixed(2), ErrPaymentMismatch)
	}

	closedAt := time.Now()

	movements, err := s.stockOutMovements(ctx, order.ID, lines, closedAt)
	if err != nil {
		return err
	}

	payments := make([]domain.Payment, 0, len(parsed))
	for i, amount := range parsed {
		if !amount.IsPositive() {
			continue // zero rows are dropped, not persisted
		}
		payments = append(payments, domain.Payment{
			OrderID:   order.ID,
			Method:    methods[i],
			Amount:    amount,
			CreatedAt: closedAt,
		})
	}

	closure := domain.OrderClosure{
		OrderID:   order.ID,
		ClosedAt:  closedAt,
		Movements: movements,
		Payments:  payments,
	}

	if err := s.db.CloseOrder(ctx, closure); err != nil {
		if errors.Is(err, port.ErrOrderNotActive) {
			return fmt.Errorf("order %s: %w", orderID, ErrOrderNotActive)
		}
		return fmt.Errorf("close order: %w", err)
	}

	// Committed; the remaining side paths are best-effort.
	for _, m := range movements {
		s.ledger.applyCacheDelta(ctx, m.MenuItemID, m.Delta)
	}
	s.publishClosed(ctx, *order, orderTotal, len(payments), closedAt)

	return nil
}

// stockOutMovements builds one "out" movement per stockable line.
// Non-stockable lines leave no trace in the ledger.
func (s *OrderService) stockOutMovements(ctx context.Context, orderID string, lines []domain.OrderLine, closedAt time.Time) ([]domain.Movement, error) {
	var movements []domain.Movement
	for _, line := range lines {
		item, err := s.db.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("get menu item: %w", err)
		}
		if item == nil || !item.Stockable {
			continue
		}
		movements = append(movements, domain.Movement{
			MenuItemID:   line.MenuItemID,
			MenuItemName: line.MenuItemName,
			Delta:        -line.Quantity,
			Kind:         domain.MovementOut,
			Notes:        fmt.Sprintf("Auto: Order #%s closed - %s x%d", orderID, line.MenuItemName, line.Quantity),
			CreatedAt:    closedAt,
		})
	}
	return movements, nil
}

func (s *OrderService) publishClosed(ctx context.Context, order domain.Order, total decimal.Decimal, payments int, closedAt time.Time) {
	if s.events == nil {
		return
	}
	event := port.OrderClosedEvent{
		OrderID:      order.ID,
		TableNumber:  order.TableNumber,
		CustomerName: order.CustomerName,
		Total:        total,
		Payments:     payments,
		ClosedAt:     closedAt,
	}
	if err := s.events.PublishOrderClosed(ctx, event); err != nil {
		log.Printf("failed to publish order closed event for %s: %v", order.ID, err)
	}
}

// parseAmounts converts submitted amount fields, skipping blank rows the
// way the form posts them. Unparseable or negative amounts are rejected.
func parseAmounts(raw []string) ([]decimal.Decimal, error) {
	amounts := make([]decimal.Decimal, 0, len(raw))
	for _, field := range raw {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		amount, err := decimal.NewFromString(field)
		if err != nil {
			return nil, fmt.Errorf("amount %q: %w", field, ErrInvalidPayment)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("amount %q is negative: %w", field, ErrInvalidPayment)
		}
		amounts = append(amounts, amount)
	}
	return amounts, nil
}
