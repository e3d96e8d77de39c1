package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// CashboxService tracks money outside orders: manual register entries and
// the daily report that unions them with order payments.
type CashboxService struct {
	db port.DatabaseRepository
}

func NewCashboxService(db port.DatabaseRepository) *CashboxService {
	return &CashboxService{db: db}
}

// RecordManual stores a manual register entry. The type follows the sign
// of the amount: positive is income, anything else an expense.
func (s *CashboxService) RecordManual(ctx context.Context, method, description, amount string) (domain.CashMovement, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return domain.CashMovement{}, fmt.Errorf("amount %q: %w", amount, ErrInvalidPayment)
	}

	kind := domain.CashManualExpense
	if parsed.IsPositive() {
		kind = domain.CashManualIncome
	}

	movement := domain.CashMovement{
		Method:      method,
		Description: description,
		Amount:      parsed,
		Type:        kind,
		CreatedAt:   time.Now(),
	}

	id, err := s.db.InsertCashMovement(ctx, movement)
	if err != nil {
		return domain.CashMovement{}, fmt.Errorf("insert cash movement: %w", err)
	}
	movement.ID = id

	return movement, nil
}

// Report returns the register view: per-day, per-method order payment
// totals alongside manual movements, newest first.
func (s *CashboxService) Report(ctx context.Context) ([]domain.CashReportRow, error) {
	return s.db.CashReport(ctx)
}
