package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CashMovementType string

const (
	CashManualIncome  CashMovementType = "manual_income"
	CashManualExpense CashMovementType = "manual_expense"
	CashTableOrder    CashMovementType = "table_order"
)

// CashMovement is a manually entered register entry, outside any order.
type CashMovement struct {
	ID          int64
	Method      string
	Description string
	Amount      decimal.Decimal
	Type        CashMovementType
	CreatedAt   time.Time
}

// CashReportRow is one line of the daily register report: either a day's
// order payments grouped by method, or a single manual movement.
type CashReportRow struct {
	Date        string
	Method      string
	Amount      decimal.Decimal
	Description string
	Type        CashMovementType
}
