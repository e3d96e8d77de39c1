package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistoryAction string

// Wire values carried over from the original schema. An edit produces an
// old_edited/new_edited pair so the log is a full diff trail.
const (
	HistoryAdded        HistoryAction = "added"
	HistoryEditedBefore HistoryAction = "old_edited"
	HistoryEditedAfter  HistoryAction = "new_edited"
	HistoryRemoved      HistoryAction = "removed"
)

// LineHistory snapshots an order line at the moment of a mutation.
// Rows are append-only.
type LineHistory struct {
	ID           int64
	OrderID      string
	MenuItemID   int64
	MenuItemName string
	Action       HistoryAction
	Quantity     int
	UnitPrice    decimal.Decimal
	Notes        string
	CreatedAt    time.Time
}

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type MenuAudit struct {
	ID         int64
	MenuItemID int64
	Action     AuditAction
	OldValues  string
	NewValues  string
	UserInfo   string
	CreatedAt  time.Time
}
