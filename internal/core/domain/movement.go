package domain

import "time"

type MovementKind string

const (
	MovementIn     MovementKind = "in"
	MovementOut    MovementKind = "out"
	MovementAdjust MovementKind = "adjust"
)

// KindForDelta derives the movement kind from the sign of the quantity
// change. Zero-delta movements are comment-only adjustments.
func KindForDelta(delta int) MovementKind {
	switch {
	case delta > 0:
		return MovementIn
	case delta < 0:
		return MovementOut
	default:
		return MovementAdjust
	}
}

// Movement is an immutable stock ledger entry. PartialStock is the running
// balance at insert time; readers treat the sum of deltas as ground truth.
type Movement struct {
	ID           int64
	MenuItemID   int64
	MenuItemName string
	Delta        int
	Kind         MovementKind
	Notes        string
	PartialStock int
	CreatedAt    time.Time
}
