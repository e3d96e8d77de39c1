package port

import "context"

// CacheRepository caches current stock per menu item. It is an optimization
// over the movement ledger, never the source of truth.
type CacheRepository interface {
	// GetStock returns the cached stock and whether the entry exists.
	GetStock(ctx context.Context, itemID int64) (int, bool, error)

	// SetStock stores an authoritative stock value computed from the ledger.
	SetStock(ctx context.Context, itemID int64, stock int) error

	// ApplyDelta shifts an existing entry by delta; absent entries are left
	// absent so the next read refills from the ledger.
	ApplyDelta(ctx context.Context, itemID int64, delta int) error

	// InvalidateStock drops the entry.
	InvalidateStock(ctx context.Context, itemID int64) error
}
