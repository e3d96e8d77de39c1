package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// LedgerService computes stock from the append-only movement ledger.
// Current stock for an item is the sum of its deltas; the cache, when
// present, only memoizes that sum.
type LedgerService struct {
	db    port.DatabaseRepository
	cache port.CacheRepository
}

// NewLedgerService builds the ledger. cache may be nil.
func NewLedgerService(db port.DatabaseRepository, cache port.CacheRepository) *LedgerService {
	return &LedgerService{db: db, cache: cache}
}

// CurrentStock returns the sum of movement deltas for the item. An item
// with no movements reports 0, same as an unknown item.
func (s *LedgerService) CurrentStock(ctx context.Context, itemID int64) (int, error) {
	if s.cache != nil {
		if stock, ok, err := s.cache.GetStock(ctx, itemID); err == nil && ok {
			return stock, nil
		} else if err != nil {
			log.Printf("stock cache read failed for item %d: %v", itemID, err)
		}
	}

	stock, err := s.db.SumMovements(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetStock(ctx, itemID, stock); err != nil {
			log.Printf("stock cache fill failed for item %d: %v", itemID, err)
		}
	}

	return stock, nil
}

// RecordMovement appends one ledger entry. The kind is derived from the
// sign of delta; negative resulting stock is recorded, not rejected.
func (s *LedgerService) RecordMovement(ctx context.Context, itemID int64, delta int, notes string) (domain.Movement, error) {
	item, err := s.db.GetMenuItem(ctx, itemID)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("get menu item: %w", err)
	}
	if item == nil {
		return domain.Movement{}, fmt.Errorf("menu item %d: %w", itemID, ErrNotFound)
	}

	m := domain.Movement{
		MenuItemID:   itemID,
		MenuItemName: item.Name,
		Delta:        delta,
		Kind:         domain.KindForDelta(delta),
		Notes:        notes,
		CreatedAt:    time.Now(),
	}

	saved, err := s.db.InsertMovement(ctx, m)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("insert movement: %w", err)
	}

	s.applyCacheDelta(ctx, itemID, delta)
	return saved, nil
}

func (s *LedgerService) Movements(ctx context.Context) ([]domain.Movement, error) {
	return s.db.ListMovements(ctx)
}

func (s *LedgerService) StockableItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.db.ListStockableItems(ctx)
}

// applyCacheDelta shifts the cached stock after a committed write. On
// failure the entry is dropped so the next read recomputes from the ledger.
func (s *LedgerService) applyCacheDelta(ctx context.Context, itemID int64, delta int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ApplyDelta(ctx, itemID, delta); err != nil {
		log.Printf("stock cache delta failed for item %d: %v", itemID, err)
		if err := s.cache.InvalidateStock(ctx, itemID); err != nil {
			log.Printf("stock cache invalidate failed for item %d: %v", itemID, err)
		}
	}
}
