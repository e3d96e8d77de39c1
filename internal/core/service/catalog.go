package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// CatalogService covers menu and table administration. Menu mutations leave
// a best-effort audit trail: a failed audit write is logged, not fatal.
type CatalogService struct {
	db port.DatabaseRepository
}

func NewCatalogService(db port.DatabaseRepository) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) MenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.db.ListMenuItems(ctx)
}

func (s *CatalogService) MenuItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	item, err := s.db.GetMenuItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	if item == nil {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return *item, nil
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	id, err := s.db.CreateMenuItem(ctx, item)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	item.ID = id

	s.audit(ctx, id, domain.AuditCreate, "", describeItem(item))
	return item, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, item domain.MenuItem) error {
	old, err := s.db.GetMenuItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get menu item: %w", err)
	}
	if old == nil {
		return fmt.Errorf("menu item %d: %w", item.ID, ErrNotFound)
	}

	if err := s.db.UpdateMenuItem(ctx, item); err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}

	s.audit(ctx, item.ID, domain.AuditUpdate, describeItem(*old), describeItem(item))
	return nil
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id int64) error {
	old, err := s.db.GetMenuItem(ctx, id)
	if err != nil {
		return fmt.Errorf("get menu item: %w", err)
	}
	if old == nil {
		return fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}

	if err := s.db.DeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}

	s.audit(ctx, id, domain.AuditDelete, describeItem(*old), "")
	return nil
}

func (s *CatalogService) AuditLog(ctx context.Context) ([]domain.MenuAudit, error) {
	return s.db.ListMenuAudit(ctx)
}

func (s *CatalogService) Tables(ctx context.Context) ([]domain.RestaurantTable, error) {
	return s.db.ListTables(ctx)
}

func (s *CatalogService) CreateTable(ctx context.Context, number, capacity int) (domain.RestaurantTable, error) {
	table := domain.RestaurantTable{
		Number:   number,
		Capacity: capacity,
		Status:   domain.TableStatusAvailable,
	}
	if err := s.db.CreateTable(ctx, table); err != nil {
		return domain.RestaurantTable{}, fmt.Errorf("create table: %w", err)
	}
	return table, nil
}

func (s *CatalogService) audit(ctx context.Context, itemID int64, action domain.AuditAction, oldValues, newValues string) {
	entry := domain.MenuAudit{
		MenuItemID: itemID,
		Action:     action,
		OldValues:  oldValues,
		NewValues:  newValues,
		UserInfo:   "system",
		CreatedAt:  time.Now(),
	}
	if err := s.db.InsertMenuAudit(ctx, entry); err != nil {
		log.Printf("menu audit write failed for item %d (%s): %v", itemID, action, err)
	}
}

func describeItem(item domain.MenuItem) string {
	return fmt.Sprintf("name: %s, description: %s, category: %s, price: $%s, stockable: %t",
		item.Name, item.Description, item.Category, item.Price.StringFixed(2), item.Stockable)
}
