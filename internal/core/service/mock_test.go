package service

import (
	"context"
	"errors"
	"sync"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// mockDatabaseRepo is an in-memory port.DatabaseRepository with the same
// guarded-update semantics as the MySQL adapter.
type mockDatabaseRepo struct {
	mu sync.Mutex

	menuItems map[int64]domain.MenuItem
	tables    map[int]domain.RestaurantTable
	orders    map[string]domain.Order
	lines     map[int64]domain.OrderLine
	payments  []domain.Payment
	history   []domain.LineHistory
	movements []domain.Movement
	audits    []domain.MenuAudit
	cash      []domain.CashMovement

	nextItemID     int64
	nextLineID     int64
	nextMovementID int64

	failClose  error // injected CloseOrder failure
	closeCalls int
}

func newMockDatabaseRepo() *mockDatabaseRepo {
	return &mockDatabaseRepo{
		menuItems: make(map[int64]domain.MenuItem),
		tables:    make(map[int]domain.RestaurantTable),
		orders:    make(map[string]domain.Order),
		lines:     make(map[int64]domain.OrderLine),
	}
}

func (m *mockDatabaseRepo) addItem(item domain.MenuItem) domain.MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextItemID++
	item.ID = m.nextItemID
	m.menuItems[item.ID] = item
	return item
}

func (m *mockDatabaseRepo) addTable(number, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[number] = domain.RestaurantTable{
		Number:   number,
		Capacity: capacity,
		Status:   domain.TableStatusAvailable,
	}
}

func (m *mockDatabaseRepo) CreateMenuItem(ctx context.Context, item domain.MenuItem) (int64, error) {
	return m.addItem(item).ID, nil
}

func (m *mockDatabaseRepo) UpdateMenuItem(ctx context.Context, item domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuItems[item.ID] = item
	return nil
}

func (m *mockDatabaseRepo) DeleteMenuItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.menuItems, id)
	return nil
}

func (m *mockDatabaseRepo) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.menuItems[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *mockDatabaseRepo) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]domain.MenuItem, 0, len(m.menuItems))
	for _, item := range m.menuItems {
		items = append(items, item)
	}
	return items, nil
}

func (m *mockDatabaseRepo) ListStockableItems(ctx context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.MenuItem
	for _, item := range m.menuItems {
		if item.Stockable {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockDatabaseRepo) InsertMenuAudit(ctx context.Context, audit domain.MenuAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, audit)
	return nil
}

func (m *mockDatabaseRepo) ListMenuAudit(ctx context.Context) ([]domain.MenuAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MenuAudit(nil), m.audits...), nil
}

func (m *mockDatabaseRepo) CreateTable(ctx context.Context, table domain.RestaurantTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[table.Number]; exists {
		return errors.New("duplicate table number")
	}
	m.tables[table.Number] = table
	return nil
}

func (m *mockDatabaseRepo) GetTable(ctx context.Context, number int) (*domain.RestaurantTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[number]
	if !ok {
		return nil, nil
	}
	return &table, nil
}

func (m *mockDatabaseRepo) ListTables(ctx context.Context) ([]domain.RestaurantTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tables := make([]domain.RestaurantTable, 0, len(m.tables))
	for _, table := range m.tables {
		tables = append(tables, table)
	}
	return tables, nil
}

func (m *mockDatabaseRepo) OpenOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[order.TableNumber]
	if !ok || table.Status != domain.TableStatusAvailable {
		return port.ErrTableUnavailable
	}
	table.Status = domain.TableStatusInUse
	table.CustomerName = order.CustomerName
	table.OpenOrderID = order.ID
	m.tables[order.TableNumber] = table
	m.orders[order.ID] = order
	return nil
}

func (m *mockDatabaseRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *mockDatabaseRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *mockDatabaseRepo) ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linesForLocked(orderID), nil
}

func (m *mockDatabaseRepo) linesForLocked(orderID string) []domain.OrderLine {
	var lines []domain.OrderLine
	for id := int64(1); id <= m.nextLineID; id++ {
		if line, ok := m.lines[id]; ok && line.OrderID == orderID {
			lines = append(lines, line)
		}
	}
	return lines
}

func (m *mockDatabaseRepo) GetOrderLine(ctx context.Context, orderID string, lineID int64) (*domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, ok := m.lines[lineID]
	if !ok || line.OrderID != orderID {
		return nil, nil
	}
	return &line, nil
}

func (m *mockDatabaseRepo) AddOrderLine(ctx context.Context, line domain.OrderLine, hist domain.LineHistory) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLineID++
	line.ID = m.nextLineID
	m.lines[line.ID] = line
	m.history = append(m.history, hist)
	return line.ID, nil
}

func (m *mockDatabaseRepo) UpdateOrderLine(ctx context.Context, line domain.OrderLine, before, after domain.LineHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[line.ID] = line
	m.history = append(m.history, before, after)
	return nil
}

func (m *mockDatabaseRepo) DeleteOrderLine(ctx context.Context, orderID string, lineID int64, hist domain.LineHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, hist)
	delete(m.lines, lineID)
	return nil
}

func (m *mockDatabaseRepo) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var payments []domain.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (m *mockDatabaseRepo) ListLineHistory(ctx context.Context, orderID string) ([]domain.LineHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.LineHistory
	for _, h := range m.history {
		if h.OrderID == orderID {
			entries = append(entries, h)
		}
	}
	return entries, nil
}

func (m *mockDatabaseRepo) CloseOrder(ctx context.Context, closure domain.OrderClosure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++

	if m.failClose != nil {
		return m.failClose
	}

	order, ok := m.orders[closure.OrderID]
	if !ok || order.Status != domain.OrderStatusActive {
		return port.ErrOrderNotActive
	}

	order.Status = domain.OrderStatusClosed
	closedAt := closure.ClosedAt
	order.ClosedAt = &closedAt
	m.orders[closure.OrderID] = order

	for _, movement := range closure.Movements {
		m.insertMovementLocked(movement)
	}
	m.payments = append(m.payments, closure.Payments...)

	for number, table := range m.tables {
		if table.OpenOrderID == closure.OrderID {
			table.Status = domain.TableStatusAvailable
			table.CustomerName = ""
			table.OpenOrderID = ""
			m.tables[number] = table
		}
	}
	return nil
}

func (m *mockDatabaseRepo) SumMovements(ctx context.Context, itemID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, movement := range m.movements {
		if movement.MenuItemID == itemID {
			sum += movement.Delta
		}
	}
	return sum, nil
}

func (m *mockDatabaseRepo) InsertMovement(ctx context.Context, movement domain.Movement) (domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertMovementLocked(movement), nil
}

func (m *mockDatabaseRepo) insertMovementLocked(movement domain.Movement) domain.Movement {
	sum := 0
	for _, existing := range m.movements {
		if existing.MenuItemID == movement.MenuItemID {
			sum += existing.Delta
		}
	}
	movement.PartialStock = sum + movement.Delta
	m.nextMovementID++
	movement.ID = m.nextMovementID
	m.movements = append(m.movements, movement)
	return movement
}

func (m *mockDatabaseRepo) ListMovements(ctx context.Context) ([]domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Movement(nil), m.movements...), nil
}

func (m *mockDatabaseRepo) InsertCashMovement(ctx context.Context, movement domain.CashMovement) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cash = append(m.cash, movement)
	return int64(len(m.cash)), nil
}

func (m *mockDatabaseRepo) CashReport(ctx context.Context) ([]domain.CashReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var report []domain.CashReportRow
	for _, movement := range m.cash {
		report = append(report, domain.CashReportRow{
			Date:        movement.CreatedAt.Format("2006-01-02"),
			Method:      movement.Method,
			Amount:      movement.Amount,
			Description: movement.Description,
			Type:        movement.Type,
		})
	}
	return report, nil
}

func (m *mockDatabaseRepo) movementsFor(itemID int64) []domain.Movement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var movements []domain.Movement
	for _, movement := range m.movements {
		if movement.MenuItemID == itemID {
			movements = append(movements, movement)
		}
	}
	return movements
}

// mockCacheRepo is an in-memory stock cache.
type mockCacheRepo struct {
	mu      sync.Mutex
	entries map[int64]int
	failAll bool
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{entries: make(map[int64]int)}
}

var errCacheDown = errors.New("cache down")

func (c *mockCacheRepo) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return 0, false, errCacheDown
	}
	stock, ok := c.entries[itemID]
	return stock, ok, nil
}

func (c *mockCacheRepo) SetStock(ctx context.Context, itemID int64, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	c.entries[itemID] = stock
	return nil
}

func (c *mockCacheRepo) ApplyDelta(ctx context.Context, itemID int64, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	if _, ok := c.entries[itemID]; ok {
		c.entries[itemID] += delta
	}
	return nil
}

func (c *mockCacheRepo) InvalidateStock(ctx context.Context, itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, itemID)
	return nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []port.OrderClosedEvent
}

func (p *mockPublisher) PublishOrderClosed(ctx context.Context, event port.OrderClosedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
