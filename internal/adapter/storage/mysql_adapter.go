package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/port"
)

// MySQLAdapter implements port.DatabaseRepository. Multi-statement
// mutations each own a transaction: begin, deferred rollback, guarded
// updates checked through RowsAffected, commit only on full success.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- menu catalog ---

func (m *MySQLAdapter) CreateMenuItem(ctx context.Context, item domain.MenuItem) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO menu_items (name, description, category, price, stockable)
		VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Category, item.Price, item.Stockable,
	)
	if err != nil {
		return 0, fmt.Errorf("insert menu item: %w", err)
	}
	return result.LastInsertId()
}

func (m *MySQLAdapter) UpdateMenuItem(ctx context.Context, item domain.MenuItem) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = ?, description = ?, category = ?, price = ?, stockable = ?
		WHERE id = ?`,
		item.Name, item.Description, item.Category, item.Price, item.Stockable, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, stockable
		FROM menu_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Category, &item.Price, &item.Stockable)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query menu item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	return m.queryMenuItems(ctx, `
		SELECT id, name, description, category, price, stockable
		FROM menu_items ORDER BY category, name`)
}

func (m *MySQLAdapter) ListStockableItems(ctx context.Context) ([]domain.MenuItem, error) {
	return m.queryMenuItems(ctx, `
		SELECT id, name, description, category, price, stockable
		FROM menu_items WHERE stockable = TRUE ORDER BY name`)
}

func (m *MySQLAdapter) queryMenuItems(ctx context.Context, query string) ([]domain.MenuItem, error) {
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &item.Price, &item.Stockable); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) InsertMenuAudit(ctx context.Context, audit domain.MenuAudit) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO menu_audit (menu_item_id, action, old_values, new_values, user_info, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		audit.MenuItemID, audit.Action, audit.OldValues, audit.NewValues, audit.UserInfo, audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert menu audit: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListMenuAudit(ctx context.Context) ([]domain.MenuAudit, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, menu_item_id, action, old_values, new_values, user_info, created_at
		FROM menu_audit ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query menu audit: %w", err)
	}
	defer rows.Close()

	var entries []domain.MenuAudit
	for rows.Next() {
		var entry domain.MenuAudit
		if err := rows.Scan(&entry.ID, &entry.MenuItemID, &entry.Action, &entry.OldValues,
			&entry.NewValues, &entry.UserInfo, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan menu audit: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// --- tables ---

func (m *MySQLAdapter) CreateTable(ctx context.Context, table domain.RestaurantTable) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO restaurant_tables (table_number, capacity, status)
		VALUES (?, ?, ?)`,
		table.Number, table.Capacity, table.Status,
	)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetTable(ctx context.Context, number int) (*domain.RestaurantTable, error) {
	var (
		table       domain.RestaurantTable
		customer    sql.NullString
		openOrderID sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT table_number, capacity, status, customer_name, open_order_id
		FROM restaurant_tables WHERE table_number = ?`, number,
	).Scan(&table.Number, &table.Capacity, &table.Status, &customer, &openOrderID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}

	table.CustomerName = customer.String
	table.OpenOrderID = openOrderID.String
	return &table, nil
}

func (m *MySQLAdapter) ListTables(ctx context.Context) ([]domain.RestaurantTable, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT table_number, capacity, status, customer_name, open_order_id
		FROM restaurant_tables ORDER BY table_number`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.RestaurantTable
	for rows.Next() {
		var (
			table       domain.RestaurantTable
			customer    sql.NullString
			openOrderID sql.NullString
		)
		if err := rows.Scan(&table.Number, &table.Capacity, &table.Status, &customer, &openOrderID); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		table.CustomerName = customer.String
		table.OpenOrderID = openOrderID.String
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

// --- orders ---

func (m *MySQLAdapter) OpenOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, table_number, customer_name, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.TableNumber, order.CustomerName, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE restaurant_tables
		SET status = ?, customer_name = ?, open_order_id = ?
		WHERE table_number = ? AND status = ?`,
		domain.TableStatusInUse, order.CustomerName, order.ID,
		order.TableNumber, domain.TableStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("seize table: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrTableUnavailable
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order    domain.Order
		closedAt sql.NullTime
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, table_number, customer_name, status, created_at, closed_at
		FROM orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.TableNumber, &order.CustomerName, &order.Status, &order.CreatedAt, &closedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if closedAt.Valid {
		order.ClosedAt = &closedAt.Time
	}
	return &order, nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, table_number, customer_name, status, created_at, closed_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			order    domain.Order
			closedAt sql.NullTime
		)
		if err := rows.Scan(&order.ID, &order.TableNumber, &order.CustomerName,
			&order.Status, &order.CreatedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if closedAt.Valid {
			order.ClosedAt = &closedAt.Time
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) ListOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, unit_price, notes
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.MenuItemName,
			&line.Quantity, &line.UnitPrice, &line.Notes); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (m *MySQLAdapter) GetOrderLine(ctx context.Context, orderID string, lineID int64) (*domain.OrderLine, error) {
	var line domain.OrderLine
	err := m.db.QueryRowContext(ctx, `
		SELECT id, order_id, menu_item_id, menu_item_name, quantity, unit_price, notes
		FROM order_items WHERE id = ? AND order_id = ?`, lineID, orderID,
	).Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.MenuItemName,
		&line.Quantity, &line.UnitPrice, &line.Notes)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order line: %w", err)
	}
	return &line, nil
}

func (m *MySQLAdapter) AddOrderLine(ctx context.Context, line domain.OrderLine, hist domain.LineHistory) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, menu_item_name, quantity, unit_price, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		line.OrderID, line.MenuItemID, line.MenuItemName, line.Quantity, line.UnitPrice, line.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order line id: %w", err)
	}

	if err := insertHistoryTx(ctx, tx, hist); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (m *MySQLAdapter) UpdateOrderLine(ctx context.Context, line domain.OrderLine, before, after domain.LineHistory) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE order_items SET quantity = ?, notes = ? WHERE id = ? AND order_id = ?`,
		line.Quantity, line.Notes, line.ID, line.OrderID,
	)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}

	// Prior state first so the history reads as a diff.
	if err := insertHistoryTx(ctx, tx, before); err != nil {
		return err
	}
	if err := insertHistoryTx(ctx, tx, after); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MySQLAdapter) DeleteOrderLine(ctx context.Context, orderID string, lineID int64, hist domain.LineHistory) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertHistoryTx(ctx, tx, hist); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ? AND order_id = ?`, lineID, orderID)
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, payment_method, amount, created_at
		FROM order_payments WHERE order_id = ? ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (m *MySQLAdapter) ListLineHistory(ctx context.Context, orderID string) ([]domain.LineHistory, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, menu_item_name, action, quantity, unit_price, notes, created_at
		FROM order_item_history WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query line history: %w", err)
	}
	defer rows.Close()

	var entries []domain.LineHistory
	for rows.Next() {
		var h domain.LineHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.MenuItemID, &h.MenuItemName,
			&h.Action, &h.Quantity, &h.UnitPrice, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan line history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// CloseOrder applies the whole closure in one transaction. The status flip
// is guarded on the order still being active, so a second close of the
// same order rolls back before writing anything. The table release is
// guarded on the table still referencing this order; a reassigned table is
// left untouched.
func (m *MySQLAdapter) CloseOrder(ctx context.Context, closure domain.OrderClosure) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, closed_at = ? WHERE id = ? AND status = ?`,
		domain.OrderStatusClosed, closure.ClosedAt, closure.OrderID, domain.OrderStatusActive,
	)
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrOrderNotActive
	}

	for _, movement := range closure.Movements {
		if _, err := insertMovementTx(ctx, tx, movement); err != nil {
			return err
		}
	}

	for _, payment := range closure.Payments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_payments (order_id, payment_method, amount, created_at)
			VALUES (?, ?, ?, ?)`,
			payment.OrderID, payment.Method, payment.Amount, payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE restaurant_tables
		SET status = ?, customer_name = NULL, open_order_id = NULL
		WHERE open_order_id = ?`,
		domain.TableStatusAvailable, closure.OrderID,
	)
	if err != nil {
		return fmt.Errorf("release table: %w", err)
	}

	return tx.Commit()
}

// --- stock ledger ---

func (m *MySQLAdapter) SumMovements(ctx context.Context, itemID int64) (int, error) {
	var sum int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity_change), 0) FROM movements WHERE menu_item_id = ?`, itemID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func (m *MySQLAdapter) InsertMovement(ctx context.Context, movement domain.Movement) (domain.Movement, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	saved, err := insertMovementTx(ctx, tx, movement)
	if err != nil {
		return domain.Movement{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Movement{}, err
	}
	return saved, nil
}

// insertMovementTx writes one ledger row, computing the running-balance
// snapshot from the sum of deltas inside the same transaction so the
// snapshot always equals the sum up to and including this entry.
func insertMovementTx(ctx context.Context, tx *sql.Tx, movement domain.Movement) (domain.Movement, error) {
	var sum int
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity_change), 0) FROM movements WHERE menu_item_id = ?`,
		movement.MenuItemID,
	).Scan(&sum)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("sum movements: %w", err)
	}
	movement.PartialStock = sum + movement.Delta

	result, err := tx.ExecContext(ctx, `
		INSERT INTO movements (menu_item_id, menu_item_name, quantity_change, movement_type, notes, partial_stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		movement.MenuItemID, movement.MenuItemName, movement.Delta, movement.Kind,
		movement.Notes, movement.PartialStock, movement.CreatedAt,
	)
	if err != nil {
		return domain.Movement{}, fmt.Errorf("insert movement: %w", err)
	}

	movement.ID, err = result.LastInsertId()
	if err != nil {
		return domain.Movement{}, fmt.Errorf("movement id: %w", err)
	}
	return movement, nil
}

func (m *MySQLAdapter) ListMovements(ctx context.Context) ([]domain.Movement, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, menu_item_id, menu_item_name, quantity_change, movement_type, notes, partial_stock, created_at
		FROM movements ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		var mv domain.Movement
		if err := rows.Scan(&mv.ID, &mv.MenuItemID, &mv.MenuItemName, &mv.Delta,
			&mv.Kind, &mv.Notes, &mv.PartialStock, &mv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, mv)
	}
	return movements, rows.Err()
}

func insertHistoryTx(ctx context.Context, tx *sql.Tx, hist domain.LineHistory) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_item_history (order_id, menu_item_id, menu_item_name, action, quantity, unit_price, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		hist.OrderID, hist.MenuItemID, hist.MenuItemName, hist.Action,
		hist.Quantity, hist.UnitPrice, hist.Notes, hist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert line history: %w", err)
	}
	return nil
}

// --- cash register ---

func (m *MySQLAdapter) InsertCashMovement(ctx context.Context, movement domain.CashMovement) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO manual_money_movements (payment_method, description, amount, movement_type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		movement.Method, movement.Description, movement.Amount, movement.Type, movement.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert cash movement: %w", err)
	}
	return result.LastInsertId()
}

func (m *MySQLAdapter) CashReport(ctx context.Context) ([]domain.CashReportRow, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT day, payment_method, amount, description, movement_type FROM (
			SELECT DATE_FORMAT(created_at, '%Y-%m-%d') AS day,
			       payment_method,
			       SUM(amount) AS amount,
			       '' AS description,
			       'table_order' AS movement_type
			FROM order_payments
			GROUP BY day, payment_method
			UNION ALL
			SELECT DATE_FORMAT(created_at, '%Y-%m-%d') AS day,
			       payment_method,
			       amount,
			       description,
			       movement_type
			FROM manual_money_movements
		) register
		ORDER BY day DESC, payment_method`)
	if err != nil {
		return nil, fmt.Errorf("query cash report: %w", err)
	}
	defer rows.Close()

	var report []domain.CashReportRow
	for rows.Next() {
		var row domain.CashReportRow
		if err := rows.Scan(&row.Date, &row.Method, &row.Amount, &row.Description, &row.Type); err != nil {
			return nil, fmt.Errorf("scan cash report row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
