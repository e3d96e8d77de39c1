package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		category VARCHAR(100) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		stockable BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		table_number INT PRIMARY KEY,
		capacity INT NOT NULL,
		status VARCHAR(20) NOT NULL,
		customer_name VARCHAR(255),
		open_order_id VARCHAR(36)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(36) PRIMARY KEY,
		table_number INT NOT NULL,
		customer_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		closed_at DATETIME(6)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(36) NOT NULL,
		menu_item_id BIGINT NOT NULL,
		menu_item_name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unit_price DECIMAL(10,2) NOT NULL,
		notes TEXT,
		INDEX idx_order_items_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(36) NOT NULL,
		payment_method VARCHAR(50) NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_order_payments_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_item_history (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(36) NOT NULL,
		menu_item_id BIGINT NOT NULL,
		menu_item_name VARCHAR(255) NOT NULL,
		action VARCHAR(20) NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		notes TEXT,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_order_item_history_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		menu_item_id BIGINT NOT NULL,
		menu_item_name VARCHAR(255) NOT NULL,
		quantity_change INT NOT NULL,
		movement_type VARCHAR(10) NOT NULL,
		notes TEXT,
		partial_stock INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_movements_item (menu_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_audit (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		menu_item_id BIGINT NOT NULL,
		action VARCHAR(20) NOT NULL,
		old_values TEXT,
		new_values TEXT,
		user_info VARCHAR(255) NOT NULL DEFAULT 'system',
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS manual_money_movements (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		payment_method VARCHAR(50) NOT NULL,
		description TEXT,
		amount DECIMAL(10,2) NOT NULL,
		movement_type VARCHAR(20) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
}

// InitSchema creates any missing tables. Statements are idempotent, so
// running it at every startup is safe.
func (m *MySQLAdapter) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
