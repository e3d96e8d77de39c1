package tests

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/lmoreno/comanda/internal/adapter/storage"
	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/core/service"
)

type testEnv struct {
	mysql   *sql.DB
	db      *storage.MySQLAdapter
	catalog *service.CatalogService
	ledger  *service.LedgerService
	orders  *service.OrderService
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/comanda?parseTime=true"
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema failed: %v", err)
	}

	ledger := service.NewLedgerService(adapter, nil)
	return &testEnv{
		mysql:   db,
		db:      adapter,
		catalog: service.NewCatalogService(adapter),
		ledger:  ledger,
		orders:  service.NewOrderService(adapter, ledger, nil),
		cleanup: func() { db.Close() },
	}
}

func (env *testEnv) removeItem(itemID int64) {
	ctx := context.Background()
	env.mysql.ExecContext(ctx, `DELETE FROM movements WHERE menu_item_id = ?`, itemID)
	env.mysql.ExecContext(ctx, `DELETE FROM menu_audit WHERE menu_item_id = ?`, itemID)
	env.mysql.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, itemID)
}

func (env *testEnv) removeOrder(orderID string) {
	ctx := context.Background()
	env.mysql.ExecContext(ctx, `DELETE FROM order_payments WHERE order_id = ?`, orderID)
	env.mysql.ExecContext(ctx, `DELETE FROM order_item_history WHERE order_id = ?`, orderID)
	env.mysql.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
	env.mysql.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
}

// Full service flow: stock a menu item, open a table, build an order with
// stockable and non-stockable lines, close with a split payment, and check
// the ledger, the payments, and the table afterwards.
func TestIntegration_FullServiceFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()

	pizza, err := env.catalog.CreateMenuItem(ctx, domain.MenuItem{
		Name:      "integration-pizza",
		Category:  "food",
		Price:     decimal.NewFromFloat(15.99),
		Stockable: true,
	})
	if err != nil {
		t.Fatalf("create pizza failed: %v", err)
	}
	defer env.removeItem(pizza.ID)

	serviceFee, err := env.catalog.CreateMenuItem(ctx, domain.MenuItem{
		Name:     "integration-service",
		Category: "service",
		Price:    decimal.NewFromFloat(5.00),
	})
	if err != nil {
		t.Fatalf("create service fee failed: %v", err)
	}
	defer env.removeItem(serviceFee.ID)

	if _, err := env.ledger.RecordMovement(ctx, pizza.ID, 50, "Initial stock"); err != nil {
		t.Fatalf("opening stock failed: %v", err)
	}
	stock, err := env.ledger.CurrentStock(ctx, pizza.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if stock != 50 {
		t.Fatalf("expected opening stock 50, got %d", stock)
	}

	env.mysql.ExecContext(ctx, `DELETE FROM restaurant_tables WHERE table_number = 9100`)
	if _, err := env.catalog.CreateTable(ctx, 9100, 4); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	defer env.mysql.ExecContext(ctx, `DELETE FROM restaurant_tables WHERE table_number = 9100`)

	order, err := env.orders.Open(ctx, 9100, "Ana")
	if err != nil {
		t.Fatalf("open order failed: %v", err)
	}
	defer env.removeOrder(order.ID)

	if _, err := env.orders.AddLine(ctx, order.ID, pizza.ID, 3, ""); err != nil {
		t.Fatalf("add pizza line failed: %v", err)
	}
	if _, err := env.orders.AddLine(ctx, order.ID, serviceFee.ID, 1, ""); err != nil {
		t.Fatalf("add service line failed: %v", err)
	}

	total, err := env.orders.Total(ctx, order.ID)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}
	if !total.Equal(decimal.NewFromFloat(52.97)) {
		t.Fatalf("expected total 52.97, got %s", total)
	}

	// A second party cannot take the occupied table.
	if _, err := env.orders.Open(ctx, 9100, "Luis"); err == nil {
		t.Error("expected open on occupied table to fail")
	}

	if err := env.orders.Close(ctx, order.ID, []string{"cash", "card"}, []string{"30.00", "22.97"}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	stock, err = env.ledger.CurrentStock(ctx, pizza.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if stock != 47 {
		t.Errorf("expected stock 47 after close, got %d", stock)
	}

	serviceStock, err := env.ledger.CurrentStock(ctx, serviceFee.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if serviceStock != 0 {
		t.Errorf("expected no ledger trace for non-stockable item, got %d", serviceStock)
	}

	detail, err := env.orders.Detail(ctx, order.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if detail.Order.Status != domain.OrderStatusClosed {
		t.Errorf("expected closed order, got %s", detail.Order.Status)
	}
	if len(detail.Payments) != 2 {
		t.Errorf("expected 2 payments, got %d", len(detail.Payments))
	}

	table, err := env.db.GetTable(ctx, 9100)
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if table.Status != domain.TableStatusAvailable || table.OpenOrderID != "" {
		t.Errorf("expected released table, got %s/%q", table.Status, table.OpenOrderID)
	}

	// Closing again must not write anything.
	if err := env.orders.Close(ctx, order.ID, []string{"cash"}, []string{"52.97"}); err == nil {
		t.Error("expected second close to fail")
	}
	stock, _ = env.ledger.CurrentStock(ctx, pizza.ID)
	if stock != 47 {
		t.Errorf("expected stock still 47 after rejected close, got %d", stock)
	}
}

// A mismatched payment leaves the order, the table, and the ledger exactly
// as they were.
func TestIntegration_MismatchedPaymentChangesNothing(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()

	pizza, err := env.catalog.CreateMenuItem(ctx, domain.MenuItem{
		Name:      "mismatch-pizza",
		Category:  "food",
		Price:     decimal.NewFromFloat(15.99),
		Stockable: true,
	})
	if err != nil {
		t.Fatalf("create pizza failed: %v", err)
	}
	defer env.removeItem(pizza.ID)

	env.mysql.ExecContext(ctx, `DELETE FROM restaurant_tables WHERE table_number = 9101`)
	if _, err := env.catalog.CreateTable(ctx, 9101, 2); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	defer env.mysql.ExecContext(ctx, `DELETE FROM restaurant_tables WHERE table_number = 9101`)

	order, err := env.orders.Open(ctx, 9101, "Luis")
	if err != nil {
		t.Fatalf("open order failed: %v", err)
	}
	defer env.removeOrder(order.ID)

	if _, err := env.orders.AddLine(ctx, order.ID, pizza.ID, 2, ""); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	err = env.orders.Close(ctx, order.ID, []string{"cash"}, []string{"10.00"})
	if err == nil {
		t.Fatal("expected close with wrong total to fail")
	}

	detail, err := env.orders.Detail(ctx, order.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if detail.Order.Status != domain.OrderStatusActive {
		t.Errorf("expected order still active, got %s", detail.Order.Status)
	}
	if len(detail.Payments) != 0 {
		t.Errorf("expected no payments, got %d", len(detail.Payments))
	}

	stock, _ := env.ledger.CurrentStock(ctx, pizza.ID)
	if stock != 0 {
		t.Errorf("expected untouched ledger, got stock %d", stock)
	}

	table, _ := env.db.GetTable(ctx, 9101)
	if table.Status != domain.TableStatusInUse || table.OpenOrderID != order.ID {
		t.Errorf("expected table still held by order, got %s/%q", table.Status, table.OpenOrderID)
	}
}
