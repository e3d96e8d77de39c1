// Seeds a development database with a small menu, a few tables, and
// opening stock so the server has something to serve.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/lmoreno/comanda/internal/adapter/storage"
	"github.com/lmoreno/comanda/internal/config"
	"github.com/lmoreno/comanda/internal/core/domain"
	"github.com/lmoreno/comanda/internal/core/service"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Load()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	store := storage.NewMySQLAdapter(db)
	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	catalog := service.NewCatalogService(store)
	ledger := service.NewLedgerService(store, nil)

	items := []struct {
		item  domain.MenuItem
		stock int
	}{
		{domain.MenuItem{Name: "Margherita Pizza", Category: "food", Price: decimal.NewFromFloat(15.99), Stockable: true}, 50},
		{domain.MenuItem{Name: "Empanada", Category: "food", Price: decimal.NewFromFloat(3.50), Stockable: true}, 120},
		{domain.MenuItem{Name: "House Red (glass)", Category: "drinks", Price: decimal.NewFromFloat(6.00), Stockable: true}, 40},
		{domain.MenuItem{Name: "Espresso", Category: "drinks", Price: decimal.NewFromFloat(2.50), Stockable: false}, 0},
		{domain.MenuItem{Name: "Table Service", Category: "service", Price: decimal.NewFromFloat(5.00), Stockable: false}, 0},
	}

	for _, entry := range items {
		created, err := catalog.CreateMenuItem(ctx, entry.item)
		if err != nil {
			log.Fatalf("failed to create %q: %v", entry.item.Name, err)
		}
		if entry.stock > 0 {
			if _, err := ledger.RecordMovement(ctx, created.ID, entry.stock, "Initial stock"); err != nil {
				log.Fatalf("failed to stock %q: %v", entry.item.Name, err)
			}
		}
		log.Printf("created menu item %d: %s", created.ID, created.Name)
	}

	for number, capacity := range map[int]int{1: 2, 2: 2, 3: 4, 4: 4, 5: 6, 7: 4} {
		if _, err := catalog.CreateTable(ctx, number, capacity); err != nil {
			log.Printf("table %d not created (may exist): %v", number, err)
			continue
		}
		log.Printf("created table %d (capacity %d)", number, capacity)
	}

	log.Println("seed complete")
}
