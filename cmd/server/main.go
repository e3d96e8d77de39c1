package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lmoreno/comanda/internal/adapter/events"
	"github.com/lmoreno/comanda/internal/adapter/handler"
	"github.com/lmoreno/comanda/internal/adapter/storage"
	"github.com/lmoreno/comanda/internal/config"
	"github.com/lmoreno/comanda/internal/core/service"
	"github.com/lmoreno/comanda/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	store := storage.NewMySQLAdapter(db)
	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	// Redis stock cache (optional)
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		cache = storage.NewRedisAdapter(rdb)
		log.Println("connected to redis, stock cache enabled")
	}

	// RabbitMQ event publisher (optional)
	var publisher port.EventPublisher
	var rmq *events.RabbitMQPublisher
	if cfg.RabbitMQURL != "" {
		rmq, err = events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			log.Fatalf("failed to connect rabbitmq: %v", err)
		}
		publisher = rmq
		log.Println("connected to rabbitmq, event publishing enabled")
	}

	// Services
	ledger := service.NewLedgerService(store, cache)
	orders := service.NewOrderService(store, ledger, publisher)
	catalog := service.NewCatalogService(store)
	cashbox := service.NewCashboxService(store)

	// HTTP server
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(handler.PrometheusMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpHandler := handler.NewHTTPHandler(orders, catalog, ledger, cashbox)
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	if rmq != nil {
		rmq.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Println("connections closed")
}
