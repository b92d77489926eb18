package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockflow-erp/stockflow/internal/app"
	"github.com/stockflow-erp/stockflow/internal/auth"
	"github.com/stockflow-erp/stockflow/internal/events"
	"github.com/stockflow-erp/stockflow/internal/masterdata/products"
	"github.com/stockflow-erp/stockflow/internal/masterdata/suppliers"
	"github.com/stockflow-erp/stockflow/internal/masterdata/warehouses"
	"github.com/stockflow-erp/stockflow/internal/observability"
	"github.com/stockflow-erp/stockflow/internal/platform/cache"
	"github.com/stockflow-erp/stockflow/internal/platform/db"
	"github.com/stockflow-erp/stockflow/internal/purchaseorder"
	"github.com/stockflow-erp/stockflow/internal/reorder"
	"github.com/stockflow-erp/stockflow/internal/shared"
	"github.com/stockflow-erp/stockflow/internal/sourcing"
	"github.com/stockflow-erp/stockflow/internal/stock"
	"github.com/stockflow-erp/stockflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	tokens := shared.NewTokenStore(redisClient, cfg.TokenTTL)
	audit := shared.NewAuditLogger(pool)
	bus := events.NewBus(logger)

	productsSvc := products.NewService(products.NewRepository(pool))
	suppliersSvc := suppliers.NewService(suppliers.NewRepository(pool))
	warehousesSvc := warehouses.NewService(warehouses.NewRepository(pool))
	sourcingSvc := sourcing.NewService(sourcing.NewRepository(pool))

	stockSvc := stock.NewService(stock.NewRepository(pool, cfg.RetryConfig()), bus, audit)
	orderSvc := app.NewOrderWorkflow(purchaseorder.NewRepository(pool), productsSvc, sourcingSvc, warehousesSvc, bus, audit)
	orderSvc.SetTransitionCounter(metrics)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queueClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	evaluator := reorder.NewEvaluator(logger, stockSvc, app.NewReorderCatalog(productsSvc), warehousesSvc, app.NewCountingOrderer(queueClient, metrics))
	evaluator.Register(bus)
	receiver := reorder.NewReceiver(logger, stockSvc)
	receiver.Register(bus)

	authSvc := auth.NewService(auth.NewRepository(pool), tokens)

	jobHandler := jobs.NewHandler(asynq.NewInspector(redisOpts), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Tokens:               tokens,
		AuthHandler:          auth.NewHandler(logger, authSvc),
		StockHandler:         stock.NewHandler(logger, stockSvc),
		SourcingHandler:      sourcing.NewHandler(logger, sourcingSvc),
		PurchaseOrderHandler: purchaseorder.NewHandler(logger, orderSvc),
		ProductsHandler:      products.NewHandler(logger, productsSvc),
		SuppliersHandler:     suppliers.NewHandler(logger, suppliersSvc),
		WarehousesHandler:    warehouses.NewHandler(logger, warehousesSvc),
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
