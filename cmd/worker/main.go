package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockflow-erp/stockflow/internal/app"
	"github.com/stockflow-erp/stockflow/internal/events"
	"github.com/stockflow-erp/stockflow/internal/masterdata/products"
	"github.com/stockflow-erp/stockflow/internal/masterdata/warehouses"
	"github.com/stockflow-erp/stockflow/internal/platform/db"
	"github.com/stockflow-erp/stockflow/internal/purchaseorder"
	"github.com/stockflow-erp/stockflow/internal/shared"
	"github.com/stockflow-erp/stockflow/internal/sourcing"
	"github.com/stockflow-erp/stockflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	audit := shared.NewAuditLogger(pool)
	bus := events.NewBus(logger)

	productsSvc := products.NewService(products.NewRepository(pool))
	warehousesSvc := warehouses.NewService(warehouses.NewRepository(pool))
	sourcingSvc := sourcing.NewService(sourcing.NewRepository(pool))

	// The worker only raises orders; receiving happens in the API
	// process, so no stock listeners are registered here.
	orderSvc := app.NewOrderWorkflow(purchaseorder.NewRepository(pool), productsSvc, sourcingSvc, warehousesSvc, bus, audit)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReplenishProduct, Handler: jobs.NewReplenishProductHandler(orderSvc)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting replenishment worker", slog.String("queue", jobs.QueuePurchaseOrders))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
