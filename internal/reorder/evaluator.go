// Package reorder reacts to stock movements: it refreshes the
// denormalized stock aggregates and requests replenishment when a
// product's total drops to its reorder threshold.
package reorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stockflow-erp/stockflow/internal/events"
)

// StockReader sums committed stock quantities.
type StockReader interface {
	ProductStockLevel(ctx context.Context, productID, warehouseID int64) (int64, error)
	WarehouseStockLevel(ctx context.Context, warehouseID int64) (int64, error)
}

// ProductView is the slice of a product the evaluator needs.
type ProductView struct {
	ID               int64
	ReorderThreshold int64
}

// Catalog reads product thresholds and writes back the cached total.
type Catalog interface {
	Find(ctx context.Context, id int64) (ProductView, error)
	UpdateQuantityInStock(ctx context.Context, id, quantity int64) error
}

// WarehouseCache writes back a warehouse's cached total.
type WarehouseCache interface {
	UpdateQuantityInStock(ctx context.Context, id, quantity int64) error
}

// Orderer requests a replenishment order for a product. Requests are
// delivered at least once; the order workflow supersedes duplicate
// pending orders, so repeated requests collapse downstream.
type Orderer interface {
	RequestReplenishment(ctx context.Context, productID int64) error
}

// Evaluator recomputes aggregates after each stock mutation and decides
// whether the product needs replenishing.
type Evaluator struct {
	logger     *slog.Logger
	stock      StockReader
	catalog    Catalog
	warehouses WarehouseCache
	orderer    Orderer
}

func NewEvaluator(logger *slog.Logger, stock StockReader, catalog Catalog, warehouses WarehouseCache, orderer Orderer) *Evaluator {
	return &Evaluator{logger: logger, stock: stock, catalog: catalog, warehouses: warehouses, orderer: orderer}
}

// Register subscribes the evaluator to the bus.
func (e *Evaluator) Register(bus *events.Bus) {
	bus.Subscribe(events.TopicStockChanged, e.HandleStockChanged)
	bus.Subscribe(events.TopicStockChanged, e.HandleWarehouseProjection)
}

// HandleStockChanged refreshes the product's cached total and raises a
// replenishment request once the total sits at or below the threshold.
func (e *Evaluator) HandleStockChanged(ctx context.Context, evt events.Event) error {
	change, ok := evt.(events.StockChanged)
	if !ok {
		return fmt.Errorf("reorder: unexpected event %T", evt)
	}

	total, err := e.stock.ProductStockLevel(ctx, change.ProductID, 0)
	if err != nil {
		return fmt.Errorf("reorder: aggregate product %d: %w", change.ProductID, err)
	}
	if err := e.catalog.UpdateQuantityInStock(ctx, change.ProductID, total); err != nil {
		return fmt.Errorf("reorder: cache product %d: %w", change.ProductID, err)
	}

	product, err := e.catalog.Find(ctx, change.ProductID)
	if err != nil {
		return fmt.Errorf("reorder: load product %d: %w", change.ProductID, err)
	}
	if total > product.ReorderThreshold {
		return nil
	}

	e.logger.Info("replenishment requested",
		slog.Int64("product_id", change.ProductID),
		slog.Int64("total", total),
		slog.Int64("threshold", product.ReorderThreshold))
	if err := e.orderer.RequestReplenishment(ctx, change.ProductID); err != nil {
		return fmt.Errorf("reorder: request replenishment for product %d: %w", change.ProductID, err)
	}
	return nil
}

// HandleWarehouseProjection refreshes the warehouse's cached total.
func (e *Evaluator) HandleWarehouseProjection(ctx context.Context, evt events.Event) error {
	change, ok := evt.(events.StockChanged)
	if !ok {
		return fmt.Errorf("reorder: unexpected event %T", evt)
	}

	total, err := e.stock.WarehouseStockLevel(ctx, change.WarehouseID)
	if err != nil {
		return fmt.Errorf("reorder: aggregate warehouse %d: %w", change.WarehouseID, err)
	}
	if err := e.warehouses.UpdateQuantityInStock(ctx, change.WarehouseID, total); err != nil {
		return fmt.Errorf("reorder: cache warehouse %d: %w", change.WarehouseID, err)
	}
	return nil
}
