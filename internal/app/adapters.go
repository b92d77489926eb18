package app

import (
	"context"
	"errors"

	"github.com/stockflow-erp/stockflow/internal/masterdata/products"
	"github.com/stockflow-erp/stockflow/internal/masterdata/warehouses"
	"github.com/stockflow-erp/stockflow/internal/observability"
	"github.com/stockflow-erp/stockflow/internal/purchaseorder"
	"github.com/stockflow-erp/stockflow/internal/reorder"
	"github.com/stockflow-erp/stockflow/internal/sourcing"
)

// productCatalog adapts the products service to the order workflow.
type productCatalog struct {
	products *products.Service
}

func (a productCatalog) Find(ctx context.Context, id int64) (purchaseorder.ProductInfo, error) {
	product, err := a.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return purchaseorder.ProductInfo{}, purchaseorder.ErrProductNotFound
		}
		return purchaseorder.ProductInfo{}, err
	}
	return purchaseorder.ProductInfo{
		ID:               product.ID,
		ReorderThreshold: product.ReorderThreshold,
	}, nil
}

// supplierSource adapts the sourcing service to the order workflow.
type supplierSource struct {
	sourcing *sourcing.Service
}

func (a supplierSource) FindDefault(ctx context.Context, productID int64) (purchaseorder.SupplierLink, error) {
	link, err := a.sourcing.FindDefault(ctx, productID)
	if err != nil {
		if errors.Is(err, sourcing.ErrNotFound) {
			return purchaseorder.SupplierLink{}, purchaseorder.ErrNoDefaultSupplier
		}
		return purchaseorder.SupplierLink{}, err
	}
	return purchaseorder.SupplierLink{SupplierID: link.SupplierID, LeadTimeDays: link.LeadTimeDays}, nil
}

// warehouseDirectory adapts the warehouses service to the allocator.
type warehouseDirectory struct {
	warehouses *warehouses.Service
}

func (a warehouseDirectory) ListAll(ctx context.Context) ([]purchaseorder.WarehouseState, error) {
	list, err := a.warehouses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]purchaseorder.WarehouseState, 0, len(list))
	for _, w := range list {
		states = append(states, purchaseorder.WarehouseState{
			ID:       w.ID,
			Capacity: w.Capacity,
			Stocked:  w.QuantityInStock,
		})
	}
	return states, nil
}

// reorderCatalog adapts the products service to the reorder evaluator.
type reorderCatalog struct {
	products *products.Service
}

func (a reorderCatalog) Find(ctx context.Context, id int64) (reorder.ProductView, error) {
	product, err := a.products.Get(ctx, id)
	if err != nil {
		return reorder.ProductView{}, err
	}
	return reorder.ProductView{ID: product.ID, ReorderThreshold: product.ReorderThreshold}, nil
}

func (a reorderCatalog) UpdateQuantityInStock(ctx context.Context, id, quantity int64) error {
	return a.products.UpdateQuantityInStock(ctx, id, quantity)
}

// countingOrderer bumps the replenishment counter around the delegate.
type countingOrderer struct {
	delegate reorder.Orderer
	metrics  *observability.Metrics
}

func (o countingOrderer) RequestReplenishment(ctx context.Context, productID int64) error {
	if err := o.delegate.RequestReplenishment(ctx, productID); err != nil {
		return err
	}
	o.metrics.CountReplenishmentRequest()
	return nil
}

// NewOrderWorkflow wires the purchase order service from its module
// dependencies.
func NewOrderWorkflow(repo purchaseorder.Repository, productsSvc *products.Service, sourcingSvc *sourcing.Service, warehousesSvc *warehouses.Service, bus purchaseorder.EventPublisher, audit purchaseorder.AuditPort) *purchaseorder.Service {
	return purchaseorder.NewService(
		repo,
		productCatalog{products: productsSvc},
		supplierSource{sourcing: sourcingSvc},
		warehouseDirectory{warehouses: warehousesSvc},
		bus,
		audit,
	)
}

// NewReorderCatalog exposes the products adapter for evaluator wiring.
func NewReorderCatalog(productsSvc *products.Service) reorder.Catalog {
	return reorderCatalog{products: productsSvc}
}

// NewCountingOrderer wraps an orderer with the replenishment metric.
func NewCountingOrderer(delegate reorder.Orderer, metrics *observability.Metrics) reorder.Orderer {
	if metrics == nil {
		return delegate
	}
	return countingOrderer{delegate: delegate, metrics: metrics}
}
