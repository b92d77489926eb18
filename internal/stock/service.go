package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockflow-erp/stockflow/internal/events"
	"github.com/stockflow-erp/stockflow/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	AggregateProductStock(ctx context.Context, productID, warehouseID int64) (int64, error)
	AggregateWarehouseStock(ctx context.Context, warehouseID int64) (int64, error)
}

// EventPublisher dispatches domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the stock ledger: it serializes mutations per (product, warehouse)
// pair and emits stock.changed events once the mutation is committed.
type Service struct {
	repo  RepositoryPort
	bus   EventPublisher
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, bus EventPublisher, audit AuditPort) *Service {
	return &Service{repo: repo, bus: bus, audit: audit}
}

// Adjust applies an add or subtract mutation and returns the new quantity.
// The target row is locked FOR UPDATE for the duration of the transaction, so
// concurrent adjustments to the same pair apply in arrival order.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (int64, error) {
	if input.ProductID == 0 || input.WarehouseID == 0 {
		return 0, errors.New("stock: warehouse and product required")
	}
	if input.Quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if input.Operation != OperationAdd && input.Operation != OperationSubtract {
		return 0, ErrInvalidOperation
	}

	var newQty int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		row, err := tx.GetForUpdate(ctx, input.WarehouseID, input.ProductID)
		if err != nil && !errors.Is(err, ErrStockNotFound) {
			return err
		}
		// Missing rows are created lazily with a current quantity of zero.
		current := row.Quantity
		switch input.Operation {
		case OperationAdd:
			newQty = current + input.Quantity
		case OperationSubtract:
			// Policy, not a defect: over-subtraction clamps silently at
			// zero instead of failing.
			newQty = current - input.Quantity
			if newQty < 0 {
				newQty = 0
			}
		}
		row.Quantity = newQty
		return tx.Upsert(ctx, row)
	})
	if err != nil {
		return 0, err
	}

	// Listeners run after commit; the call returns once they all finish.
	if s.bus != nil {
		s.bus.Publish(ctx, events.StockChanged{
			ProductID:   input.ProductID,
			WarehouseID: input.WarehouseID,
			Quantity:    input.Quantity,
			Operation:   string(input.Operation),
		})
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   fmt.Sprintf("stock:%s", input.Operation),
			Entity:   "warehouse_stock",
			EntityID: fmt.Sprintf("%d:%d", input.WarehouseID, input.ProductID),
			Meta: map[string]any{
				"warehouse_id": input.WarehouseID,
				"product_id":   input.ProductID,
				"quantity":     input.Quantity,
				"new_quantity": newQty,
			},
		})
	}

	return newQty, nil
}

// ProductStockLevel sums a product's quantity, optionally for one warehouse.
func (s *Service) ProductStockLevel(ctx context.Context, productID, warehouseID int64) (int64, error) {
	if productID == 0 {
		return 0, errors.New("stock: product required")
	}
	return s.repo.AggregateProductStock(ctx, productID, warehouseID)
}

// WarehouseStockLevel sums every quantity stored in a warehouse.
func (s *Service) WarehouseStockLevel(ctx context.Context, warehouseID int64) (int64, error) {
	if warehouseID == 0 {
		return 0, errors.New("stock: warehouse required")
	}
	return s.repo.AggregateWarehouseStock(ctx, warehouseID)
}
