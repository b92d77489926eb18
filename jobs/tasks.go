package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/stockflow-erp/stockflow/internal/purchaseorder"
)

const (
	// QueuePurchaseOrders carries replenishment work.
	QueuePurchaseOrders = "purchase-orders"
	// TaskReplenishProduct raises a purchase order for a product whose
	// stock dropped to its reorder threshold.
	TaskReplenishProduct = "purchaseorder:replenish"
)

// ReplenishProductPayload identifies the product to replenish.
type ReplenishProductPayload struct {
	ProductID int64 `json:"product_id"`
}

// NewReplenishProductTask constructs an Asynq task.
func NewReplenishProductTask(payload ReplenishProductPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReplenishProduct, data), nil
}

// ReplenishmentService raises purchase orders; implemented by the
// purchase order service.
type ReplenishmentService interface {
	RaiseReplenishment(ctx context.Context, productID int64) error
}

// NewReplenishProductHandler processes TaskReplenishProduct tasks.
// Business rejections (no supplier, no capacity) are final and skip the
// retry machinery; transient failures are retried by Asynq.
func NewReplenishProductHandler(svc ReplenishmentService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReplenishProductPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.ProductID <= 0 {
			return asynq.SkipRetry
		}
		if err := svc.RaiseReplenishment(ctx, payload.ProductID); err != nil {
			if isBusinessRejection(err) {
				return errors.Join(err, asynq.SkipRetry)
			}
			return err
		}
		return nil
	}
}

// isBusinessRejection reports whether retrying the task can never
// succeed without operator intervention.
func isBusinessRejection(err error) bool {
	return errors.Is(err, purchaseorder.ErrProductNotFound) ||
		errors.Is(err, purchaseorder.ErrNoDefaultSupplier) ||
		errors.Is(err, purchaseorder.ErrNoWarehouse) ||
		errors.Is(err, purchaseorder.ErrNoCapacity)
}
