package reorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stockflow-erp/stockflow/internal/events"
	"github.com/stockflow-erp/stockflow/internal/stock"
)

// StockWriter applies stock mutations.
type StockWriter interface {
	Adjust(ctx context.Context, input stock.AdjustInput) (int64, error)
}

// Receiver books arriving goods into stock when a purchase order is
// marked received. It runs on the bus, so the stock add happens before
// the receive call returns to its caller.
type Receiver struct {
	logger *slog.Logger
	stock  StockWriter
}

func NewReceiver(logger *slog.Logger, stock StockWriter) *Receiver {
	return &Receiver{logger: logger, stock: stock}
}

// Register subscribes the receiver to the bus.
func (r *Receiver) Register(bus *events.Bus) {
	bus.Subscribe(events.TopicPurchaseOrderCompleted, r.HandleOrderCompleted)
}

// HandleOrderCompleted adds the ordered quantity to the destination
// warehouse.
func (r *Receiver) HandleOrderCompleted(ctx context.Context, evt events.Event) error {
	completed, ok := evt.(events.PurchaseOrderCompleted)
	if !ok {
		return fmt.Errorf("reorder: unexpected event %T", evt)
	}

	newQty, err := r.stock.Adjust(ctx, stock.AdjustInput{
		ProductID:   completed.ProductID,
		WarehouseID: completed.WarehouseID,
		Quantity:    completed.QuantityOrdered,
		Operation:   stock.OperationAdd,
		ActorID:     0, // system actor
	})
	if err != nil {
		return fmt.Errorf("reorder: book order %d into stock: %w", completed.OrderID, err)
	}

	r.logger.Info("purchase order booked into stock",
		slog.Int64("order_id", completed.OrderID),
		slog.Int64("product_id", completed.ProductID),
		slog.Int64("warehouse_id", completed.WarehouseID),
		slog.Int64("new_quantity", newQty))
	return nil
}
