// Package events implements the in-process bus that decouples stock mutations
// from their downstream reactions.
package events

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Topics carried by the bus.
const (
	TopicStockChanged           = "stock.changed"
	TopicPurchaseOrderCompleted = "purchase_order.completed"
)

// Event is a payload routed by topic.
type Event interface {
	Topic() string
}

// StockChanged is emitted after a committed stock mutation.
type StockChanged struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int64
	Operation   string
}

// Topic implements Event.
func (StockChanged) Topic() string { return TopicStockChanged }

// PurchaseOrderCompleted is emitted when a pending order is marked received.
type PurchaseOrderCompleted struct {
	OrderID         int64
	ProductID       int64
	SupplierID      int64
	WarehouseID     int64
	QuantityOrdered int64
}

// Topic implements Event.
func (PurchaseOrderCompleted) Topic() string { return TopicPurchaseOrderCompleted }

// HandlerFunc consumes a published event.
type HandlerFunc func(ctx context.Context, evt Event) error

// Bus fans events out to subscribed handlers. Handlers for one event run in
// parallel and Publish waits for all of them, so listeners always observe the
// post-commit state of the transaction that triggered the event.
type Bus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewBus constructs an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger, handlers: make(map[string][]HandlerFunc)}
}

// Subscribe registers fn for a topic. Not safe to call concurrently with
// Publish on the same topic during startup races; wiring happens before serving.
func (b *Bus) Subscribe(topic string, fn HandlerFunc) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], fn)
}

// Publish dispatches evt to every subscriber and waits for them to finish.
// Listener failures are logged and swallowed: a failed reaction must never
// fail the mutation that produced the event.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.mu.RLock()
	subs := b.handlers[evt.Topic()]
	b.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range subs {
		fn := fn
		g.Go(func() error {
			if err := fn(gctx, evt); err != nil && b.logger != nil {
				b.logger.Error("event listener failed",
					slog.String("topic", evt.Topic()),
					slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
