package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishAwaitsAllListeners(t *testing.T) {
	bus := NewBus(nil)
	var calls atomic.Int64

	for i := 0; i < 3; i++ {
		bus.Subscribe(TopicStockChanged, func(ctx context.Context, evt Event) error {
			calls.Add(1)
			return nil
		})
	}

	bus.Publish(context.Background(), StockChanged{ProductID: 1, WarehouseID: 2, Quantity: 5, Operation: "add"})
	require.Equal(t, int64(3), calls.Load())
}

func TestListenerFailureDoesNotStopOthers(t *testing.T) {
	bus := NewBus(nil)
	var ok atomic.Bool

	bus.Subscribe(TopicStockChanged, func(ctx context.Context, evt Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(TopicStockChanged, func(ctx context.Context, evt Event) error {
		ok.Store(true)
		return nil
	})

	bus.Publish(context.Background(), StockChanged{ProductID: 1})
	require.True(t, ok.Load())
}

func TestPublishRoutesByTopic(t *testing.T) {
	bus := NewBus(nil)
	var got atomic.Int64

	bus.Subscribe(TopicPurchaseOrderCompleted, func(ctx context.Context, evt Event) error {
		completed, okType := evt.(PurchaseOrderCompleted)
		require.True(t, okType)
		got.Store(completed.QuantityOrdered)
		return nil
	})

	bus.Publish(context.Background(), StockChanged{ProductID: 9})
	require.Zero(t, got.Load())

	bus.Publish(context.Background(), PurchaseOrderCompleted{OrderID: 1, QuantityOrdered: 40})
	require.Equal(t, int64(40), got.Load())
}
