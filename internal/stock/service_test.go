package stock

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockflow-erp/stockflow/internal/events"
)

type memoryRepo struct {
	mu   sync.Mutex
	rows map[string]WarehouseStock
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]WarehouseStock)}
}

func key(warehouseID, productID int64) string {
	return fmt.Sprintf("%d:%d", warehouseID, productID)
}

// WithTx holds the repo mutex for the callback duration, mirroring the row
// lock the SQL repository takes with FOR UPDATE.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) AggregateProductStock(ctx context.Context, productID, warehouseID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, row := range r.rows {
		if row.ProductID != productID {
			continue
		}
		if warehouseID != 0 && row.WarehouseID != warehouseID {
			continue
		}
		total += row.Quantity
	}
	return total, nil
}

func (r *memoryRepo) AggregateWarehouseStock(ctx context.Context, warehouseID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, row := range r.rows {
		if row.WarehouseID == warehouseID {
			total += row.Quantity
		}
	}
	return total, nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, warehouseID, productID int64) (WarehouseStock, error) {
	if row, ok := tx.repo.rows[key(warehouseID, productID)]; ok {
		return row, nil
	}
	return WarehouseStock{WarehouseID: warehouseID, ProductID: productID}, ErrStockNotFound
}

func (tx *memoryTx) Upsert(ctx context.Context, row WarehouseStock) error {
	tx.repo.rows[key(row.WarehouseID, row.ProductID)] = row
	return nil
}

func TestAdjustAddThenSubtract(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	qty, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 200, Operation: OperationAdd})
	require.NoError(t, err)
	require.Equal(t, int64(200), qty)

	qty, err = svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 150, Operation: OperationSubtract})
	require.NoError(t, err)
	require.Equal(t, int64(50), qty)
}

func TestSubtractClampsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	// Over-subtracting is a silent clamp, never an error.
	qty, err := svc.Adjust(ctx, AdjustInput{ProductID: 7, WarehouseID: 3, Quantity: 40, Operation: OperationSubtract})
	require.NoError(t, err)
	require.Zero(t, qty)

	_, err = svc.Adjust(ctx, AdjustInput{ProductID: 7, WarehouseID: 3, Quantity: 10, Operation: OperationAdd})
	require.NoError(t, err)
	qty, err = svc.Adjust(ctx, AdjustInput{ProductID: 7, WarehouseID: 3, Quantity: 25, Operation: OperationSubtract})
	require.NoError(t, err)
	require.Zero(t, qty)
}

func TestAdjustValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 0, Operation: OperationAdd})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 5, Operation: "merge"})
	require.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.Adjust(ctx, AdjustInput{WarehouseID: 1, Quantity: 5, Operation: OperationAdd})
	require.Error(t, err)
}

func TestAdjustEmitsStockChanged(t *testing.T) {
	repo := newMemoryRepo()
	bus := events.NewBus(nil)
	var got events.StockChanged
	bus.Subscribe(events.TopicStockChanged, func(ctx context.Context, evt events.Event) error {
		got = evt.(events.StockChanged)
		return nil
	})
	svc := NewService(repo, bus, nil)

	_, err := svc.Adjust(context.Background(), AdjustInput{ProductID: 4, WarehouseID: 2, Quantity: 30, Operation: OperationAdd})
	require.NoError(t, err)
	// Publish is awaited, so the payload is visible here.
	require.Equal(t, int64(4), got.ProductID)
	require.Equal(t, int64(2), got.WarehouseID)
	require.Equal(t, int64(30), got.Quantity)
	require.Equal(t, "add", got.Operation)
}

func TestConcurrentAdjustmentsSerialize(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 10, Operation: OperationAdd})
		}()
	}
	wg.Wait()

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.Adjust(ctx, AdjustInput{ProductID: 1, WarehouseID: 1, Quantity: 3, Operation: OperationSubtract})
		}()
	}
	wg.Wait()

	total, err := svc.ProductStockLevel(ctx, 1, 0)
	require.NoError(t, err)
	// No interleaving may lose an update: the settled value is exactly the
	// sum of adds minus the sum of subtracts.
	require.Equal(t, int64(workers*10-workers*3), total)
}

func TestAggregateAcrossWarehouses(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for _, wh := range []int64{1, 2, 3} {
		_, err := svc.Adjust(ctx, AdjustInput{ProductID: 9, WarehouseID: wh, Quantity: 25, Operation: OperationAdd})
		require.NoError(t, err)
	}
	_, err := svc.Adjust(ctx, AdjustInput{ProductID: 8, WarehouseID: 1, Quantity: 99, Operation: OperationAdd})
	require.NoError(t, err)

	total, err := svc.ProductStockLevel(ctx, 9, 0)
	require.NoError(t, err)
	require.Equal(t, int64(75), total)

	total, err = svc.ProductStockLevel(ctx, 9, 2)
	require.NoError(t, err)
	require.Equal(t, int64(25), total)

	total, err = svc.WarehouseStockLevel(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(124), total)
}
