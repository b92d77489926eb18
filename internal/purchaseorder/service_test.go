package purchaseorder

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockflow-erp/stockflow/internal/events"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]PurchaseOrder
	logs   map[int64][]LogEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]PurchaseOrder), logs: make(map[int64][]LogEntry)}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return order, nil
}

func (m *memoryRepo) ReplacePending(_ context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.orders {
		if existing.ProductID == order.ProductID && existing.WarehouseID == order.WarehouseID && existing.Status == StatusPending {
			delete(m.orders, id)
		}
	}
	m.nextID++
	order.ID = m.nextID
	order.Status = StatusPending
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryRepo) Transition(_ context.Context, id int64, to Status, at time.Time) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	if order.Status != StatusPending {
		return PurchaseOrder{}, ErrInvalidState
	}
	order.Status = to
	m.orders[id] = order
	m.logs[id] = append([]LogEntry{transitionLog(to, at)}, m.logs[id]...)
	return order, nil
}

func (m *memoryRepo) PendingQuantities(_ context.Context, productID int64) (map[int64]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := make(map[int64]int64)
	for _, order := range m.orders {
		if order.Status == StatusPending && order.ProductID == productID {
			pending[order.WarehouseID] += order.QuantityOrdered
		}
	}
	return pending, nil
}

func (m *memoryRepo) ListLogs(_ context.Context, orderID int64) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.logs[orderID]...), nil
}

func (m *memoryRepo) Search(_ context.Context, filters SearchFilters) ([]PurchaseOrder, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PurchaseOrder
	for _, order := range m.orders {
		if filters.Status != "" && order.Status != filters.Status {
			continue
		}
		if filters.ProductID > 0 && order.ProductID != filters.ProductID {
			continue
		}
		if filters.SupplierID > 0 && order.SupplierID != filters.SupplierID {
			continue
		}
		if filters.WarehouseID > 0 && order.WarehouseID != filters.WarehouseID {
			continue
		}
		if !filters.From.IsZero() && order.OrderedAt.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && order.OrderedAt.After(filters.To) {
			continue
		}
		out = append(out, order)
	}
	return out, len(out), nil
}

type fakeCatalog struct {
	products map[int64]ProductInfo
}

func (f *fakeCatalog) Find(_ context.Context, id int64) (ProductInfo, error) {
	p, ok := f.products[id]
	if !ok {
		return ProductInfo{}, ErrProductNotFound
	}
	return p, nil
}

type fakeSuppliers struct {
	links map[int64]SupplierLink
}

func (f *fakeSuppliers) FindDefault(_ context.Context, productID int64) (SupplierLink, error) {
	link, ok := f.links[productID]
	if !ok {
		return SupplierLink{}, ErrNoDefaultSupplier
	}
	return link, nil
}

type fakeWarehouses struct {
	states []WarehouseState
}

func (f *fakeWarehouses) ListAll(_ context.Context) ([]WarehouseState, error) {
	return append([]WarehouseState(nil), f.states...), nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, evt events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func newTestService(repo Repository, catalog ProductCatalog, suppliers SupplierSource, warehouses WarehouseDirectory, bus EventPublisher) *Service {
	svc := NewService(repo, catalog, suppliers, warehouses, bus, nil)
	svc.now = fixedNow
	return svc
}

func TestCreateFromProductOrdersUpToIdealLevel(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5, LeadTimeDays: 7}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		nil)

	order, err := svc.CreateFromProduct(context.Background(), 1, 0, 42)
	require.NoError(t, err)
	require.Equal(t, int64(3), order.WarehouseID)
	require.Equal(t, int64(5), order.SupplierID)
	require.Equal(t, int64(20), order.QuantityOrdered)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, fixedNow(), order.OrderedAt)
	require.Equal(t, fixedNow().AddDate(0, 0, 7), order.ExpectedToArriveAt)
}

func TestCreateFromProductSupersedesStalePending(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		nil)
	ctx := context.Background()

	first, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	// An explicit request lands in the same warehouse and supersedes the
	// threshold-derived pending order.
	second, err := svc.CreateFromProduct(ctx, 1, 75, 42)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = repo.Get(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)

	orders, _, err := repo.Search(ctx, SearchFilters{Status: StatusPending, ProductID: 1})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, second.ID, orders[0].ID)
}

func TestCreateFromProductCountsOwnPendingAgainstCapacity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 30}}},
		nil)
	ctx := context.Background()

	first, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	require.Equal(t, int64(20), first.QuantityOrdered)

	// The pending 20 already covers the ideal level, so a duplicate
	// evaluation has nothing left to order.
	_, err = svc.CreateFromProduct(ctx, 1, 0, 42)
	require.ErrorIs(t, err, ErrNoWarehouse)
}

func TestCreateFromProductIgnoresOtherProductsPending(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{
			1: {ID: 1, ReorderThreshold: 10},
			2: {ID: 2, ReorderThreshold: 10},
		}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}, 2: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 30}}},
		nil)
	ctx := context.Background()

	first, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	require.Equal(t, int64(20), first.QuantityOrdered)

	// Product 1's pending order does not shrink the space considered
	// for product 2; only the target product's pending orders count.
	second, err := svc.CreateFromProduct(ctx, 2, 0, 42)
	require.NoError(t, err)
	require.Equal(t, int64(20), second.QuantityOrdered)
}

func TestCreateFromProductFailureModes(t *testing.T) {
	catalog := &fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}}
	suppliers := &fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}}
	ctx := context.Background()

	svc := newTestService(newMemoryRepo(), catalog, suppliers, &fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}}, nil)
	_, err := svc.CreateFromProduct(ctx, 99, 0, 42)
	require.ErrorIs(t, err, ErrProductNotFound)

	svc = newTestService(newMemoryRepo(), catalog, &fakeSuppliers{links: map[int64]SupplierLink{}}, &fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}}, nil)
	_, err = svc.CreateFromProduct(ctx, 1, 0, 42)
	require.ErrorIs(t, err, ErrNoDefaultSupplier)

	svc = newTestService(newMemoryRepo(), catalog, suppliers, &fakeWarehouses{}, nil)
	_, err = svc.CreateFromProduct(ctx, 1, 0, 42)
	require.ErrorIs(t, err, ErrNoWarehouse)

	// Full warehouses leave the allocator without a destination.
	svc = newTestService(newMemoryRepo(), catalog, suppliers, &fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 50, Stocked: 50}}}, nil)
	_, err = svc.CreateFromProduct(ctx, 1, 0, 42)
	require.ErrorIs(t, err, ErrNoWarehouse)
}

func TestMarkReceivedPublishesCompletionEvent(t *testing.T) {
	repo := newMemoryRepo()
	bus := &recordingBus{}
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		bus)
	ctx := context.Background()

	order, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)

	received, err := svc.MarkReceived(ctx, order.ID, 42)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, received.Status)

	require.Len(t, bus.events, 1)
	evt, ok := bus.events[0].(events.PurchaseOrderCompleted)
	require.True(t, ok)
	require.Equal(t, order.ID, evt.OrderID)
	require.Equal(t, order.ProductID, evt.ProductID)
	require.Equal(t, order.WarehouseID, evt.WarehouseID)
	require.Equal(t, order.QuantityOrdered, evt.QuantityOrdered)
}

func TestTerminalOrdersRejectFurtherTransitions(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		&recordingBus{})
	ctx := context.Background()

	order, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	_, err = svc.MarkReceived(ctx, order.ID, 42)
	require.NoError(t, err)

	_, err = svc.MarkReceived(ctx, order.ID, 42)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.MarkCancelled(ctx, order.ID, 42)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelledOrderFreesCapacity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 50}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 100}}},
		nil)
	ctx := context.Background()

	order, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	require.Equal(t, int64(100), order.QuantityOrdered)

	_, err = svc.MarkCancelled(ctx, order.ID, 42)
	require.NoError(t, err)

	pending, err := repo.PendingQuantities(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, pending[3])
}

func TestFindHistoryReturnsNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		&recordingBus{})
	ctx := context.Background()

	order, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	_, err = svc.MarkReceived(ctx, order.ID, 42)
	require.NoError(t, err)

	history, err := svc.FindHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, history.Order.Status)
	require.Len(t, history.Logs, 1)
	require.Equal(t, "status", history.Logs[0].Group)
	require.Equal(t, "completed_at", history.Logs[0].Tag)
	require.Equal(t, strconv.FormatInt(fixedNow().Unix(), 10), history.Logs[0].Value)
}

func TestRequestedQuantityOverridesThreshold(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		nil)

	order, err := svc.CreateFromProduct(context.Background(), 1, 75, 42)
	require.NoError(t, err)
	require.Equal(t, int64(75), order.QuantityOrdered)
}

type countingTransitions struct {
	byStatus map[string]int
}

func (c *countingTransitions) CountOrderTransition(status string) {
	if c.byStatus == nil {
		c.byStatus = make(map[string]int)
	}
	c.byStatus[status]++
}

func TestTransitionsAreCounted(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo,
		&fakeCatalog{products: map[int64]ProductInfo{1: {ID: 1, ReorderThreshold: 10}}},
		&fakeSuppliers{links: map[int64]SupplierLink{1: {SupplierID: 5}}},
		&fakeWarehouses{states: []WarehouseState{{ID: 3, Capacity: 1000}}},
		nil)
	counter := &countingTransitions{}
	svc.SetTransitionCounter(counter)
	ctx := context.Background()

	order, err := svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	_, err = svc.MarkCancelled(ctx, order.ID, 42)
	require.NoError(t, err)

	order, err = svc.CreateFromProduct(ctx, 1, 0, 42)
	require.NoError(t, err)
	_, err = svc.MarkReceived(ctx, order.ID, 42)
	require.NoError(t, err)

	require.Equal(t, 2, counter.byStatus["pending"])
	require.Equal(t, 1, counter.byStatus["cancelled"])
	require.Equal(t, 1, counter.byStatus["completed"])
}
