package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"github.com/stockflow-erp/stockflow/internal/events"
	"github.com/stockflow-erp/stockflow/internal/shared"
)

// ProductInfo is the catalog view the order workflow needs.
type ProductInfo struct {
	ID               int64
	ReorderThreshold int64
}

// SupplierLink is the resolved default supplier for a product.
type SupplierLink struct {
	SupplierID   int64
	LeadTimeDays int
}

// ProductCatalog looks up products. Implementations return
// ErrProductNotFound for unknown ids.
type ProductCatalog interface {
	Find(ctx context.Context, id int64) (ProductInfo, error)
}

// SupplierSource resolves the default supplier for a product.
// Implementations return ErrNoDefaultSupplier when the product has none.
type SupplierSource interface {
	FindDefault(ctx context.Context, productID int64) (SupplierLink, error)
}

// WarehouseDirectory lists warehouses with their stocked quantities.
type WarehouseDirectory interface {
	ListAll(ctx context.Context) ([]WarehouseState, error)
}

// EventPublisher dispatches domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// TransitionCounter records orders reaching a status. Optional.
type TransitionCounter interface {
	CountOrderTransition(status string)
}

// Service runs the purchase order workflow.
type Service struct {
	repo       Repository
	catalog    ProductCatalog
	suppliers  SupplierSource
	warehouses WarehouseDirectory
	bus        EventPublisher
	audit      AuditPort
	counter    TransitionCounter
	now        func() time.Time
}

func NewService(repo Repository, catalog ProductCatalog, suppliers SupplierSource, warehouses WarehouseDirectory, bus EventPublisher, audit AuditPort) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		suppliers:  suppliers,
		warehouses: warehouses,
		bus:        bus,
		audit:      audit,
		now:        time.Now,
	}
}

// SetTransitionCounter attaches a status counter to the workflow.
func (s *Service) SetTransitionCounter(counter TransitionCounter) {
	s.counter = counter
}

func (s *Service) countTransition(status Status) {
	if s.counter != nil {
		s.counter.CountOrderTransition(string(status))
	}
}

// CreateFromProduct raises a replenishment order for a product. With
// requested <= 0 the quantity is derived from the product's reorder
// threshold; a positive requested quantity is ordered as-is. A stale
// pending order for the chosen warehouse is superseded by the new one.
func (s *Service) CreateFromProduct(ctx context.Context, productID, requested, actorID int64) (PurchaseOrder, error) {
	if productID <= 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	if requested < 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: requested quantity must not be negative", ErrValidation)
	}

	product, err := s.catalog.Find(ctx, productID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	link, err := s.suppliers.FindDefault(ctx, productID)
	if err != nil {
		return PurchaseOrder{}, err
	}

	states, err := s.warehouses.ListAll(ctx)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if len(states) == 0 {
		return PurchaseOrder{}, ErrNoWarehouse
	}

	pending, err := s.repo.PendingQuantities(ctx, productID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	for i := range states {
		states[i].Pending = pending[states[i].ID]
	}

	alloc := Allocate(states, product.ReorderThreshold, requested)
	if alloc.WarehouseID == 0 {
		return PurchaseOrder{}, ErrNoWarehouse
	}
	if alloc.Quantity < 1 {
		return PurchaseOrder{}, ErrNoCapacity
	}

	now := s.now()
	order, err := s.repo.ReplacePending(ctx, PurchaseOrder{
		ProductID:          productID,
		SupplierID:         link.SupplierID,
		WarehouseID:        alloc.WarehouseID,
		QuantityOrdered:    alloc.Quantity,
		Status:             StatusPending,
		OrderedAt:          now,
		ExpectedToArriveAt: now.AddDate(0, 0, link.LeadTimeDays),
	})
	if err != nil {
		return PurchaseOrder{}, err
	}

	s.countTransition(StatusPending)
	s.recordAudit(ctx, actorID, "purchase_order:create", order, nil)
	return order, nil
}

// RaiseReplenishment is the background entrypoint used by the
// replenishment queue: a threshold-derived order attributed to the
// system actor (id 0).
func (s *Service) RaiseReplenishment(ctx context.Context, productID int64) error {
	_, err := s.CreateFromProduct(ctx, productID, 0, 0)
	return err
}

// MarkReceived completes a pending order. The purchase_order.completed
// event is published after the transition commits and the call waits for
// its listeners, so the arriving stock is booked in before returning.
func (s *Service) MarkReceived(ctx context.Context, id int64, actorID int64) (PurchaseOrder, error) {
	order, err := s.repo.Transition(ctx, id, StatusCompleted, s.now())
	if err != nil {
		return PurchaseOrder{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.PurchaseOrderCompleted{
			OrderID:         order.ID,
			ProductID:       order.ProductID,
			SupplierID:      order.SupplierID,
			WarehouseID:     order.WarehouseID,
			QuantityOrdered: order.QuantityOrdered,
		})
	}

	s.countTransition(StatusCompleted)
	s.recordAudit(ctx, actorID, "purchase_order:receive", order, nil)
	return order, nil
}

// MarkCancelled cancels a pending order. Cancellation frees the
// quantity the order held against its warehouse's capacity; no stock
// moves.
func (s *Service) MarkCancelled(ctx context.Context, id int64, actorID int64) (PurchaseOrder, error) {
	order, err := s.repo.Transition(ctx, id, StatusCancelled, s.now())
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.countTransition(StatusCancelled)
	s.recordAudit(ctx, actorID, "purchase_order:cancel", order, nil)
	return order, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// FindHistory returns an order with its transition log, newest entry first.
func (s *Service) FindHistory(ctx context.Context, id int64) (History, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return History{}, err
	}
	logs, err := s.repo.ListLogs(ctx, id)
	if err != nil {
		return History{}, err
	}
	if logs == nil {
		logs = []LogEntry{}
	}
	return History{Order: order, Logs: logs}, nil
}

// Search lists orders matching the filters.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]PurchaseOrder, int, error) {
	return s.repo.Search(ctx, filters)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, order PurchaseOrder, extra map[string]any) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{
		"product_id":   order.ProductID,
		"supplier_id":  order.SupplierID,
		"warehouse_id": order.WarehouseID,
		"quantity":     order.QuantityOrdered,
		"status":       string(order.Status),
	}
	for k, v := range extra {
		meta[k] = v
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "purchase_order",
		EntityID: fmt.Sprintf("%d", order.ID),
		Meta:     meta,
	})
}
