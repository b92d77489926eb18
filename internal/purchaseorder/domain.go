// Package purchaseorder manages replenishment purchase orders: raising
// them against the default supplier, allocating quantities to warehouse
// capacity, and walking each order through its pending, completed or
// cancelled lifecycle.
package purchaseorder

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PurchaseOrder is a request to a supplier for stock destined for a
// single warehouse. QuantityOrdered counts against that warehouse's
// capacity while the order stays pending.
type PurchaseOrder struct {
	ID                 int64     `json:"id"`
	ProductID          int64     `json:"product_id"`
	SupplierID         int64     `json:"supplier_id"`
	WarehouseID        int64     `json:"warehouse_id"`
	QuantityOrdered    int64     `json:"quantity_ordered"`
	Status             Status    `json:"status"`
	OrderedAt          time.Time `json:"ordered_at"`
	ExpectedToArriveAt time.Time `json:"expected_to_arrive_at"`
}

// LogEntry records a lifecycle transition on an order. Value holds the
// transition time as unix seconds.
type LogEntry struct {
	Group     string    `json:"group"`
	Tag       string    `json:"tag"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	logGroupStatus  = "status"
	logTagCompleted = "completed_at"
	logTagCancelled = "cancelled_at"
)

// History is an order together with its transition log, newest entry first.
type History struct {
	Order PurchaseOrder `json:"order"`
	Logs  []LogEntry    `json:"logs"`
}

var (
	ErrNotFound          = errors.New("purchaseorder: order not found")
	ErrProductNotFound   = errors.New("purchaseorder: product not found")
	ErrInvalidState      = errors.New("purchaseorder: order is not pending")
	ErrNoDefaultSupplier = errors.New("purchaseorder: no default supplier found")
	ErrNoWarehouse       = errors.New("purchaseorder: no warehouse available")
	ErrNoCapacity        = errors.New("purchaseorder: no more capacity available")
	ErrValidation        = errors.New("purchaseorder: invalid input")
)
