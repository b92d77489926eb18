package warehouses

import (
	"errors"
	"time"
)

// Warehouse represents a storage location with a hard capacity.
type Warehouse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	// Capacity bounds the total quantity the allocator may place here,
	// counting stock on hand plus pending purchase orders.
	Capacity int64 `json:"capacity"`
	// QuantityInStock is a denormalized sum of the warehouse's stock rows,
	// refreshed by a stock.changed listener.
	QuantityInStock int64     `json:"quantity_in_stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ErrNotFound indicates a missing warehouse.
var ErrNotFound = errors.New("warehouses: not found")

// ErrValidation indicates invalid input.
var ErrValidation = errors.New("warehouses: invalid input")
