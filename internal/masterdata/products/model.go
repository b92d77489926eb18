package products

import (
	"errors"
	"time"
)

// Product represents a sellable item tracked by the inventory.
type Product struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// ReorderThreshold is the aggregate stock level at or below which the
	// replenishment workflow issues a purchase order.
	ReorderThreshold int64 `json:"reorder_threshold"`
	// QuantityInStock is a denormalized sum of the product's warehouse stock
	// rows, refreshed by the reorder evaluator after each stock change.
	QuantityInStock int64     `json:"quantity_in_stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ErrNotFound indicates a missing product.
var ErrNotFound = errors.New("products: not found")

// ErrDuplicateSKU indicates a SKU collision.
var ErrDuplicateSKU = errors.New("products: sku already exists")

// ErrValidation indicates invalid input.
var ErrValidation = errors.New("products: invalid input")
