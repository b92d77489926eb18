package stock

import (
	"errors"
	"time"
)

// Operation enumerates supported stock mutations.
type Operation string

const (
	// OperationAdd increases the stored quantity.
	OperationAdd Operation = "add"
	// OperationSubtract decreases the stored quantity, clamped at zero.
	OperationSubtract Operation = "subtract"
)

// WarehouseStock is the ledger row for one (warehouse, product) pair.
type WarehouseStock struct {
	ID          int64
	WarehouseID int64
	ProductID   int64
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdjustInput describes a requested stock mutation.
type AdjustInput struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int64
	Operation   Operation
	ActorID     int64
}

// ErrInvalidQuantity indicates a non-positive adjustment quantity.
var ErrInvalidQuantity = errors.New("stock: quantity must be positive")

// ErrInvalidOperation indicates an unknown operation keyword.
var ErrInvalidOperation = errors.New("stock: operation must be add or subtract")
