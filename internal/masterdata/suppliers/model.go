package suppliers

import (
	"errors"
	"time"
)

// Supplier represents a vendor that can fulfil purchase orders.
type Supplier struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	ContactInformation string    `json:"contact_information"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ErrNotFound indicates a missing supplier.
var ErrNotFound = errors.New("suppliers: not found")

// ErrValidation indicates invalid input.
var ErrValidation = errors.New("suppliers: invalid input")
