// Package sourcing maintains the directory of which suppliers can
// provide which products, including the default supplier used when a
// replenishment order is raised automatically.
package sourcing

import (
	"errors"
	"time"
)

// ProductSupplier links a product to a supplier able to provide it.
// At most one link per product carries IsDefault.
type ProductSupplier struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	SupplierID   int64     `json:"supplier_id"`
	LeadTimeDays int       `json:"lead_time_days"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrNotFound   = errors.New("sourcing: product supplier link not found")
	ErrValidation = errors.New("sourcing: invalid input")
)
