package purchaseorder

import "sort"

// WarehouseState is the allocator's view of a warehouse: hard capacity,
// stock currently on hand, and quantity already committed on pending
// purchase orders.
type WarehouseState struct {
	ID       int64
	Capacity int64
	Stocked  int64
	Pending  int64
}

// AvailableSpace is the quantity the warehouse can still absorb.
func (w WarehouseState) AvailableSpace() int64 {
	return w.Capacity - (w.Stocked + w.Pending)
}

// Allocation is the allocator's verdict: which warehouse receives the
// order and for how many units. A zero WarehouseID means no warehouse
// had room.
type Allocation struct {
	WarehouseID int64
	Quantity    int64
}

// Allocate picks the warehouse for a replenishment order. Warehouses are
// tried from largest capacity down; ties keep their input order so the
// outcome is deterministic.
//
// A positive requested quantity is ordered as-is in the first warehouse
// whose free space fits it whole, never as a capped partial. Otherwise
// each warehouse's needed quantity is what tops its own stock plus
// pending orders up to twice the reorder threshold, and the warehouse is
// taken only when that quantity fits entirely; otherwise the next
// warehouse is tried.
func Allocate(warehouses []WarehouseState, threshold, requested int64) Allocation {
	sorted := make([]WarehouseState, len(warehouses))
	copy(sorted, warehouses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Capacity > sorted[j].Capacity
	})

	ideal := threshold * 2
	for _, w := range sorted {
		space := w.AvailableSpace()
		if space <= 0 {
			continue
		}
		if requested > 0 && space >= requested {
			return Allocation{WarehouseID: w.ID, Quantity: requested}
		}
		needed := ideal - (w.Stocked + w.Pending)
		if needed > 0 && space >= needed {
			return Allocation{WarehouseID: w.ID, Quantity: needed}
		}
	}
	return Allocation{}
}
