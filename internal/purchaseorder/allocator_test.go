package purchaseorder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateTopsUpToTwiceThreshold(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 1000, Stocked: 0, Pending: 0},
	}

	// Empty warehouse, threshold 10: order 20 to reach the ideal level.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{WarehouseID: 1, Quantity: 20}, alloc)
}

func TestAllocatePrefersLargestCapacity(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100},
		{ID: 2, Capacity: 500},
		{ID: 3, Capacity: 300},
	}

	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, int64(2), alloc.WarehouseID)
	require.Equal(t, int64(20), alloc.Quantity)
}

func TestAllocateNeededIsPerWarehouse(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 200, Stocked: 0},
		{ID: 2, Capacity: 100, Stocked: 15},
	}

	// Warehouse 1 holds nothing, so it needs the full ideal quantity
	// regardless of what other warehouses already stock.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{WarehouseID: 1, Quantity: 20}, alloc)
}

func TestAllocateSkipsWarehouseThatCannotFitWholeOrder(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 95},
		{ID: 2, Capacity: 60, Stocked: 0},
	}

	// Warehouse 1 has 5 units of space but needs none (already above the
	// ideal level); warehouse 2 takes the full order. Never a partial.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{WarehouseID: 2, Quantity: 20}, alloc)
}

func TestAllocateCountsPendingAgainstCapacity(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 50, Pending: 50},
		{ID: 2, Capacity: 80, Stocked: 0, Pending: 0},
	}

	// Warehouse 1 is full once pending orders are counted.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{WarehouseID: 2, Quantity: 20}, alloc)
}

func TestAllocatePendingCountsTowardIdealLevel(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 5, Pending: 15},
	}

	// Stock plus pending already sits at the ideal level, so a second
	// evaluation orders nothing instead of doubling up.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{}, alloc)
}

func TestAllocateNoSpaceAnywhere(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 100},
		{ID: 2, Capacity: 50, Stocked: 30, Pending: 20},
	}

	alloc := Allocate(warehouses, 100, 0)
	require.Equal(t, Allocation{}, alloc)
}

func TestAllocateRequestedQuantityWins(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 1000},
	}

	// Explicit request bypasses the threshold heuristic.
	alloc := Allocate(warehouses, 10, 75)
	require.Equal(t, Allocation{WarehouseID: 1, Quantity: 75}, alloc)
}

func TestAllocateRequestedSkipsTightWarehouse(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 80},
		{ID: 2, Capacity: 60, Stocked: 0},
	}

	// Warehouse 1's 20 units of space cannot fit the requested 50, so
	// the order moves whole to warehouse 2 rather than being capped.
	alloc := Allocate(warehouses, 10, 50)
	require.Equal(t, Allocation{WarehouseID: 2, Quantity: 50}, alloc)
}

func TestAllocateRequestedFallsBackToThresholdQuantity(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 100, Stocked: 50},
	}

	// The requested 500 fits nowhere; the warehouse still tops itself up
	// to the ideal level.
	alloc := Allocate(warehouses, 30, 500)
	require.Equal(t, Allocation{WarehouseID: 1, Quantity: 10}, alloc)
}

func TestAllocateNothingNeeded(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 1, Capacity: 1000, Stocked: 40},
	}

	// Warehouse stock already at or above twice the threshold.
	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, Allocation{}, alloc)
}

func TestAllocateCapacityTiesKeepInputOrder(t *testing.T) {
	warehouses := []WarehouseState{
		{ID: 7, Capacity: 200},
		{ID: 8, Capacity: 200},
	}

	alloc := Allocate(warehouses, 10, 0)
	require.Equal(t, int64(7), alloc.WarehouseID)
}

func TestAllocateEmptyWarehouseList(t *testing.T) {
	alloc := Allocate(nil, 10, 0)
	require.Equal(t, Allocation{}, alloc)
}
