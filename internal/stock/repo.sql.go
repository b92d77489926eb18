package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockflow-erp/stockflow/internal/platform/db"
)

// Repository persists ledger rows in PostgreSQL.
type Repository struct {
	pool  *pgxpool.Pool
	retry db.RetryConfig
}

// NewRepository constructs Repository. A zero retry config falls back to the
// package default budget.
func NewRepository(pool *pgxpool.Pool, retry db.RetryConfig) *Repository {
	return &Repository{pool: pool, retry: retry}
}

// TxRepository exposes the transactional operations used by the service.
type TxRepository interface {
	GetForUpdate(ctx context.Context, warehouseID, productID int64) (WarehouseStock, error)
	Upsert(ctx context.Context, row WarehouseStock) error
}

type txRepository struct {
	tx pgx.Tx
}

// ErrStockNotFound indicates a missing ledger row.
var ErrStockNotFound = errors.New("stock: warehouse stock not found")

// WithTx executes the callback inside a RepeatableRead transaction, retrying
// serialization conflicts within the configured budget.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTxRetry(ctx, r.pool, r.retry, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// AggregateProductStock sums a product's quantities. A zero warehouseID means
// all warehouses. Returns 0 when no rows exist.
func (r *Repository) AggregateProductStock(ctx context.Context, productID, warehouseID int64) (int64, error) {
	if r == nil {
		return 0, errors.New("stock repository not initialised")
	}
	var total int64
	var err error
	if warehouseID != 0 {
		err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM warehouse_stocks WHERE product_id=$1 AND warehouse_id=$2`,
			productID, warehouseID).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM warehouse_stocks WHERE product_id=$1`,
			productID).Scan(&total)
	}
	return total, err
}

// AggregateWarehouseStock sums all quantities stored in a warehouse.
func (r *Repository) AggregateWarehouseStock(ctx context.Context, warehouseID int64) (int64, error) {
	if r == nil {
		return 0, errors.New("stock repository not initialised")
	}
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM warehouse_stocks WHERE warehouse_id=$1`,
		warehouseID).Scan(&total)
	return total, err
}

func (r *txRepository) GetForUpdate(ctx context.Context, warehouseID, productID int64) (WarehouseStock, error) {
	var row WarehouseStock
	err := r.tx.QueryRow(ctx, `SELECT id, warehouse_id, product_id, quantity, created_at, updated_at
FROM warehouse_stocks WHERE warehouse_id=$1 AND product_id=$2 FOR UPDATE`, warehouseID, productID).
		Scan(&row.ID, &row.WarehouseID, &row.ProductID, &row.Quantity, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WarehouseStock{WarehouseID: warehouseID, ProductID: productID}, ErrStockNotFound
		}
		return WarehouseStock{}, err
	}
	return row, nil
}

func (r *txRepository) Upsert(ctx context.Context, row WarehouseStock) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO warehouse_stocks (warehouse_id, product_id, quantity, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW())
ON CONFLICT (warehouse_id, product_id) DO UPDATE SET quantity=EXCLUDED.quantity, updated_at=NOW()`,
		row.WarehouseID, row.ProductID, row.Quantity)
	return err
}
