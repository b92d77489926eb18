package purchaseorder

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchFilters narrows order listings. Zero values mean no filter; the
// time bounds are inclusive on ordered_at.
type SearchFilters struct {
	Status      Status
	ProductID   int64
	SupplierID  int64
	WarehouseID int64
	From        time.Time
	To          time.Time
	Page        int
	Limit       int
}

// Repository persists purchase orders and their transition logs.
type Repository interface {
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	// ReplacePending drops any pending order for the same product and
	// warehouse before inserting, so at most one pending order exists
	// per pair.
	ReplacePending(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	// Transition moves a pending order to its terminal status and
	// appends the matching log entry, atomically.
	Transition(ctx context.Context, id int64, to Status, at time.Time) (PurchaseOrder, error)
	// PendingQuantities sums the product's pending order quantities per
	// warehouse. Other products' pending orders do not count against a
	// warehouse when allocating for this one.
	PendingQuantities(ctx context.Context, productID int64) (map[int64]int64, error)
	ListLogs(ctx context.Context, orderID int64) ([]LogEntry, error)
	Search(ctx context.Context, filters SearchFilters) ([]PurchaseOrder, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, product_id, supplier_id, warehouse_id, quantity_ordered, status, ordered_at, expected_to_arrive_at`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(&o.ID, &o.ProductID, &o.SupplierID, &o.WarehouseID, &o.QuantityOrdered, &o.Status, &o.OrderedAt, &o.ExpectedToArriveAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, ErrNotFound
	}
	return o, err
}

func (r *repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id))
}

func (r *repository) ReplacePending(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM purchase_orders
		WHERE product_id = $1 AND warehouse_id = $2 AND status = $3`,
		order.ProductID, order.WarehouseID, StatusPending)
	if err != nil {
		return PurchaseOrder{}, err
	}

	order.Status = StatusPending
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (product_id, supplier_id, warehouse_id, quantity_ordered, status, ordered_at, expected_to_arrive_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		order.ProductID, order.SupplierID, order.WarehouseID, order.QuantityOrdered, order.Status, order.OrderedAt, order.ExpectedToArriveAt).
		Scan(&order.ID)
	if err != nil {
		return PurchaseOrder{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

func (r *repository) Transition(ctx context.Context, id int64, to Status, at time.Time) (PurchaseOrder, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return PurchaseOrder{}, err
	}
	if order.Status != StatusPending {
		return PurchaseOrder{}, ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `UPDATE purchase_orders SET status = $1 WHERE id = $2`, to, id); err != nil {
		return PurchaseOrder{}, err
	}

	entry := transitionLog(to, at)
	_, err = tx.Exec(ctx, `
		INSERT INTO purchase_order_logs (order_id, log_group, tag, value, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, entry.Group, entry.Tag, entry.Value, entry.CreatedAt)
	if err != nil {
		return PurchaseOrder{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PurchaseOrder{}, err
	}
	order.Status = to
	return order, nil
}

func transitionLog(to Status, at time.Time) LogEntry {
	tag := logTagCompleted
	if to == StatusCancelled {
		tag = logTagCancelled
	}
	return LogEntry{
		Group:     logGroupStatus,
		Tag:       tag,
		Value:     strconv.FormatInt(at.Unix(), 10),
		CreatedAt: at,
	}
}

func (r *repository) PendingQuantities(ctx context.Context, productID int64) (map[int64]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT warehouse_id, COALESCE(SUM(quantity_ordered), 0)
		FROM purchase_orders
		WHERE status = $1 AND product_id = $2
		GROUP BY warehouse_id`, StatusPending, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make(map[int64]int64)
	for rows.Next() {
		var warehouseID, qty int64
		if err := rows.Scan(&warehouseID, &qty); err != nil {
			return nil, err
		}
		pending[warehouseID] = qty
	}
	return pending, rows.Err()
}

func (r *repository) ListLogs(ctx context.Context, orderID int64) ([]LogEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT log_group, tag, value, created_at
		FROM purchase_order_logs
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Group, &e.Tag, &e.Value, &e.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]PurchaseOrder, int, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM purchase_orders WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.ProductID > 0 {
		argCount++
		clause := ` AND product_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.ProductID)
	}
	if filters.SupplierID > 0 {
		argCount++
		clause := ` AND supplier_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.SupplierID)
	}
	if filters.WarehouseID > 0 {
		argCount++
		clause := ` AND warehouse_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.WarehouseID)
	}
	if !filters.From.IsZero() {
		argCount++
		clause := ` AND ordered_at >= $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		clause := ` AND ordered_at <= $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ordered_at DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var o PurchaseOrder
		if err := rows.Scan(&o.ID, &o.ProductID, &o.SupplierID, &o.WarehouseID, &o.QuantityOrdered, &o.Status, &o.OrderedAt, &o.ExpectedToArriveAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}
