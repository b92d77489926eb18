package warehouses

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockflow-erp/stockflow/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Warehouse, int, error)
	ListAll(ctx context.Context) ([]Warehouse, error)
	Get(ctx context.Context, id int64) (Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Update(ctx context.Context, id int64, warehouse Warehouse) error
	Delete(ctx context.Context, id int64) error
	UpdateQuantityInStock(ctx context.Context, id int64, quantity int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, name, location, capacity, quantity_in_stock, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Warehouse, int, error) {
	query := `SELECT ` + selectColumns + ` FROM warehouses WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		placeholder := `$` + strconv.Itoa(argCount)
		query += ` AND (name ILIKE ` + placeholder + ` OR location ILIKE ` + placeholder + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM warehouses WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR location ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

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

	var warehouses []Warehouse
	for rows.Next() {
		var wh Warehouse
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.Location, &wh.Capacity, &wh.QuantityInStock, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, 0, err
		}
		warehouses = append(warehouses, wh)
	}
	return warehouses, total, rows.Err()
}

// ListAll returns every warehouse; used by the allocator.
func (r *repository) ListAll(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM warehouses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var wh Warehouse
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.Location, &wh.Capacity, &wh.QuantityInStock, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, wh)
	}
	return warehouses, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Warehouse, error) {
	var wh Warehouse
	err := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM warehouses WHERE id = $1`, id).
		Scan(&wh.ID, &wh.Name, &wh.Location, &wh.Capacity, &wh.QuantityInStock, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, ErrNotFound
		}
		return Warehouse{}, err
	}
	return wh, nil
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO warehouses (name, location, capacity, quantity_in_stock, created_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $4) RETURNING id`,
		warehouse.Name, warehouse.Location, warehouse.Capacity, now).Scan(&warehouse.ID)
	if err != nil {
		return Warehouse{}, err
	}
	warehouse.QuantityInStock = 0
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now
	return warehouse, nil
}

func (r *repository) Update(ctx context.Context, id int64, warehouse Warehouse) error {
	tag, err := r.db.Exec(ctx, `UPDATE warehouses SET name = $1, location = $2, capacity = $3, updated_at = $4 WHERE id = $5`,
		warehouse.Name, warehouse.Location, warehouse.Capacity, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantityInStock refreshes the denormalized aggregate; only the
// stock.changed listener writes this column.
func (r *repository) UpdateQuantityInStock(ctx context.Context, id int64, quantity int64) error {
	_, err := r.db.Exec(ctx, `UPDATE warehouses SET quantity_in_stock = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "capacity":
		return "capacity " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
