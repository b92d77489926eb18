package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockflow-erp/stockflow/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	UpdateQuantityInStock(ctx context.Context, id int64, quantity int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, sku, name, description, reorder_threshold, quantity_in_stock, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + selectColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		placeholder := `$` + strconv.Itoa(argCount)
		query += ` AND (name ILIKE ` + placeholder + ` OR sku ILIKE ` + placeholder + ` OR description ILIKE ` + placeholder + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR sku ILIKE $1 OR description ILIKE $1)`
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

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.ReorderThreshold, &p.QuantityInStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.ReorderThreshold, &p.QuantityInStock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO products (sku, name, description, reorder_threshold, quantity_in_stock, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $5) RETURNING id`,
		product.SKU, product.Name, product.Description, product.ReorderThreshold, now).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateSKU
		}
		return Product{}, err
	}
	product.QuantityInStock = 0
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET sku = $1, name = $2, description = $3, reorder_threshold = $4, updated_at = $5 WHERE id = $6`,
		product.SKU, product.Name, product.Description, product.ReorderThreshold, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSKU
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantityInStock refreshes the denormalized aggregate. Only the
// reorder evaluator calls this; nothing else may write the cached column.
func (r *repository) UpdateQuantityInStock(ctx context.Context, id int64, quantity int64) error {
	_, err := r.db.Exec(ctx, `UPDATE products SET quantity_in_stock = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "sku":
		return "sku " + dir
	case "name":
		return "name " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
