package sourcing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists product-supplier links.
type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]ProductSupplier, error)
	Create(ctx context.Context, link ProductSupplier) (ProductSupplier, error)
	SetDefault(ctx context.Context, productID, supplierID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]ProductSupplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, supplier_id, lead_time_days, is_default, created_at
		FROM product_suppliers
		WHERE product_id = $1
		ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []ProductSupplier
	for rows.Next() {
		var l ProductSupplier
		if err := rows.Scan(&l.ID, &l.ProductID, &l.SupplierID, &l.LeadTimeDays, &l.IsDefault, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Create inserts a link, or refreshes lead time and default flag when the
// pair already exists. Marking a link default clears the previous default
// for the product inside the same transaction.
func (r *repository) Create(ctx context.Context, link ProductSupplier) (ProductSupplier, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ProductSupplier{}, err
	}
	defer tx.Rollback(ctx)

	if link.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE product_suppliers SET is_default = FALSE WHERE product_id = $1`, link.ProductID); err != nil {
			return ProductSupplier{}, err
		}
	}

	now := time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO product_suppliers (product_id, supplier_id, lead_time_days, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, supplier_id)
		DO UPDATE SET lead_time_days = EXCLUDED.lead_time_days, is_default = EXCLUDED.is_default
		RETURNING id, created_at`,
		link.ProductID, link.SupplierID, link.LeadTimeDays, link.IsDefault, now).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return ProductSupplier{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ProductSupplier{}, err
	}
	return link, nil
}

// SetDefault promotes an existing link to be the product's default.
func (r *repository) SetDefault(ctx context.Context, productID, supplierID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE product_suppliers SET is_default = FALSE WHERE product_id = $1`, productID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE product_suppliers SET is_default = TRUE WHERE product_id = $1 AND supplier_id = $2`, productID, supplierID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
