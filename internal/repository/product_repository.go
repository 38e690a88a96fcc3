// Package repository contains data access logic separated from HTTP handlers.
// This file implements the product lifecycle: active products can be moved
// to the trash and back, and only trashed products can be purged.  Every
// transition is a conditional statement on the current status so a
// concurrent restore cannot be overtaken by a purge.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = "id, seller_id, name, description, price_cents, stock, status, trashed_at, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(rs rowScanner) (*model.Product, error) {
	var (
		p       model.Product
		status  string
		trashed sql.NullTime
	)
	if err := rs.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceCents, &p.Stock,
		&status, &trashed, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = model.ProductStatus(status)
	if trashed.Valid {
		p.TrashedAt = &trashed.Time
	}
	return &p, nil
}

// Create inserts a new active product and reloads it so timestamps are
// populated.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (seller_id, name, description, price_cents, stock, status) VALUES (?, ?, ?, ?, ?, 'active')",
		p.SellerID, p.Name, p.Description, p.PriceCents, p.Stock)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetByID fetches a product in any status.  It returns ErrNotFound if no
// row exists.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListBySeller returns a seller's products ordered by id.  An empty status
// returns products in every status.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID uint64, status model.ProductStatus) ([]*model.Product, error) {
	if status == "" {
		return r.list(ctx,
			"SELECT "+productColumns+" FROM products WHERE seller_id = ? ORDER BY id", sellerID)
	}
	return r.list(ctx,
		"SELECT "+productColumns+" FROM products WHERE seller_id = ? AND status = ? ORDER BY id",
		sellerID, string(status))
}

// ListActive returns one page of active products for public browsing.
func (r *ProductRepo) ListActive(ctx context.Context, page, pageSize int) ([]*model.Product, error) {
	return r.list(ctx,
		"SELECT "+productColumns+" FROM products WHERE status = 'active' ORDER BY id DESC LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
}

func (r *ProductRepo) list(ctx context.Context, q string, args ...any) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Trash moves an active product to the trash.
func (r *ProductRepo) Trash(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET status = 'trashed', trashed_at = ? WHERE id = ? AND status = 'active'",
		at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotActive
	}
	return nil
}

// Restore moves a trashed product back to active.
func (r *ProductRepo) Restore(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET status = 'active', trashed_at = NULL WHERE id = ? AND status = 'trashed'",
		id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotTrashed
	}
	return nil
}

// Purge permanently deletes a trashed product.  Order items keep their
// seller and price snapshot; their product reference is nulled by the
// foreign key.
func (r *ProductRepo) Purge(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM products WHERE id = ? AND status = 'trashed'", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotTrashed
	}
	return nil
}
