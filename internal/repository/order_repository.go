package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// OrderRepo persists orders and their items.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create inserts o and its items and reserves stock for every item inside
// one transaction.  Items must already carry the seller and unit price
// snapshot.  On success o.ID, o.CreatedAt and the item ids are populated.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, it := range o.Items {
		if it.ProductID == nil {
			return ErrNotFound
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ? WHERE id = ? AND status = 'active' AND stock >= ?",
			it.Quantity, *it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrInsufficientStock
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (buyer_id, status, total_cents, currency) VALUES (?, 'pending', ?, ?)",
		o.BuyerID, o.TotalCents, o.Currency)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OrderPending

	for i := range o.Items {
		it := &o.Items[i]
		res, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, seller_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?, ?)",
			o.ID, *it.ProductID, it.SellerID, it.Quantity, it.UnitPriceCents)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		it.ID = uint64(itemID)
		it.OrderID = o.ID
	}

	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM orders WHERE id = ?", o.ID).Scan(&o.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const orderColumns = "id, buyer_id, status, total_cents, currency, payment_intent_id, paid_at, created_at"

func scanOrder(rs rowScanner) (*model.Order, error) {
	var (
		o      model.Order
		status string
		intent sql.NullString
		paidAt sql.NullTime
	)
	if err := rs.Scan(&o.ID, &o.BuyerID, &status, &o.TotalCents, &o.Currency, &intent, &paidAt, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	if intent.Valid {
		o.PaymentIntentID = &intent.String
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	return &o, nil
}

// GetByID loads an order without its items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// ListByBuyer returns a buyer's orders, newest first, with their items.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE buyer_id = ? ORDER BY id DESC", buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Order{}
	byID := map[uint64]*model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.seller_id, oi.quantity, oi.unit_price_cents
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.buyer_id = ? ORDER BY oi.id`, buyerID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			it  model.OrderItem
			pid sql.NullInt64
		)
		if err := itemRows.Scan(&it.ID, &it.OrderID, &pid, &it.SellerID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		if pid.Valid {
			v := uint64(pid.Int64)
			it.ProductID = &v
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return out, itemRows.Err()
}

// MarkPaid records a succeeded payment intent against a pending order.
func (r *OrderRepo) MarkPaid(ctx context.Context, id uint64, intentID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = 'paid', payment_intent_id = ?, paid_at = ? WHERE id = ? AND status = 'pending'",
		intentID, at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotPending
	}
	return nil
}
