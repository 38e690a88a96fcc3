package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// RevenueRepo aggregates paid order data for revenue reports.  All amounts
// are returned in cents.
type RevenueRepo struct {
	db *sql.DB
}

func NewRevenueRepo(db *sql.DB) *RevenueRepo {
	return &RevenueRepo{db: db}
}

// periodFormats maps a granularity to the DATE_FORMAT pattern that renders
// its bucket id.  %x-W%v is the ISO week-numbering year and week.
var periodFormats = map[model.Granularity]string{
	model.Daily:   "%Y-%m-%d",
	model.Weekly:  "%x-W%v",
	model.Monthly: "%Y-%m",
	model.Yearly:  "%Y",
}

// SellerTotal sums the paid order items sold by sellerID.
func (r *RevenueRepo) SellerTotal(ctx context.Context, sellerID uint64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(oi.quantity * oi.unit_price_cents), 0)
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.status = 'paid' AND oi.seller_id = ?`, sellerID).Scan(&total)
	return total, err
}

// PlatformTotal sums every paid order.
func (r *RevenueRepo) PlatformTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE status = 'paid'").Scan(&total)
	return total, err
}

// Buckets groups paid orders with paid_at in [from, to) by g, ordered by
// bucket id.
func (r *RevenueRepo) Buckets(ctx context.Context, g model.Granularity, from, to time.Time) ([]model.PeriodTotal, error) {
	format, ok := periodFormats[g]
	if !ok {
		return nil, fmt.Errorf("unknown granularity %q", g)
	}
	// format comes from the fixed table above, never from the request.
	q := fmt.Sprintf(`SELECT DATE_FORMAT(paid_at, '%s') AS period, SUM(total_cents) AS total
		FROM orders
		WHERE status = 'paid' AND paid_at >= ? AND paid_at < ?
		GROUP BY period
		ORDER BY period`, format)
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PeriodTotal{}
	for rows.Next() {
		var pt model.PeriodTotal
		if err := rows.Scan(&pt.PeriodID, &pt.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// PerSeller returns every seller with paid sales, highest revenue first.
func (r *RevenueRepo) PerSeller(ctx context.Context) ([]model.SellerRevenue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT oi.seller_id, u.name, SUM(oi.quantity * oi.unit_price_cents) AS total, COUNT(*) AS items
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN users u ON u.id = oi.seller_id
		 WHERE o.status = 'paid'
		 GROUP BY oi.seller_id, u.name
		 ORDER BY total DESC, oi.seller_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SellerRevenue{}
	for rows.Next() {
		var sr model.SellerRevenue
		if err := rows.Scan(&sr.SellerID, &sr.SellerName, &sr.TotalCents, &sr.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
