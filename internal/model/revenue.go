package model

// Granularity selects how paid revenue is bucketed over time.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// PeriodTotal is one bucket of revenue.  PeriodID is formatted as
// YYYY-MM-DD, YYYY-Www (ISO week), YYYY-MM or YYYY.
type PeriodTotal struct {
	PeriodID   string
	TotalCents int64
}

// SellerRevenue is one row of the per-seller breakdown.  OrderCount counts
// order items, matching the reporting contract.
type SellerRevenue struct {
	SellerID   uint64
	SellerName string
	TotalCents int64
	OrderCount int64
}
