package model

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Order mirrors the `orders` table.  Only paid orders count towards revenue.
type Order struct {
	ID              uint64      `json:"id"`
	BuyerID         uint64      `json:"buyerId"`
	Status          OrderStatus `json:"status"`
	TotalCents      int64       `json:"totalCents"`
	Currency        string      `json:"currency"`
	PaymentIntentID *string     `json:"paymentIntentId,omitempty"`
	PaidAt          *time.Time  `json:"paidAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots seller and price at order time so revenue reports
// survive a product being purged (ProductID becomes nil).
type OrderItem struct {
	ID             uint64  `json:"id"`
	OrderID        uint64  `json:"orderId"`
	ProductID      *uint64 `json:"productId"`
	SellerID       uint64  `json:"sellerId"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
}

// LineTotal returns quantity * unit price in cents.
func (it OrderItem) LineTotal() int64 { return int64(it.Quantity) * it.UnitPriceCents }
