package model

import "time"

// ProductStatus is the lifecycle state of a product row.  A purged product
// has no row at all, so there is no status for it.
type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductTrashed ProductStatus = "trashed"
)

// Product mirrors the `products` table.
type Product struct {
	ID          uint64        `json:"id"`
	SellerID    uint64        `json:"sellerId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"priceCents"`
	Stock       int           `json:"stock"`
	Status      ProductStatus `json:"status"`
	TrashedAt   *time.Time    `json:"trashedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Trashed reports whether the product sits in the trash and may be purged.
func (p *Product) Trashed() bool { return p.Status == ProductTrashed }
