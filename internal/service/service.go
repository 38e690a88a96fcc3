// Package service holds the business rules behind every HTTP operation.
// Each method authorizes the principal first, then validates input, then
// checks resource state, and only then touches the store or the gateway.
// Errors returned to handlers are *apperr.Error values.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/timeouts"
)

// UserStore is the subset of repository.UserRepo used by services.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetResetToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uint64, error)
}

// TokenStore is the subset of repository.TokenRepo used by services.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ProductStore is the subset of repository.ProductRepo used by services.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	ListBySeller(ctx context.Context, sellerID uint64, status model.ProductStatus) ([]*model.Product, error)
	ListActive(ctx context.Context, page, pageSize int) ([]*model.Product, error)
	Trash(ctx context.Context, id uint64, at time.Time) error
	Restore(ctx context.Context, id uint64) error
	Purge(ctx context.Context, id uint64) error
}

// OrderStore is the subset of repository.OrderRepo used by services.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]*model.Order, error)
	MarkPaid(ctx context.Context, id uint64, intentID string, at time.Time) error
}

// RevenueStore is the subset of repository.RevenueRepo used by services.
type RevenueStore interface {
	SellerTotal(ctx context.Context, sellerID uint64) (int64, error)
	PlatformTotal(ctx context.Context) (int64, error)
	Buckets(ctx context.Context, g model.Granularity, from, to time.Time) ([]model.PeriodTotal, error)
	PerSeller(ctx context.Context) ([]model.SellerRevenue, error)
}

// Clock returns the current time.  Tests replace it with a fixed clock.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// publish sends ev without failing the caller.  The request context may be
// cancelled as soon as the response is written, so the publish gets its own
// deadline.
func publish(ctx context.Context, pub queue.Publisher, logger *slog.Logger, routingKey string, ev any) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Publish)
	defer cancel()
	if err := pub.Publish(pctx, routingKey, ev); err != nil {
		logger.Warn("event not published", "routing_key", routingKey, "err", err)
	}
}
