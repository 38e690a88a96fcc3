package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/policy"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID uint64 `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,max=1000"`
}

// CreateOrderInput is the body of POST /v1/orders.
type CreateOrderInput struct {
	Items    []OrderItemInput `json:"items" validate:"required,min=1,max=50,dive"`
	Currency string           `json:"currency" validate:"len=3"`
}

// OrderService places and lists buyer orders.
type OrderService struct {
	orders   OrderStore
	products ProductStore
	logger   *slog.Logger
}

func NewOrderService(orders OrderStore, products ProductStore, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, products: products, logger: logger}
}

// Create places a pending order.  Each item snapshots the product's seller
// and current price; stock is reserved in the same transaction as the
// insert.  Repeated product ids are merged.
func (s *OrderService) Create(ctx context.Context, p *model.Principal, in CreateOrderInput) (*model.Order, error) {
	if err := policy.Authorize(p, policy.CreateOrder, policy.Resource{}); err != nil {
		return nil, err
	}
	in.Currency = strings.ToLower(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	order := &model.Order{BuyerID: p.ID, Currency: in.Currency, Status: model.OrderPending}
	index := make(map[uint64]int, len(in.Items))
	for _, line := range in.Items {
		if i, ok := index[line.ProductID]; ok {
			order.Items[i].Quantity += line.Quantity
			continue
		}
		prod, err := s.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProductNotFound
		}
		if err != nil {
			return nil, apperr.Internal("load product", err)
		}
		if prod.Status != model.ProductActive {
			return nil, errProductUnavailable
		}
		pid := prod.ID
		index[pid] = len(order.Items)
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      &pid,
			SellerID:       prod.SellerID,
			Quantity:       line.Quantity,
			UnitPriceCents: prod.PriceCents,
		})
	}
	for _, it := range order.Items {
		order.TotalCents += it.LineTotal()
	}

	err := s.orders.Create(ctx, order)
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		return nil, apperr.Conflict("Insufficient stock")
	case errors.Is(err, repository.ErrNotFound):
		return nil, errProductNotFound
	case err != nil:
		return nil, apperr.Internal("create order", err)
	}
	s.logger.Info("order placed", "order_id", order.ID, "buyer_id", p.ID, "total_cents", order.TotalCents)
	return order, nil
}

// ListMine returns the calling buyer's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, p *model.Principal) ([]*model.Order, error) {
	if err := policy.Authorize(p, policy.ListOwnOrders, policy.Resource{}); err != nil {
		return nil, err
	}
	out, err := s.orders.ListByBuyer(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	return out, nil
}
