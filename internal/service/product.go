package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/policy"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

var (
	errProductNotFound    = apperr.NotFound("Product not found")
	errPurgeNeedsTrash    = apperr.Forbidden("Product must be in trash before permanent deletion")
	errProductInTrash     = apperr.Conflict("Product is already in trash")
	errProductNotInTrash  = apperr.Conflict("Product is not in trash")
	errProductUnavailable = apperr.Conflict("Product is not available")
)

// CreateProductInput is the body of POST /v1/products.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"priceCents" validate:"gt=0,max=99999999"`
	Stock       int    `json:"stock" validate:"gte=0,max=1000000"`
}

// ProductService manages the product lifecycle: active, trashed, purged.
type ProductService struct {
	products  ProductStore
	publisher queue.Publisher
	logger    *slog.Logger
	now       Clock
}

func NewProductService(products ProductStore, pub queue.Publisher, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, publisher: pub, logger: logger, now: systemClock}
}

// Create lists a new active product owned by the calling seller.
func (s *ProductService) Create(ctx context.Context, p *model.Principal, in CreateProductInput) (*model.Product, error) {
	if err := policy.Authorize(p, policy.CreateProduct, policy.Resource{}); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	prod := &model.Product{
		SellerID:    p.ID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, apperr.Internal("create product", err)
	}
	return prod, nil
}

// Get returns a product.  Trashed products are only visible to their owner
// and to admins.
func (s *ProductService) Get(ctx context.Context, p *model.Principal, id uint64) (*model.Product, error) {
	prod, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if prod.Trashed() && (p == nil || (p.Role != model.RoleAdmin && p.ID != prod.SellerID)) {
		return nil, errProductNotFound
	}
	return prod, nil
}

// ListOwn returns the calling seller's products, optionally filtered by
// status ("active" or "trashed").
func (s *ProductService) ListOwn(ctx context.Context, p *model.Principal, status string) ([]*model.Product, error) {
	if err := policy.Authorize(p, policy.ListOwnProducts, policy.Resource{}); err != nil {
		return nil, err
	}
	st := model.ProductStatus(strings.ToLower(strings.TrimSpace(status)))
	switch st {
	case "", model.ProductActive, model.ProductTrashed:
	default:
		return nil, apperr.BadRequest("status must be active or trashed")
	}
	out, err := s.products.ListBySeller(ctx, p.ID, st)
	if err != nil {
		return nil, apperr.Internal("list seller products", err)
	}
	return out, nil
}

// ListPublic pages through active products.  Page is 1-based; pageSize is
// clamped to [1, 100].
func (s *ProductService) ListPublic(ctx context.Context, page, pageSize int) ([]*model.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	out, err := s.products.ListActive(ctx, page, pageSize)
	if err != nil {
		return nil, apperr.Internal("list products", err)
	}
	return out, nil
}

// Trash soft-deletes an active product.
func (s *ProductService) Trash(ctx context.Context, p *model.Principal, id uint64) error {
	prod, err := s.authorizeOwned(ctx, p, policy.TrashProduct, id)
	if err != nil {
		return err
	}
	if prod.Trashed() {
		return errProductInTrash
	}
	err = s.products.Trash(ctx, id, s.now())
	if errors.Is(err, repository.ErrProductNotActive) {
		return errProductInTrash
	}
	if err != nil {
		return apperr.Internal("trash product", err)
	}
	s.logger.Info("product trashed", "product_id", id, "actor_id", p.ID)
	return nil
}

// Restore moves a trashed product back to active.
func (s *ProductService) Restore(ctx context.Context, p *model.Principal, id uint64) error {
	prod, err := s.authorizeOwned(ctx, p, policy.RestoreProduct, id)
	if err != nil {
		return err
	}
	if !prod.Trashed() {
		return errProductNotInTrash
	}
	err = s.products.Restore(ctx, id)
	if errors.Is(err, repository.ErrProductNotTrashed) {
		return errProductNotInTrash
	}
	if err != nil {
		return apperr.Internal("restore product", err)
	}
	s.logger.Info("product restored", "product_id", id, "actor_id", p.ID)
	return nil
}

// Purge permanently deletes a trashed product.  Checks run in this order:
// principal present, product exists, product trashed, principal is admin
// or owner.  The delete itself only matches trashed rows, so a restore
// racing the purge leaves the product in place.
func (s *ProductService) Purge(ctx context.Context, p *model.Principal, id uint64) error {
	if err := policy.Authenticated(p, policy.PurgeProduct); err != nil {
		return err
	}
	prod, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !prod.Trashed() {
		return errPurgeNeedsTrash
	}
	if err := policy.Authorize(p, policy.PurgeProduct, policy.Resource{OwnerID: prod.SellerID}); err != nil {
		return err
	}
	err = s.products.Purge(ctx, id)
	if errors.Is(err, repository.ErrProductNotTrashed) {
		return errPurgeNeedsTrash
	}
	if err != nil {
		return apperr.Internal("purge product", err)
	}
	s.logger.Info("product purged", "product_id", id, "seller_id", prod.SellerID, "actor_id", p.ID)

	publish(ctx, s.publisher, s.logger, queue.ProductPurged, queue.ProductPurgedEvent{
		Meta:      queue.NewMeta(s.now()),
		ProductID: id,
		SellerID:  prod.SellerID,
		ActorID:   p.ID,
		ActorRole: string(p.Role),
	})
	return nil
}

func (s *ProductService) load(ctx context.Context, id uint64) (*model.Product, error) {
	prod, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, apperr.Internal("load product", err)
	}
	return prod, nil
}

// authorizeOwned checks presence, loads the product and applies the
// owner-or-admin rule for a.
func (s *ProductService) authorizeOwned(ctx context.Context, p *model.Principal, a policy.Action, id uint64) (*model.Product, error) {
	if err := policy.Authenticated(p, a); err != nil {
		return nil, err
	}
	prod, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, a, policy.Resource{OwnerID: prod.SellerID}); err != nil {
		return nil, err
	}
	return prod, nil
}
