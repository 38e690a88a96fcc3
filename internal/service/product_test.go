package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/logging"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
)

func newProductService(products *fakeProducts, pub *fakePublisher) *ProductService {
	s := NewProductService(products, pub, logging.Discard())
	s.now = fixedClock
	return s
}

func trashedProduct() model.Product {
	at := fixedNow
	return model.Product{ID: 10, SellerID: seller.ID, Name: "Lamp", PriceCents: 1500, Stock: 3, Status: model.ProductTrashed, TrashedAt: &at}
}

func activeProduct() model.Product {
	return model.Product{ID: 11, SellerID: seller.ID, Name: "Desk", PriceCents: 9900, Stock: 5, Status: model.ProductActive}
}

func TestPurgeOwnerThenOtherSeller(t *testing.T) {
	products := newFakeProducts(trashedProduct())
	pub := &fakePublisher{}
	s := newProductService(products, pub)
	ctx := context.Background()

	// A different seller is refused while the product still exists.
	err := s.Purge(ctx, otherSeller, 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "You can only delete your own products", err.Error())
	assert.Contains(t, products.rows, uint64(10))

	require.NoError(t, s.Purge(ctx, seller, 10))
	_, err = s.Get(ctx, seller, 10)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ProductPurged, pub.events[0].key)
	ev := pub.events[0].event.(queue.ProductPurgedEvent)
	assert.Equal(t, uint64(10), ev.ProductID)
	assert.Equal(t, "seller", ev.ActorRole)
}

func TestPurgePreconditions(t *testing.T) {
	tests := []struct {
		name string
		p    *model.Principal
		id   uint64
		kind apperr.Kind
		msg  string
	}{
		{"anonymous", nil, 10, apperr.KindForbidden, "Authentication required"},
		{"missing product", seller, 404, apperr.KindNotFound, "Product not found"},
		{"active product", seller, 11, apperr.KindForbidden, "Product must be in trash before permanent deletion"},
		{"active product other seller", otherSeller, 11, apperr.KindForbidden, "Product must be in trash before permanent deletion"},
		{"buyer", buyer, 10, apperr.KindForbidden, "You can only delete your own products"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := newFakeProducts(trashedProduct(), activeProduct())
			pub := &fakePublisher{}
			s := newProductService(products, pub)

			err := s.Purge(context.Background(), tt.p, tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
			assert.Len(t, products.rows, 2, "no row may be removed")
			assert.Empty(t, pub.events)
		})
	}
}

func TestPurgeByAdmin(t *testing.T) {
	products := newFakeProducts(trashedProduct())
	s := newProductService(products, &fakePublisher{})

	require.NoError(t, s.Purge(context.Background(), admin, 10))
	assert.Empty(t, products.rows)

	// Purged is terminal.
	err := s.Purge(context.Background(), admin, 10)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTrashAndRestore(t *testing.T) {
	products := newFakeProducts(activeProduct())
	s := newProductService(products, &fakePublisher{})
	ctx := context.Background()

	err := s.Trash(ctx, otherSeller, 11)
	assert.Equal(t, "You can only delete your own products", err.Error())

	require.NoError(t, s.Trash(ctx, seller, 11))
	assert.Equal(t, model.ProductTrashed, products.rows[11].Status)
	assert.Equal(t, fixedNow, *products.rows[11].TrashedAt)

	err = s.Trash(ctx, seller, 11)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = s.Restore(ctx, otherSeller, 11)
	assert.Equal(t, "You can only restore your own products", err.Error())

	require.NoError(t, s.Restore(ctx, admin, 11))
	assert.Equal(t, model.ProductActive, products.rows[11].Status)
	assert.Nil(t, products.rows[11].TrashedAt)

	err = s.Restore(ctx, seller, 11)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	err = s.Trash(ctx, nil, 11)
	assert.Equal(t, "Authentication required", err.Error())
}

func TestCreateProduct(t *testing.T) {
	products := newFakeProducts()
	s := newProductService(products, &fakePublisher{})

	_, err := s.Create(context.Background(), buyer, CreateProductInput{Name: "Mug", PriceCents: 500})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = s.Create(context.Background(), seller, CreateProductInput{Name: " ", PriceCents: 0})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	fields := []string{}
	for _, is := range ae.Issues {
		fields = append(fields, is.Field)
	}
	assert.ElementsMatch(t, []string{"name", "priceCents"}, fields)

	prod, err := s.Create(context.Background(), seller, CreateProductInput{Name: "  Mug ", PriceCents: 500, Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, "Mug", prod.Name)
	assert.Equal(t, seller.ID, prod.SellerID)
	assert.Equal(t, model.ProductActive, prod.Status)
}

func TestGetHidesTrashedFromOthers(t *testing.T) {
	s := newProductService(newFakeProducts(trashedProduct()), &fakePublisher{})
	ctx := context.Background()

	_, err := s.Get(ctx, nil, 10)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = s.Get(ctx, otherSeller, 10)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	p, err := s.Get(ctx, seller, 10)
	require.NoError(t, err)
	assert.True(t, p.Trashed())
	_, err = s.Get(ctx, admin, 10)
	assert.NoError(t, err)
}

func TestListOwn(t *testing.T) {
	s := newProductService(newFakeProducts(trashedProduct(), activeProduct()), &fakePublisher{})
	ctx := context.Background()

	all, err := s.ListOwn(ctx, seller, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	trashed, err := s.ListOwn(ctx, seller, "TRASHED")
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, uint64(10), trashed[0].ID)

	_, err = s.ListOwn(ctx, seller, "deleted")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = s.ListOwn(ctx, buyer, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	public, err := s.ListPublic(ctx, 0, 500)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, uint64(11), public[0].ID)
}
