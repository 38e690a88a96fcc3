package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
)

func TestAuthorize(t *testing.T) {
	buyer := &model.Principal{ID: 1, Role: model.RoleBuyer}
	seller := &model.Principal{ID: 2, Role: model.RoleSeller}
	otherSeller := &model.Principal{ID: 3, Role: model.RoleSeller}
	admin := &model.Principal{ID: 4, Role: model.RoleAdmin}
	owned := Resource{OwnerID: 2}

	tests := []struct {
		name   string
		p      *model.Principal
		action Action
		res    Resource
		want   apperr.Kind // empty means allowed
	}{
		{"buyer pays", buyer, CreatePayment, Resource{}, ""},
		{"seller cannot pay", seller, CreatePayment, Resource{}, apperr.KindForbidden},
		{"admin cannot pay", admin, CreatePayment, Resource{}, apperr.KindForbidden},
		{"anonymous pay", nil, CreatePayment, Resource{}, apperr.KindUnauthenticated},
		{"owner purges", seller, PurgeProduct, owned, ""},
		{"admin purges", admin, PurgeProduct, owned, ""},
		{"other seller purges", otherSeller, PurgeProduct, owned, apperr.KindForbidden},
		{"buyer purges", buyer, PurgeProduct, owned, apperr.KindForbidden},
		{"anonymous purge is forbidden", nil, PurgeProduct, owned, apperr.KindForbidden},
		{"zero owner never matches", &model.Principal{ID: 0, Role: model.RoleSeller}, TrashProduct, Resource{}, apperr.KindForbidden},
		{"seller creates product", seller, CreateProduct, Resource{}, ""},
		{"buyer creates product", buyer, CreateProduct, Resource{}, apperr.KindForbidden},
		{"seller own revenue", seller, ViewOwnRevenue, Resource{}, ""},
		{"admin own revenue", admin, ViewOwnRevenue, Resource{}, apperr.KindForbidden},
		{"admin platform revenue", admin, ViewAllRevenue, Resource{}, ""},
		{"seller platform revenue", seller, ViewAllRevenue, Resource{}, apperr.KindForbidden},
		{"seller lists own products", seller, ListOwnProducts, Resource{}, ""},
		{"buyer lists own orders", buyer, ListOwnOrders, Resource{}, ""},
		{"seller lists orders", seller, ListOwnOrders, Resource{}, apperr.KindForbidden},
		{"unknown action", admin, Action("nope"), Resource{}, apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.action, tt.res)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestDenialMessages(t *testing.T) {
	err := Authorize(&model.Principal{ID: 9, Role: model.RoleSeller}, CreatePayment, Resource{})
	assert.EqualError(t, err, "Only buyers can make payments")

	err = Authorize(nil, PurgeProduct, Resource{OwnerID: 1})
	assert.EqualError(t, err, "Authentication required")
}

func TestAuthenticated(t *testing.T) {
	assert.NoError(t, Authenticated(&model.Principal{ID: 1}, PurgeProduct))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(Authenticated(nil, PurgeProduct)))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(Authenticated(nil, CreatePayment)))
}
