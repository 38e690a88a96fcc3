// Package policy decides whether a principal may perform an action on a
// resource. Every guarded mutation and report asks Authorize before it
// touches the store or the payment gateway.
package policy

import (
	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// Action names an operation subject to authorization.
type Action string

const (
	CreatePayment   Action = "payment:create"
	CreateProduct   Action = "product:create"
	ListOwnProducts Action = "product:list_own"
	TrashProduct    Action = "product:trash"
	RestoreProduct  Action = "product:restore"
	PurgeProduct    Action = "product:purge"
	CreateOrder     Action = "order:create"
	ListOwnOrders   Action = "order:list_own"
	ViewOwnRevenue  Action = "revenue:own"
	ViewAllRevenue  Action = "revenue:platform"
)

// Resource carries the attributes rules look at. OwnerID is zero for
// actions that do not target an owned record.
type Resource struct {
	OwnerID uint64
}

type rule struct {
	// anonymous is returned when there is no principal at all.
	anonymous *apperr.Error
	allow     func(p *model.Principal, r Resource) bool
	denied    *apperr.Error
}

func roleIs(role model.Role) func(*model.Principal, Resource) bool {
	return func(p *model.Principal, _ Resource) bool { return p.Role == role }
}

func adminOrOwner(p *model.Principal, r Resource) bool {
	return p.Role == model.RoleAdmin || (r.OwnerID != 0 && p.ID == r.OwnerID)
}

var rules = map[Action]rule{
	CreatePayment: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleBuyer),
		denied:    apperr.Forbidden("Only buyers can make payments"),
	},
	CreateOrder: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleBuyer),
		denied:    apperr.Forbidden("Only buyers can place orders"),
	},
	CreateProduct: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleSeller),
		denied:    apperr.Forbidden("Only sellers can create products"),
	},
	ListOwnProducts: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleSeller),
		denied:    apperr.Forbidden("User must have seller role"),
	},
	ListOwnOrders: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleBuyer),
		denied:    apperr.Forbidden("Only buyers have orders"),
	},
	TrashProduct: {
		anonymous: apperr.Forbidden("Authentication required"),
		allow:     adminOrOwner,
		denied:    apperr.Forbidden("You can only delete your own products"),
	},
	RestoreProduct: {
		anonymous: apperr.Forbidden("Authentication required"),
		allow:     adminOrOwner,
		denied:    apperr.Forbidden("You can only restore your own products"),
	},
	PurgeProduct: {
		anonymous: apperr.Forbidden("Authentication required"),
		allow:     adminOrOwner,
		denied:    apperr.Forbidden("You can only delete your own products"),
	},
	ViewOwnRevenue: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleSeller),
		denied:    apperr.Forbidden("User must have seller role"),
	},
	ViewAllRevenue: {
		anonymous: apperr.Unauthenticated("Unauthorized"),
		allow:     roleIs(model.RoleAdmin),
		denied:    apperr.Forbidden("User does not have admin privileges"),
	},
}

// Authorize returns nil when p may perform a on r. Unknown actions are
// always denied.
func Authorize(p *model.Principal, a Action, r Resource) error {
	ru, ok := rules[a]
	if !ok {
		return apperr.Forbidden("forbidden")
	}
	if p == nil {
		return ru.anonymous
	}
	if !ru.allow(p, r) {
		return ru.denied
	}
	return nil
}

// Authenticated returns the anonymous error for a when p is nil. Handlers
// that must check presence before loading the resource use it.
func Authenticated(p *model.Principal, a Action) error {
	if p != nil {
		return nil
	}
	if ru, ok := rules[a]; ok {
		return ru.anonymous
	}
	return apperr.Unauthenticated("Unauthorized")
}
