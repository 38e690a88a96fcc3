// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between different failure scenarios without inspecting
// driver errors. Conditional writes report state mismatches through
// them.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an address already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidResetToken is returned when no user holds an unexpired reset
// token with the given hash. Unknown and expired tokens are not told apart.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ErrProductNotTrashed is returned when a purge targets a product that is
// not (or no longer) in the trash.
var ErrProductNotTrashed = errors.New("product not trashed")

// ErrProductNotActive is returned when trashing or ordering a product that
// is not active.
var ErrProductNotActive = errors.New("product not active")

// ErrInsufficientStock is returned when an order asks for more units than
// a product has left.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrOrderNotPending is returned when paying for an order that is already
// paid or cancelled.
var ErrOrderNotPending = errors.New("order not pending")
