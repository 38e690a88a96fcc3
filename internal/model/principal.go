package model

// Role is one of the fixed account roles.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request. It is built by the
// JWT middleware and never modified afterwards.
type Principal struct {
	ID   uint64
	Role Role
}

// Is reports whether p is present and has role r.
func (p *Principal) Is(r Role) bool {
	return p != nil && p.Role == r
}
