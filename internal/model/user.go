package model

import "time"

// User represents an account record as stored in the `users` table.  The
// reset token columns are only populated between a forgot-password request
// and the reset that consumes it.
//
// Fields:
//
//	ID                  – primary key identifier of the user.
//	Name                – display name; shown as sellerName in revenue reports.
//	Email               – unique, lower-cased email address.
//	PasswordHash        – bcrypt hashed password.
//	Role                – buyer, seller or admin.
//	ResetTokenHash      – SHA-256 hex of the outstanding reset token (nullable).
//	ResetTokenExpiresAt – expiry of that token (nullable).
type User struct {
	ID                  uint64     // users.id
	Name                string     // users.name
	Email               string     // users.email
	PasswordHash        string     // users.password_hash
	Role                Role       // users.role
	ResetTokenHash      *string    // users.reset_token_hash
	ResetTokenExpiresAt *time.Time // users.reset_token_expires_at
	CreatedAt           time.Time  // users.created_at
	UpdatedAt           time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
