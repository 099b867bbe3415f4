package model

import "time"

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin      = "ADMIN"
	RoleAdvertiser = "ADVERTISER"
)

// User represents an application user record as stored in the
// `users` table.  Name is the display name shown on bookings and
// notifications; Company is optional.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or ADVERTISER.
//  IsActive     – whether the account may log in.
type User struct {
	ID           uint64
	Email        string
	Name         string
	Company      string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName falls back to the email when no name was given.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
