package entity

import "time"

// Role constants for User. A user's role is fixed at creation.
const (
	RoleMSME   = "msme"
	RoleAdmin  = "admin"
	RoleLender = "lender"
	RoleBuyer  = "buyer"
)

var validRoles = map[string]bool{
	RoleMSME:   true,
	RoleAdmin:  true,
	RoleLender: true,
	RoleBuyer:  true,
}

// IsValidRole returns true if role is one of the four platform roles.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// User represents an authenticated platform identity.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the verified identity attached to every request after
// token verification.
type Principal struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
