package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the application role carried in user metadata and tokens.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Valid reports whether the role is one the system accepts.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// AuthUser is the opaque user record returned by the authentication
// collaborator. The application never stores a password of its own.
type AuthUser struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// JWTClaims is the payload of the application-signed access token.
type JWTClaims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginRequest is the payload for POST /auth/login. Username may be a short
// alias or a full email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
