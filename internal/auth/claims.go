package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carries the caller's identity. Refresh tokens have no role; it is
// read from the directory again on refresh.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

func (c Claims) User() User {
	return User{ID: c.UserID, Email: c.Email, Role: c.Role}
}
