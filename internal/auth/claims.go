package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const TokenTypeAccess TokenType = "access"

// Claims are the only supported JWT claims shape for this service.
// Subject identifies the operator; Role is checked by internal/rbac.
type Claims struct {
	jwt.RegisteredClaims

	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
