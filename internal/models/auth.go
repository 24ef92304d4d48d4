package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the only token type this service accepts.
const TokenTypeAccess = "access"

type TokenClaims struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
