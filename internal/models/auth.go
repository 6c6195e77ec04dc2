package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as asserted by a session token
type Identity struct {
	UserID string
	Email  string
}

// TokenClaims is the signed claim set carried by a session token
type TokenClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
