package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims carried by a local API bearer token
type TokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}
