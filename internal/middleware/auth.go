package middleware

import (
	"errors"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/handlers"
	"finance-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	// ClientContextKey holds the token subject of an authenticated request
	ClientContextKey = "client"
	// TokenIDContextKey holds the jti of the presented token
	TokenIDContextKey = "token_jti"
)

// RequireAuth creates a middleware that requires a valid bearer token issued
// by tokenService
func RequireAuth(tokenService services.TokenServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, apierrors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateToken(token)
			if err != nil {
				if errors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, apierrors.AuthExpiredToken)
				}
				return handlers.SendError(c, apierrors.AuthInvalidTokenFormat)
			}

			c.Set(ClientContextKey, claims.Subject)
			c.Set(TokenIDContextKey, claims.ID)

			return next(c)
		}
	}
}

// GetClient returns the authenticated client name, or "" on open routes
func GetClient(c echo.Context) string {
	client, _ := c.Get(ClientContextKey).(string)
	return client
}
