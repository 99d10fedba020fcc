// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/sahmex/identity/app/dto"
	"github.com/sahmex/identity/app/services"
)

// Locals keys set by the authentication middleware
const (
	LocalsAccountID   = "account_id"
	LocalsAccountType = "account_type"
	LocalsTokenID     = "token_id"
	LocalsTokenClaims = "token_claims"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			var errorCode string
			var message string

			if errors.Is(err, services.ErrTokenExpired) {
				errorCode = "TOKEN_EXPIRED"
				message = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenMalformed) {
				errorCode = "TOKEN_MALFORMED"
				message = "Malformed access token"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				errorCode = "TOKEN_INVALID"
				message = "Invalid access token"
			} else {
				errorCode = "TOKEN_VALIDATION_FAILED"
				message = "Token validation failed"
			}

			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: errorCode,
				},
			})
		}

		// Store identity information in context for downstream handlers
		c.Locals(LocalsAccountID, claims.AccountID)
		c.Locals(LocalsAccountType, claims.AccountType)
		c.Locals(LocalsTokenID, claims.TokenID)
		c.Locals(LocalsTokenClaims, claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// RequireAccountType restricts an endpoint to accounts of the given type.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireAccountType(accountType string) fiber.Handler {
	return func(c fiber.Ctx) error {
		claimed, ok := c.Locals(LocalsAccountType).(string)
		if !ok || claimed != accountType {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Insufficient permissions for this resource",
				Error: dto.ErrorDetail{
					Code: "FORBIDDEN_ACCOUNT_TYPE",
				},
			})
		}
		return c.Next()
	}
}

// AccountIDFromContext extracts the authenticated account ID set by Authenticate
func AccountIDFromContext(c fiber.Ctx) (uint, bool) {
	accountID, ok := c.Locals(LocalsAccountID).(uint)
	return accountID, ok
}

// ClaimsFromContext extracts the full token claims set by Authenticate
func ClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(LocalsTokenClaims).(*services.TokenClaims)
	return claims, ok
}
