// Package middleware provides HTTP middleware components for the application.
// It includes authentication and permission checks for the fiber web framework.
package middleware

import (
	"log/slog"
	"strings"

	"ratesvc/internal/config"
	"ratesvc/internal/models"
	"ratesvc/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware handles JWT token validation. The token's address becomes the
// sender of every write the request performs.
type AuthMiddleware struct {
	secret string
	issuer string
	log    *slog.Logger
}

func NewAuthMiddleware(cfg config.AuthConfig, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{
		secret: cfg.JWTSecret,
		issuer: cfg.Issuer,
		log:    log,
	}
}

// Handler validates the bearer token and stores its claims in the request
// context.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(m.secret, m.issuer, tokenString)
	if err != nil {
		m.log.Debug("token validation failed", "error", err, "ip", c.IP())
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.Address == "" {
		return utils.Unauthorized(c, "invalid claims")
	}

	c.Locals("claims", claims)
	c.Locals("address", claims.Address)

	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.RateClaims)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}

		// Admins hold every permission
		if claims.Role == models.RoleAdmin {
			return c.Next()
		}

		if claims.HasPermission(permission) {
			return c.Next()
		}

		return utils.Forbidden(c, "Insufficient permissions")
	}
}
