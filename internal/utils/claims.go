package utils

import (
	"errors"

	"ratesvc/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRateClaims extracts the caller's claims from the Fiber context.
func GetRateClaims(c *fiber.Ctx) (*models.RateClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.RateClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}
