package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"ratesvc/internal/config"
	"ratesvc/internal/models"
	"ratesvc/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "rates-api"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	auth := NewAuthMiddleware(config.AuthConfig{JWTSecret: testSecret, Issuer: testIssuer}, nil)
	app.Post("/write", auth.Handler, HasPermission(models.PermissionRatesWrite), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("address").(string))
	})
	return app
}

func token(t *testing.T, role string) string {
	t.Helper()
	return tokenFrom(t, testIssuer, role)
}

func tokenFrom(t *testing.T, issuer, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(utils.TokenOptions{
		Secret:  testSecret,
		Issuer:  issuer,
		TTL:     time.Hour,
		Address: "owner",
		Role:    role,
	})
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc", fiber.StatusUnauthorized},
		{"read-only role", "Bearer " + token(t, "viewer"), fiber.StatusForbidden},
		{"operator", "Bearer " + token(t, models.RoleOperator), fiber.StatusOK},
		{"admin", "Bearer " + token(t, models.RoleAdmin), fiber.StatusOK},
		{"foreign issuer", "Bearer " + tokenFrom(t, "someone-else", models.RoleAdmin), fiber.StatusUnauthorized},
	}

	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/write", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
