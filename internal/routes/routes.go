// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"log/slog"

	"ratesvc/internal/config"
	"ratesvc/internal/handlers"
	"ratesvc/internal/middleware"
	"ratesvc/internal/models"
	"ratesvc/internal/services/rates"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the wired components the routes are served by.
type Dependencies struct {
	RatesService rates.Service
	HealthChecks map[string]handlers.HealthCheck
	Gatherer     prometheus.Gatherer
	Auth         config.AuthConfig
	Limiter      config.LimiterConfig
	Logger       *slog.Logger
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	ratesHandler := handlers.NewRatesHandler(deps.RatesService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, deps.Logger)

	app.Get("/health", healthHandler.Health)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	setupRatesRoutes(api, ratesHandler, authMiddleware, deps.Limiter)
}

func setupRatesRoutes(router fiber.Router, h *handlers.RatesHandler, auth *middleware.AuthMiddleware, lc config.LimiterConfig) {
	r := router.Group("/rates")

	// Public queries
	r.Get("/", h.GetPayments)
	r.Post("/deducted", evaluationLimiter(lc), h.DeductedFunds)

	// Writes are attributed to the token's address
	write := middleware.HasPermission(models.PermissionRatesWrite)
	r.Post("/", auth.Handler, write, h.Instantiate)
	r.Put("/", auth.Handler, write, h.UpdateRates)
	r.Put("/timestamp", auth.Handler, write, h.UpdateSaleTimestamp)
	r.Post("/execute", auth.Handler, write, h.Execute)
}

func evaluationLimiter(lc config.LimiterConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        lc.Max,
		Expiration: lc.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
