package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veritrack/veritrack-api/internal/config"
	"github.com/veritrack/veritrack-api/internal/handler"
	"github.com/veritrack/veritrack-api/internal/middleware"
	"github.com/veritrack/veritrack-api/internal/models"
	"github.com/veritrack/veritrack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RecordHandler   *handler.RecordHandler
	ReviewHandler   *handler.ReviewHandler
	DocumentHandler *handler.DocumentHandler
	AccountHandler  *handler.AccountHandler
	ExportHandler   *handler.ExportHandler
	AuditHandler    *handler.AuditHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.RecordHandler != nil {
		records := api.Group("/records", jwtMiddleware)
		records.Use(middleware.RateLimit("records", 30, time.Minute))
		deps.RecordHandler.Register(records)

		if deps.ReviewHandler != nil {
			// Guard the decision route only; group middleware on the same
			// prefix would also gate the student routes.
			deps.ReviewHandler.Register(records, middleware.RequireRole(models.RoleFaculty, models.RoleAdmin))
		}
	}

	if deps.DocumentHandler != nil {
		documents := api.Group("/documents", jwtMiddleware)
		deps.DocumentHandler.Register(documents)
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.AccountHandler != nil {
		deps.AccountHandler.Register(admin.Group("/accounts"))
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(admin.Group("/export"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(admin.Group("/audit"))
	}
}
