package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AsadUlm/brainburst-progress-api/internal/config"
	"github.com/AsadUlm/brainburst-progress-api/internal/handler"
	"github.com/AsadUlm/brainburst-progress-api/internal/middleware"
	"github.com/AsadUlm/brainburst-progress-api/internal/observability"
	"github.com/AsadUlm/brainburst-progress-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	ProgressHandler   *handler.ProgressHandler
	SummaryHandler    *handler.SummaryHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
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

	// Assignment lifecycle, teacher dashboards and per-student progress
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)

		if deps.SummaryHandler != nil {
			deps.SummaryHandler.Register(assignments)
		}

		if deps.ProgressHandler != nil {
			// Transition endpoints get a per-user limiter on top of auth.
			transitions := api.Group("/assignments", jwtMiddleware,
				middleware.RateLimit("progress", 30, time.Minute))
			deps.ProgressHandler.Register(transitions)
		}
	}

	// Class rollups, restricted to authenticated callers with a known role
	classes := api.Group("/classes", jwtMiddleware,
		middleware.RequireRole(service.RoleTeacher, service.RoleStudent, service.RoleSystem))
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.RegisterClassRoutes(classes)
	}
	if deps.SummaryHandler != nil {
		deps.SummaryHandler.RegisterClassRoutes(classes)
	}
}
