package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-interpret-api/internal/config"
	"github.com/noah-isme/gema-interpret-api/internal/handler"
	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentFormHandler *handler.AssignmentFormHandler
	AssignmentHandler     *handler.AssignmentHandler
	SubmissionHandler     *handler.SubmissionHandler
	HealthProbes          map[string]handler.HealthProbe
	JWTMiddleware         fiber.Handler
	InstructorMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := orNext(deps.JWTMiddleware)
	instructorOnly := orNext(deps.InstructorMiddleware)

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.AssignmentFormHandler != nil {
		deps.AssignmentFormHandler.Register(v2.Group("/assignment-forms", instructorOnly))
	}

	if deps.AssignmentHandler != nil {
		assignments := v2.Group("/assignments")
		deps.AssignmentHandler.Register(assignments)
		deps.AssignmentHandler.RegisterWrites(assignments.Group("", instructorOnly))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(v2.Group("/submissions"))
	}
}

func orNext(h fiber.Handler) fiber.Handler {
	if h != nil {
		return h
	}
	return func(c *fiber.Ctx) error { return c.Next() }
}
