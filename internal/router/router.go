package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quizforge/quiz-api/internal/config"
	"github.com/quizforge/quiz-api/internal/handler"
	"github.com/quizforge/quiz-api/internal/middleware"
	"github.com/quizforge/quiz-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProblemHandler    *handler.ProblemHandler
	SubmissionHandler *handler.SubmissionHandler
	JWTMiddleware     fiber.Handler
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

	if deps.ProblemHandler != nil {
		problems := api.Group("/problems", jwtMiddleware)
		deps.ProblemHandler.Register(problems)

		admin := api.Group("/admin/problems", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ProblemHandler.RegisterAdmin(admin)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterProblemRoutes(problems, middleware.RateLimit("submit", 10, time.Minute))
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}
}
