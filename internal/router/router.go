package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dzakyhdr/learntrack-api/internal/config"
	"github.com/dzakyhdr/learntrack-api/internal/handler"
	"github.com/dzakyhdr/learntrack-api/internal/middleware"
	"github.com/dzakyhdr/learntrack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB            *gorm.DB
	AuthHandler   *handler.AuthHandler
	GoalHandler   *handler.GoalHandler
	LessonHandler *handler.LessonHandler
	UserHandler   *handler.UserHandler
	AIHandler     *handler.AIHandler
	VideoHandler  *handler.VideoHandler
	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
	}

	if deps.GoalHandler != nil {
		goals := api.Group("/goals", jwtMiddleware)
		deps.GoalHandler.Register(goals)
	}

	if deps.LessonHandler != nil {
		lessons := api.Group("/lessons", jwtMiddleware)
		deps.LessonHandler.Register(lessons)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.AIHandler != nil {
		// Generation endpoints are expensive upstream calls, so they get a
		// tighter per-user budget than the rest of the API.
		ai := api.Group("/ai", jwtMiddleware, middleware.RateLimit("ai", 20, time.Minute))
		deps.AIHandler.Register(ai)
	}

	if deps.VideoHandler != nil {
		videos := api.Group("/videos", jwtMiddleware, middleware.RateLimit("videos", 60, time.Minute))
		deps.VideoHandler.Register(videos)
	}
}
