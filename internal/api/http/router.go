package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/poll-service/internal/api/http/handlers"
	"github.com/spec-kit/poll-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Polls   *handlers.PollsHandler
	Session *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Session.LoadIdentity)

	app.Get("/register", cfg.Session.RequireGuest, cfg.Auth.RegisterForm)
	app.Post("/register", cfg.Session.RequireGuest, cfg.Auth.Register)
	app.Get("/login", cfg.Session.RequireGuest, cfg.Auth.LoginForm)
	app.Post("/login", cfg.Session.RequireGuest, cfg.Auth.Login)
	app.Post("/logout", cfg.Auth.Logout)

	app.Get("/", cfg.Polls.List)

	polls := app.Group("/polls")
	polls.Get("/", cfg.Polls.List)
	polls.Get("/new", cfg.Session.RequireAuthenticated, cfg.Polls.NewForm)
	polls.Post("/", cfg.Session.RequireAuthenticated, cfg.Polls.Create)
	// short link before the :id wildcard so "mine" never matches as an id
	polls.Get("/mine/list", cfg.Session.RequireAuthenticated, cfg.Polls.MineList)
	polls.Get("/mine", cfg.Session.RequireAuthenticated, cfg.Polls.Mine)
	polls.Get("/:id", cfg.Polls.Show)
	polls.Post("/:id/vote", cfg.Polls.Vote)
	polls.Post("/:id/options", cfg.Session.RequireAuthenticated, cfg.Polls.AddOption)
	polls.Post("/:id/delete", cfg.Session.RequireAuthenticated, cfg.Polls.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not found")
	})
}
