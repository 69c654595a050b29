package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spybee/helpdesk/internal/api/http/handlers"
	"github.com/spybee/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	Admin           *handlers.AdminHandler
	Dashboard       *handlers.DashboardHandler
	AdminMiddleware *auth.AdminMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Public, requester-facing endpoints.
	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/reference/:reference", cfg.Tickets.GetTicketByReference)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)
	admin.Post("/register", cfg.Admin.Register)

	protected := admin.Group("", cfg.AdminMiddleware.Handle)
	protected.Get("/tickets", cfg.Admin.ListTickets)
	protected.Get("/tickets/:id", cfg.Admin.GetTicket)
	protected.Post("/tickets/:id/comments", cfg.Admin.AddComment)
	protected.Get("/stats", cfg.Admin.Stats)
	protected.Get("/notifications", cfg.Admin.Notifications)

	sessions := protected.Group("/dashboard/sessions")
	sessions.Post("", cfg.Dashboard.OpenSession)
	sessions.Delete("/:session", cfg.Dashboard.CloseSession)
	sessions.Get("/:session/board", cfg.Dashboard.Board)
	sessions.Post("/:session/refresh", cfg.Dashboard.Refresh)
	sessions.Post("/:session/drop", cfg.Dashboard.Drop)
	sessions.Post("/:session/status", cfg.Dashboard.ChangeStatus)
}
