package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-automation/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-automation/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Events         *handlers.EventsHandler
	Rules          *handlers.RulesHandler
	Sla            *handlers.SlaHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	events := app.Group("/events", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	events.Post("/ticket-created", cfg.Events.TicketCreated)
	events.Post("/status-changed", cfg.Events.StatusChanged)
	events.Post("/first-response", cfg.Events.FirstResponse)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Get("/:id/sla", cfg.Sla.GetTicketSla)
	tickets.Get("/:id/audit", cfg.Rules.ListAudit)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/rules", cfg.Rules.CreateRule)
	admin.Get("/rules", cfg.Rules.ListRules)
	admin.Get("/rules/:id", cfg.Rules.GetRule)
	admin.Put("/rules/:id", cfg.Rules.UpdateRule)
	admin.Delete("/rules/:id", cfg.Rules.DeleteRule)

	admin.Get("/sla/policies", cfg.Sla.ListPolicies)
	admin.Put("/sla/policies", cfg.Sla.SavePolicy)
	admin.Get("/sla/schedule", cfg.Sla.GetSchedule)
	admin.Put("/sla/schedule", cfg.Sla.SaveSchedule)

	admin.Get("/tasks/failed", cfg.Rules.ListFailedTasks)
}
