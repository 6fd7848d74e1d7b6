package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/billing-service/internal/api/http/handlers"
	"github.com/spec-kit/billing-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Customers      *handlers.CustomersHandler
	Invoices       *handlers.InvoicesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Session checks are attached per route so
// unknown paths fall through to a plain 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireSession := cfg.AuthMiddleware.Handle

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", requireSession, cfg.Users.Logout)
	authGroup.Get("/session", requireSession, cfg.Users.Session)

	app.Post("/customer", requireSession, cfg.Customers.CreateCustomer)
	app.Get("/customer", requireSession, cfg.Customers.ListCustomers)

	app.Post("/invoice", requireSession, cfg.Invoices.CreateInvoice)
	app.Get("/invoice", requireSession, cfg.Invoices.ListInvoices)
	app.Patch("/invoice", requireSession, cfg.Invoices.UpdateInvoice)
}
