package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cinema-booking-engine/internal/middleware" // JWT + role middlewares
)

// RegisterRoutes registers the health check.  db may be nil when the
// engine runs on the in-memory store.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers unauthenticated read endpoints.  planCache wraps
// the seat plan endpoint only; pass a pass-through middleware to disable it.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, planCache echo.MiddlewareFunc) {
	e.GET("/v1/halls/:id/plan", p.GetPlan, planCache)
	e.GET("/v1/sessions/:id", p.GetSession)
	e.GET("/v1/sessions/:id/tickets", p.ListTickets)
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(domain.RoleAdmin),
	)

	// ---- Catalog ----
	g.POST("/halls", a.CreateHall)
	g.PUT("/halls/:id/plan", a.UpdatePlan)
	g.POST("/films", a.CreateFilm)
	g.POST("/seat-categories", a.CreateCategory)
	g.PATCH("/seat-categories/:id", a.UpdateCategoryPrice)

	// ---- Sessions ----
	g.POST("/sessions", a.ScheduleSession)
	g.PUT("/sessions/:id", a.RescheduleSession)
	g.DELETE("/sessions/:id", a.DeleteSession)
}

// RegisterCustomer registers endpoints available to any authenticated
// user.  Ownership of tickets, purchases and payments is checked by the
// services, with administrators allowed everywhere.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(domain.RoleUser, domain.RoleAdmin),
	)

	g.POST("/tickets/:id/reserve", h.ReserveTicket)
	g.POST("/tickets/:id/cancel-reservation", h.CancelReservation)

	g.POST("/purchases", h.CreatePurchase)
	g.GET("/purchases", h.ListPurchases)
	g.GET("/purchases/:id", h.GetPurchase)
	g.POST("/purchases/:id/cancel", h.CancelPurchase)

	g.POST("/payments", h.Settle)
	g.GET("/payments/:id", h.GetPayment)
}
