package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/iliyamo/event-registration/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance.  Load balancers and monitoring systems use it to verify
// that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterEvents registers the administrative event CRUD endpoints and
// the public event browse endpoints under /api.  The optional cache
// middleware is applied to the GET endpoints only; mutations must
// always reach the database.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/api/events", h.List, cache)
		e.GET("/api/events/:eventId", h.Get, cache)
	} else {
		e.GET("/api/events", h.List)
		e.GET("/api/events/:eventId", h.Get)
	}
	e.POST("/api/events", h.Create)
	e.PUT("/api/events/:id", h.Update)
	e.DELETE("/api/events/:id", h.Delete)
}

// RegisterRegistrations registers the admission endpoint and the
// registration management endpoints.  The optional rate limiter guards
// the admission endpoint against bursts; the capacity and duplicate
// invariants hold regardless, it only spares the database.
func RegisterRegistrations(e *echo.Echo, h *handler.RegistrationHandler, limiter echo.MiddlewareFunc) {
	if limiter != nil {
		e.POST("/api/register", h.Register, limiter)
	} else {
		e.POST("/api/register", h.Register)
	}
	e.GET("/api/events/:id/registrations", h.ListByEvent)
	e.POST("/api/registrations/:id/resend", h.Resend)
	e.POST("/api/registrations/:id/checkin", h.CheckIn)
}
