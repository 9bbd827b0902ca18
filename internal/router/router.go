package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/iliyamo/talent-marketplace/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/talent-marketplace/internal/middleware" // JWT authentication, role enforcement and rate limiting
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes.  Register,
// login, refresh and logout live under /v1/auth and need no session;
// /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token and keeps the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Accepts a refresh token in the body or a bearer token; see Logout.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleClient, model.RoleTalent))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated talent browsing.
func RegisterPublic(e *echo.Echo, t *handler.TalentHandler) {
	e.GET("/v1/talents", t.ListTalents)
	e.GET("/v1/talents/:id", t.GetTalent)
}

// RegisterMarketplace registers bookings and message threads.  All of
// them require an access token; the mutating ones additionally pass
// through limiter (see middleware.NewTokenBucket).
func RegisterMarketplace(e *echo.Echo, b *handler.BookingHandler, m *handler.MessageHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleClient, model.RoleTalent))

	g.POST("/bookings", b.CreateBooking, limiter)
	g.GET("/my-bookings", b.ListMyBookings)

	g.GET("/threads/:peer_id/messages", m.ListThread)
	g.POST("/threads/:peer_id/messages", m.SendMessage, limiter)
}
