package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tv-ad-booking/internal/handler"
	"github.com/iliyamo/tv-ad-booking/internal/middleware"
	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers authentication routes.  Register, login, refresh
// and logout live under /v1/auth and need no session; /v1/me needs a
// valid access token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAdvertiser),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalogue.  cache wraps the
// list endpoints; pass a pass-through middleware to disable it.
func RegisterPublic(e *echo.Echo, s *handler.SlotHandler, cat *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/slots", s.ListAvailable, cache)
	e.GET("/v1/slots/:id", s.Get)
	e.GET("/v1/channels", cat.ListChannels, cache)
}

// RegisterNotifications registers inbox routes for any signed-in user.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1/notifications",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAdvertiser),
	)
	g.GET("", n.List)
	g.GET("/unread-count", n.UnreadCount)
	g.POST("/read-all", n.MarkAllRead)
	g.POST("/:id/read", n.MarkRead)
}
