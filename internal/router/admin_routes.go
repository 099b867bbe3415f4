package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tv-ad-booking/internal/handler"
	"github.com/iliyamo/tv-ad-booking/internal/middleware"
	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// RegisterAdmin registers administrator endpoints under /v1/admin: slot
// management, booking review and the dashboard summary.
func RegisterAdmin(e *echo.Echo, s *handler.SlotHandler, b *handler.BookingHandler, cat *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/slots", s.ListAll)
	g.POST("/slots", s.Create)
	g.PUT("/slots/:id", s.Update)
	g.DELETE("/slots/:id", s.Delete)

	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/decision", b.Decide)
	g.POST("/bookings/:id/complete", b.Complete)

	g.POST("/channels", cat.CreateChannel)
	g.GET("/summary", b.Summary)
}
