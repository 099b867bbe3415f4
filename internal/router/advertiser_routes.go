package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tv-ad-booking/internal/handler"
	"github.com/iliyamo/tv-ad-booking/internal/middleware"
	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// RegisterAdvertiser registers advertiser-scoped endpoints under /v1.  All
// routes require a valid JWT and the ADVERTISER role.  Advertisers request
// slots, follow their bookings and register creatives.
func RegisterAdvertiser(e *echo.Echo, b *handler.BookingHandler, cat *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdvertiser),
	)
	g.POST("/slots/:id/bookings", b.Submit)
	g.GET("/my-bookings", b.ListMine)
	g.POST("/ads", cat.CreateAd)
	g.GET("/my-ads", cat.ListMyAds)
}
