package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tv-ad-booking/internal/middleware"
	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/service"
)

// BookingHandler exposes the ledger: advertisers submit and list their
// bookings, administrators review and decide them.
type BookingHandler struct {
	Ledger  *service.Ledger
	Catalog *service.Catalog
	Cache   Purger
}

func NewBookingHandler(l *service.Ledger, cat *service.Catalog, cache Purger) *BookingHandler {
	if l == nil {
		panic("nil ledger passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Catalog: cat, Cache: cache}
}

type submitReq struct {
	AdID          string `json:"ad_id" validate:"omitempty,uuid"`
	AdTitle       string `json:"ad_title" validate:"required,max=200"`
	AdDescription string `json:"ad_description" validate:"max=4000"`
}

type decisionReq struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

func (h *BookingHandler) purge(c echo.Context) {
	purgeSlotCache(c, h.Cache)
}

// Submit handles POST /v1/slots/:id/bookings.
func (h *BookingHandler) Submit(c echo.Context) error {
	uid, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	in := service.SubmitBookingInput{
		SlotID:         c.Param("id"),
		AdvertiserID:   uid,
		AdvertiserName: middleware.DisplayName(c),
		AdTitle:        req.AdTitle,
		AdDescription:  req.AdDescription,
	}
	if req.AdID != "" {
		// An attached creative must belong to the caller.
		if h.Catalog == nil {
			return respondError(c, &service.ValidationError{FieldErrors: map[string]string{"ad_id": "creatives are not enabled"}})
		}
		if _, err := h.Catalog.OwnedAd(ctx, req.AdID, uid); err != nil {
			return respondError(c, err)
		}
		adID := req.AdID
		in.AdID = &adID
	}
	b, err := h.Ledger.SubmitBooking(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, b)
}

// ListMine handles GET /v1/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Ledger.ListByAdvertiser(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// List handles GET /v1/admin/bookings with an optional ?status= filter.
func (h *BookingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		list []model.Booking
		err  error
	)
	if st := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); st != "" {
		list, err = h.Ledger.ListByStatus(ctx, model.BookingStatus(st))
	} else {
		list, err = h.Ledger.ListAll(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// Get handles GET /v1/admin/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Ledger.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Decide handles POST /v1/admin/bookings/:id/decision.
func (h *BookingHandler) Decide(c echo.Context) error {
	var req decisionReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	b, err := h.Ledger.Decide(c.Request().Context(), c.Param("id"), model.BookingStatus(req.Decision))
	if err != nil {
		return respondError(c, err)
	}
	if b.Status == model.BookingRejected {
		h.purge(c)
	}
	return c.JSON(http.StatusOK, b)
}

// Complete handles POST /v1/admin/bookings/:id/complete.
func (h *BookingHandler) Complete(c echo.Context) error {
	b, err := h.Ledger.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Summary handles GET /v1/admin/summary.
func (h *BookingHandler) Summary(c echo.Context) error {
	s, err := h.Ledger.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
