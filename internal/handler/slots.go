package handler

import (
    "context"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tv-ad-booking/internal/logging"
    "github.com/iliyamo/tv-ad-booking/internal/middleware"
    "github.com/iliyamo/tv-ad-booking/internal/service"
)

// Purger drops cached slot listings after a change.
type Purger interface {
    Purge(ctx context.Context) error
}

// SlotHandler serves the public slot catalogue and the admin slot pages.
type SlotHandler struct {
    Inventory *service.Inventory
    Cache     Purger
}

func NewSlotHandler(inv *service.Inventory, cache Purger) *SlotHandler {
    if inv == nil {
        panic("nil inventory passed to NewSlotHandler")
    }
    return &SlotHandler{Inventory: inv, Cache: cache}
}

type slotReq struct {
    Title            string    `json:"title" validate:"required,max=200"`
    Description      string    `json:"description" validate:"max=4000"`
    ChannelID        string    `json:"channel_id" validate:"omitempty,uuid"`
    ChannelName      string    `json:"channel_name" validate:"required_without=ChannelID,max=120"`
    StartTime        time.Time `json:"start_time" validate:"required"`
    EndTime          time.Time `json:"end_time" validate:"required"`
    DurationSeconds  int       `json:"duration_seconds" validate:"required"`
    PriceCents       int64     `json:"price_cents" validate:"required"`
    EstimatedViewers int64     `json:"estimated_viewers"`
}

func (r slotReq) input() service.SlotInput {
    return service.SlotInput{
        Title:            r.Title,
        Description:      r.Description,
        ChannelID:        r.ChannelID,
        ChannelName:      r.ChannelName,
        StartTime:        r.StartTime,
        EndTime:          r.EndTime,
        DurationSeconds:  r.DurationSeconds,
        PriceCents:       r.PriceCents,
        EstimatedViewers: r.EstimatedViewers,
    }
}

func (h *SlotHandler) purge(c echo.Context) {
    purgeSlotCache(c, h.Cache)
}

// purgeSlotCache is best effort; a stale cache entry expires on its own TTL.
func purgeSlotCache(c echo.Context, p Purger) {
    if p == nil {
        return
    }
    ctx := c.Request().Context()
    if err := p.Purge(ctx); err != nil {
        logger := logging.FromContext(ctx)
        if logger == nil {
            logger = slog.Default()
        }
        logger.Warn("slot cache purge failed", "path", c.Path(), "error", err, "error_kind", service.ErrorKind(err))
    }
}

// ListAvailable handles GET /v1/slots.
func (h *SlotHandler) ListAvailable(c echo.Context) error {
    list, err := h.Inventory.ListAvailable(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slots": list})
}

// Get handles GET /v1/slots/:id.
func (h *SlotHandler) Get(c echo.Context) error {
    slot, err := h.Inventory.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, slot)
}

// ListAll handles GET /v1/admin/slots.
func (h *SlotHandler) ListAll(c echo.Context) error {
    list, err := h.Inventory.ListAll(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slots": list})
}

// Create handles POST /v1/admin/slots.
func (h *SlotHandler) Create(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req slotReq
    if err := bind(c, &req); err != nil {
        return respondError(c, err)
    }
    slot, err := h.Inventory.Create(c.Request().Context(), req.input(), uid)
    if err != nil {
        return respondError(c, err)
    }
    h.purge(c)
    return c.JSON(http.StatusCreated, slot)
}

// Update handles PUT /v1/admin/slots/:id.
func (h *SlotHandler) Update(c echo.Context) error {
    var req slotReq
    if err := bind(c, &req); err != nil {
        return respondError(c, err)
    }
    slot, err := h.Inventory.Update(c.Request().Context(), c.Param("id"), req.input())
    if err != nil {
        return respondError(c, err)
    }
    h.purge(c)
    return c.JSON(http.StatusOK, slot)
}

// Delete handles DELETE /v1/admin/slots/:id.
func (h *SlotHandler) Delete(c echo.Context) error {
    if err := h.Inventory.Delete(c.Request().Context(), c.Param("id")); err != nil {
        return respondError(c, err)
    }
    h.purge(c)
    return c.NoContent(http.StatusNoContent)
}
