package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tv-ad-booking/internal/middleware"
    "github.com/iliyamo/tv-ad-booking/internal/service"
)

// NotificationHandler serves the caller's own inbox.
type NotificationHandler struct {
    Fanout *service.Fanout
}

func NewNotificationHandler(f *service.Fanout) *NotificationHandler {
    return &NotificationHandler{Fanout: f}
}

func (h *NotificationHandler) List(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Fanout.ListFor(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    n, err := h.Fanout.UnreadCount(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    n, err := h.Fanout.MarkRead(c.Request().Context(), uid, c.Param("id"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
    uid, err := middleware.UserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Fanout.MarkAllRead(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"notifications": list})
}
