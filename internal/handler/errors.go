package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tv-ad-booking/internal/logging"
    "github.com/iliyamo/tv-ad-booking/internal/service"
)

// respondError maps service errors onto HTTP responses.
func respondError(c echo.Context, err error) error {
    var vErr *service.ValidationError
    switch {
    case errors.As(err, &vErr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": vErr.FieldErrors})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, service.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrSlotUnavailable), errors.Is(err, service.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, service.ErrTransient):
        c.Response().Header().Set("Retry-After", "1")
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": service.ErrTransient.Error()})
    }
    if logger := logging.FromContext(c.Request().Context()); logger != nil {
        logger.Error("unhandled error", "path", c.Path(), "error", err)
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
