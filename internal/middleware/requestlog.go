package middleware

import (
    "log/slog"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/tv-ad-booking/internal/logging"
)

// RequestLogger attaches a request-scoped slog logger (with request_id) to
// the request context and logs one line per completed request.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
    if base == nil {
        base = slog.Default()
    }
    attach := func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            rid := c.Request().Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, rid)
            reqLogger := base.With("request_id", rid)
            ctx := logging.ContextWithLogger(c.Request().Context(), reqLogger)
            c.SetRequest(c.Request().WithContext(ctx))
            return next(c)
        }
    }
    logLine := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogStatus:   true,
        LogURI:      true,
        LogMethod:   true,
        LogLatency:  true,
        LogRemoteIP: true,
        LogError:    true,
        HandleError: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            logger := logging.FromContext(c.Request().Context())
            if logger == nil {
                logger = base
            }
            attrs := []any{
                "method", v.Method,
                "uri", v.URI,
                "status", v.Status,
                "latency_ms", v.Latency.Milliseconds(),
                "remote_ip", v.RemoteIP,
            }
            if v.Error != nil {
                logger.Error("request failed", append(attrs, "error", v.Error.Error())...)
                return nil
            }
            logger.Info("request", attrs...)
            return nil
        },
    })
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return attach(logLine(next))
    }
}
