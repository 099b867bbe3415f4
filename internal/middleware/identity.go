package middleware

// Accessors for the identity JWTAuth stores in the Echo context.

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

var errNoIdentity = errors.New("invalid user_id in context")

// UserID returns the authenticated user's ID.
func UserID(c echo.Context) (uint64, error) {
    switch t := c.Get(CtxUserID).(type) {
    case uint64:
        if t > 0 {
            return t, nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
            return n, nil
        }
    }
    return 0, errNoIdentity
}

// Role returns the authenticated user's role, or "" for guests.
func Role(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}

// DisplayName returns the name carried in the token.
func DisplayName(c echo.Context) string {
    n, _ := c.Get(CtxName).(string)
    return n
}

// rateIdentity keys the rate limiter; guests share "anon".
func rateIdentity(c echo.Context) string {
    if id, err := UserID(c); err == nil {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
