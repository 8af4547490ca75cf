package middleware

// identity.go stores and retrieves the authenticated domain.Caller on the
// Echo context.  JWTAuth writes it; handlers and the rate limiter read it.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
)

const callerKey = "caller"

// SetCaller stores the caller on the request context.
func SetCaller(c echo.Context, caller domain.Caller) {
    c.Set(callerKey, caller)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(c echo.Context) (domain.Caller, bool) {
    caller, ok := c.Get(callerKey).(domain.Caller)
    return caller, ok
}

// userID returns the caller's id for rate-limit keys, or "anon".
func userID(c echo.Context) string {
    if caller, ok := CallerFrom(c); ok {
        return caller.UserID.String()
    }
    return "anon"
}
