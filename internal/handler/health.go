package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health returns a liveness handler.  With a non-nil db it also pings the
// database and answers 503 when it is unreachable.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "database unreachable"})
            }
        }
        return c.String(http.StatusOK, "ok")
    }
}
