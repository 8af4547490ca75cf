package handler // handler defines http handlers

import (
    "errors"   // errors.Is classifies domain error kinds
    "net/http" // HTTP status codes
    "strconv"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4" // echo defines request context types
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
    "github.com/iliyamo/cinema-booking-engine/internal/middleware"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind error) int {
    switch kind {
    case domain.ErrNotFound:
        return http.StatusNotFound
    case domain.ErrInvalidState, domain.ErrSchedulingConflict:
        return http.StatusConflict
    case domain.ErrForbidden:
        return http.StatusForbidden
    case domain.ErrValidation:
        return http.StatusBadRequest
    }
    return http.StatusInternalServerError
}

// errUnauthenticated is returned by callerOf when no caller is attached.
var errUnauthenticated = errors.New("authentication required")

// writeError renders err as {"error": kind, "message": msg}.  Errors that
// carry no domain kind are logged and hidden behind a generic 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
    if errors.Is(err, errUnauthenticated) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": err.Error()})
    }
    kind := domain.KindOf(err)
    if kind == nil {
        log.Error("request failed",
            zap.String("method", c.Request().Method),
            zap.String("path", c.Request().URL.Path),
            zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "internal server error"})
    }
    msg := err.Error()
    var de *domain.Error
    if errors.As(err, &de) {
        msg = de.Message
    }
    return c.JSON(statusFor(kind), echo.Map{"error": kind.Error(), "message": msg})
}

// pathID parses the named path parameter as a UUID.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
    id, err := uuid.Parse(c.Param(name))
    if err != nil {
        return uuid.Nil, domain.Validation("invalid %s %q: must be a UUID", name, c.Param(name))
    }
    return id, nil
}

// callerOf returns the authenticated caller stored by the JWT middleware.
func callerOf(c echo.Context) (domain.Caller, error) {
    caller, ok := middleware.CallerFrom(c)
    if !ok {
        return domain.Caller{}, errUnauthenticated
    }
    return caller, nil
}

// indexToRowLabel converts a zero-based index to an alphabetical row label
// like A, B, ..., Z, AA.
func indexToRowLabel(i int) string {
    if i < 0 {
        return ""
    }
    var res []rune
    for {
        res = append(res, rune('A'+i%26))
        i = i/26 - 1
        if i < 0 {
            break
        }
    }
    for l, r := 0, len(res)-1; l < r; l, r = l+1, r-1 {
        res[l], res[r] = res[r], res[l]
    }
    return string(res)
}

// seatLabel renders row 1 number 7 as "A7".
func seatLabel(row, number int) string {
    return indexToRowLabel(row-1) + strconv.Itoa(number)
}

func errMissingField(name string) error {
    return domain.Validation("%s is required", name)
}
