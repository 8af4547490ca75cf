package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/google/uuid"
    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and turns its claims into a domain.Caller:
//
//   sub   – user id (UUID), required
//   email – contact address, optional
//   role  – "ADMIN" grants administrator rights; anything else is a user
//
// The caller is available to handlers through CallerFrom and the raw role
// through c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                return []byte(secret), nil
            }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return unauthorized(c, "invalid claims")
            }

            sub, _ := claims["sub"].(string)
            id, err := uuid.Parse(sub)
            if err != nil {
                return unauthorized(c, "subject is not a valid user id")
            }
            role, _ := claims["role"].(string)
            if role == "" {
                role = domain.RoleUser
            }
            email, _ := claims["email"].(string)

            SetCaller(c, domain.Caller{UserID: id, Email: email, Admin: role == domain.RoleAdmin})
            c.Set("role", role)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
