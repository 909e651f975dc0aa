package middleware

import (
	"context"
	"strings"

	"MentorDesk/internal/principal"

	"github.com/labstack/echo/v4"
)

// SessionResolver verifies a raw token and loads the admin behind it.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (*principal.Principal, error)
}

// tokenFrom prefers the session cookie over the Authorization header.
func tokenFrom(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// JWT authenticates the request and stores the principal for handlers.
func JWT(resolver SessionResolver, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c, cookieName)
			if raw == "" {
				return principal.ErrNotAuthenticated
			}
			p, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			principal.Set(c, p)
			return next(c)
		}
	}
}
