package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// UserIDHeader carries the caller identity set by the trusted gateway.
	UserIDHeader = "x-user-id"
	// UserIDKey is the echo context key holding the resolved identity.
	UserIDKey = "userID"
)

// HeaderIdentity trusts the gateway-supplied x-user-id header. A missing header
// is left for the handler to reject so every operation reports it the same way.
func HeaderIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := strings.TrimSpace(c.Request().Header.Get(UserIDHeader)); id != "" {
				c.Set(UserIDKey, id)
			}
			return next(c)
		}
	}
}

// UserID returns the identity resolved by one of the identity middlewares.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

func bearerToken(c echo.Context) (string, bool) {
	parts := strings.Split(c.Request().Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
