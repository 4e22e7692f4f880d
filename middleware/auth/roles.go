package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleResolver reports the role name of an active user.
type RoleResolver interface {
	RoleNameFor(userID uint) (string, error)
}

// RequireRole rejects callers whose role is not in the allowed set. It
// expects Gate and RequireAuth to have run first; an unresolved identity is
// rejected the same way.
func RequireRole(resolver RoleResolver, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			role, err := resolver.RoleNameFor(userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}

			return next(c)
		}
	}
}
