package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/services/token"
)

const (
	UserIDKey = "_auth_user_id"
	ClaimsKey = "_auth_claims"
	TokenKey  = "_auth_token"
)

// Gate validates a presented bearer token against signature, expiry and the
// blacklist ledger. A missing Authorization header is not an error: the
// request proceeds anonymously and the authorization layer decides. Any
// present-but-invalid token fails the request.
func Gate(tokenService *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Bearer token required")
			}

			claims, err := tokenService.Validate(tokenString)
			if err != nil {
				switch err {
				case token.ErrExpiredToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				case token.ErrMalformedToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Malformed token")
				case token.ErrInvalidSignature:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
				}
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)
			c.Set(TokenKey, tokenString)

			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests. It expects Gate to have run first.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUserID(c) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

func GetUserID(c echo.Context) uint {
	if userID, ok := c.Get(UserIDKey).(uint); ok {
		return userID
	}
	return 0
}

func GetClaims(c echo.Context) *token.Claims {
	if claims, ok := c.Get(ClaimsKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

func GetToken(c echo.Context) string {
	if tokenString, ok := c.Get(TokenKey).(string); ok {
		return tokenString
	}
	return ""
}
