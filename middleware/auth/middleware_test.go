package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/services/ledger"
	"github.com/spatium-offices/vms/services/token"
	"github.com/spatium-offices/vms/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGate(t *testing.T) (*token.Service, *ledger.Service) {
	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t, &ledger.OutstandingAccessToken{}, &ledger.BlacklistedAccessToken{})
	ledgerSvc := ledger.NewService(db, nil)
	return token.NewService(cfg, ledgerSvc, nil), ledgerSvc
}

func runGate(tokenService *token.Service, authHeader string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Gate(tokenService)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestGate(t *testing.T) {
	tokenService, ledgerSvc := setupGate(t)

	pair, err := tokenService.Mint(42)
	require.NoError(t, err)

	t.Run("missing header passes through anonymously", func(t *testing.T) {
		c, err := runGate(tokenService, "")

		require.NoError(t, err)
		assert.EqualValues(t, 0, GetUserID(c))
		assert.Nil(t, GetClaims(c))
		assert.Empty(t, GetToken(c))
	})

	t.Run("valid bearer token", func(t *testing.T) {
		c, err := runGate(tokenService, "Bearer "+pair.Access)

		require.NoError(t, err)
		assert.EqualValues(t, 42, GetUserID(c))
		require.NotNil(t, GetClaims(c))
		assert.Equal(t, token.TypeAccess, GetClaims(c).TokenType)
		assert.Equal(t, pair.Access, GetToken(c))
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		_, err := runGate(tokenService, "Basic dXNlcjpwYXNz")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Invalid authorization header format", httpErr.Message)
	})

	t.Run("empty bearer token", func(t *testing.T) {
		_, err := runGate(tokenService, "Bearer ")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Bearer token required", httpErr.Message)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := runGate(tokenService, "Bearer not-a-jwt")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Malformed token", httpErr.Message)
	})

	t.Run("blacklisted token", func(t *testing.T) {
		require.True(t, ledgerSvc.BlacklistAllForUser(42))

		_, err := runGate(tokenService, "Bearer "+pair.Access)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Invalid token", httpErr.Message)
	})
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	handler := RequireAuth()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	t.Run("anonymous request is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		err := handler(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("authenticated request proceeds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(UserIDKey, uint(7))

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type stubRoleResolver struct {
	roles map[uint]string
}

func (s *stubRoleResolver) RoleNameFor(userID uint) (string, error) {
	role, ok := s.roles[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	resolver := &stubRoleResolver{roles: map[uint]string{
		1: "admin",
		2: "front_desk",
		3: "",
	}}

	handler := RequireRole(resolver, "admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(userID uint) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if userID != 0 {
			c.Set(UserIDKey, userID)
		}
		return handler(c)
	}

	t.Run("allowed role", func(t *testing.T) {
		assert.NoError(t, run(1))
	})

	t.Run("wrong role", func(t *testing.T) {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, run(2), &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("no role assigned", func(t *testing.T) {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, run(3), &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("unresolvable user", func(t *testing.T) {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, run(99), &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, run(0), &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
