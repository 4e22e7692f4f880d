package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/middleware/auth"
	"github.com/spatium-offices/vms/services/ledger"
	"github.com/spatium-offices/vms/services/otp"
	"github.com/spatium-offices/vms/services/token"
	"github.com/spatium-offices/vms/services/user"
	"github.com/spatium-offices/vms/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authTestEnv struct {
	handler  *AuthHandler
	users    *user.Service
	otp      *otp.Service
	tokens   *token.Service
	notifier *testutils.MockNotifier
}

func setupAuthHandler(t *testing.T) *authTestEnv {
	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t,
		&user.Role{}, &user.User{},
		&otp.OneTimeCode{},
		&ledger.OutstandingAccessToken{}, &ledger.BlacklistedAccessToken{})

	otpSvc := otp.NewService(cfg, db, nil)
	ledgerSvc := ledger.NewService(db, nil)
	tokenSvc := token.NewService(cfg, ledgerSvc, nil)
	userSvc := user.NewService(cfg, db, otpSvc, tokenSvc, nil)

	notifier := &testutils.MockNotifier{}
	userSvc.SetNotifier(notifier)

	require.NoError(t, userSvc.Register(
		&user.User{Email: "member@test.com", PhoneNumber: "+911234567890"}, ""))

	return &authTestEnv{
		handler:  NewAuthHandler(userSvc, nil),
		users:    userSvc,
		otp:      otpSvc,
		tokens:   tokenSvc,
		notifier: notifier,
	}
}

func postJSON(handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler(c)
}

func TestAuthHandler_RequestOTP(t *testing.T) {
	env := setupAuthHandler(t)

	t.Run("sends a code to a known user", func(t *testing.T) {
		env.notifier.On("SendVerificationCode", "member@test.com", mock.AnythingOfType("string")).Return(nil)

		rec, err := postJSON(env.handler.RequestOTP, `{"identifier":"member@test.com"}`)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "OTP sent successfully!")
		env.notifier.AssertExpectations(t)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := postJSON(env.handler.RequestOTP, `{"identifier":"stranger@test.com"}`)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "No account found for the given identifier", httpErr.Message)
	})

	t.Run("missing identifier", func(t *testing.T) {
		_, err := postJSON(env.handler.RequestOTP, `{}`)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	env := setupAuthHandler(t)

	t.Run("valid code returns a token pair", func(t *testing.T) {
		code, err := env.otp.Issue("member@test.com")
		require.NoError(t, err)

		rec, err := postJSON(env.handler.VerifyOTP,
			`{"identifier":"member@test.com","otp":"`+code+`"}`)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var pair user.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.Equal(t, 1, pair.ExpiryDays)

		_, err = env.tokens.Validate(pair.Access)
		assert.NoError(t, err)
	})

	t.Run("wrong code", func(t *testing.T) {
		code, err := env.otp.Issue("member@test.com")
		require.NoError(t, err)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, err = postJSON(env.handler.VerifyOTP,
			`{"identifier":"member@test.com","otp":"`+wrong+`"}`)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "Invalid or expired verification code", httpErr.Message)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := setupAuthHandler(t)

	code, err := env.otp.Issue("member@test.com")
	require.NoError(t, err)
	pair, err := env.users.VerifyAndLogin("member@test.com", code)
	require.NoError(t, err)

	t.Run("rotates the pair and revokes the old access token", func(t *testing.T) {
		rec, err := postJSON(env.handler.Refresh, `{"refresh":"`+pair.Refresh+`"}`)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var fresh user.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))

		_, err = env.tokens.Validate(pair.Access)
		assert.ErrorIs(t, err, token.ErrTokenBlacklisted)
		_, err = env.tokens.Validate(fresh.Access)
		assert.NoError(t, err)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		_, err := postJSON(env.handler.Refresh, `{"refresh":"garbage"}`)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthHandler(t)

	code, err := env.otp.Issue("member@test.com")
	require.NoError(t, err)
	pair, err := env.users.VerifyAndLogin("member@test.com", code)
	require.NoError(t, err)

	claims, err := env.tokens.Validate(pair.Access)
	require.NoError(t, err)

	t.Run("revokes both tokens", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"refresh":"`+pair.Refresh+`"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(auth.ClaimsKey, claims)
		c.Set(auth.TokenKey, pair.Access)

		require.NoError(t, env.handler.Logout(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, err := env.tokens.Validate(pair.Access)
		assert.ErrorIs(t, err, token.ErrTokenBlacklisted)
		_, err = env.tokens.Validate(pair.Refresh)
		assert.ErrorIs(t, err, token.ErrTokenBlacklisted)
	})

	t.Run("anonymous logout", func(t *testing.T) {
		_, err := postJSON(env.handler.Logout, `{}`)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
