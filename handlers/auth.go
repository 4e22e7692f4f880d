package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"github.com/spatium-offices/vms/middleware/auth"
	"github.com/spatium-offices/vms/services/logging"
	"github.com/spatium-offices/vms/services/token"
	"github.com/spatium-offices/vms/services/user"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *user.Service
	validate *validator.Validate
	logger   *logging.Service
}

func NewAuthHandler(users *user.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: validator.New(),
		logger:   logger,
	}
}

type verifyRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	OTP        string `json:"otp" validate:"required,min=4,max=10"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// RequestOTP issues and delivers a verification code for the identifier.
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.RequestVerification(req.Identifier); err != nil {
		return mapUserError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent successfully!"})
}

// VerifyOTP verifies the code and hands back a token pair.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.users.VerifyAndLogin(req.Identifier, req.OTP)
	if err != nil {
		return mapUserError(err)
	}

	h.logDevice(c, "login")

	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.users.Refresh(req.Refresh)
	if err != nil {
		return mapUserError(err)
	}

	h.logDevice(c, "refresh")

	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the current access token and the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.users.Logout(claims, auth.GetToken(c), req.Refresh); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log out")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) logDevice(c echo.Context, action string) {
	if h.logger == nil {
		return
	}

	ua := useragent.Parse(c.Request().Header.Get("User-Agent"))
	h.logger.Info("token issuance",
		zap.String("action", action),
		zap.String("ip", c.RealIP()),
		zap.String("browser", ua.Name),
		zap.String("os", ua.OS),
		zap.Bool("mobile", ua.Mobile))
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, user.ErrInvalidEmailFormat),
		errors.Is(err, user.ErrDuplicateEmail),
		errors.Is(err, user.ErrDuplicatePhone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "No account found for the given identifier")
	case errors.Is(err, user.ErrInvalidCode):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired verification code")
	case errors.Is(err, token.ErrExpiredToken),
		errors.Is(err, token.ErrMalformedToken),
		errors.Is(err, token.ErrInvalidSignature),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrTokenBlacklisted):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
