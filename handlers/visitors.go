package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/middleware/auth"
	"github.com/spatium-offices/vms/services/idcard"
	"github.com/spatium-offices/vms/services/user"
	"github.com/spatium-offices/vms/services/visitor"
)

type VisitorHandler struct {
	visitors *visitor.Service
	cards    *idcard.Service
	users    *user.Service
	validate *validator.Validate
}

func NewVisitorHandler(visitors *visitor.Service, cards *idcard.Service, users *user.Service) *VisitorHandler {
	return &VisitorHandler{
		visitors: visitors,
		cards:    cards,
		users:    users,
		validate: validator.New(),
	}
}

type createVisitorRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=13"`
	Name        string `json:"name" validate:"required"`
	FromCompany string `json:"from_company"`
	CompanyID   *uint  `json:"company_id"`
	UserID      *uint  `json:"user_id"`
	PurposeID   *uint  `json:"purpose_id"`
}

type visitorListResponse struct {
	Count   int64             `json:"count"`
	Results []visitor.Visitor `json:"results"`
}

func (h *VisitorHandler) Create(c echo.Context) error {
	var req createVisitorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := visitor.Visitor{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Name:        req.Name,
		FromCompany: req.FromCompany,
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
		PurposeID:   req.PurposeID,
	}

	if err := h.visitors.Register(&v); err != nil {
		switch {
		case errors.Is(err, visitor.ErrNameRequired),
			errors.Is(err, visitor.ErrInvalidEmailFormat):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register visitor")
		}
	}

	return c.JSON(http.StatusCreated, v)
}

// List scopes non-admin callers to visitors of their own facility.
func (h *VisitorHandler) List(c echo.Context) error {
	caller, err := h.users.GetByID(auth.GetUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	// Only admins see the unscoped listing. Everyone else is bound to their
	// facility, even when they have none.
	var scope *visitor.Scope
	if caller.Role == nil || caller.Role.Name != user.RoleAdmin {
		scope = &visitor.Scope{FacilityID: caller.FacilityID}
	}

	limit, _ := strconv.Atoi(c.QueryParam("page_size"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	visitors, total, err := h.visitors.List(scope, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list visitors")
	}

	return c.JSON(http.StatusOK, visitorListResponse{Count: total, Results: visitors})
}

type qrCodeRequest struct {
	VisitorID uint `json:"visitor_id" validate:"required"`
}

// QRCode returns the visitor's identity-card QR as a PNG.
func (h *VisitorHandler) QRCode(c echo.Context) error {
	var req qrCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := h.cards.QRCodePNG(req.VisitorID)
	if err != nil {
		if errors.Is(err, visitor.ErrVisitorNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Visitor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate QR code")
	}

	return c.Blob(http.StatusOK, "image/png", data)
}

// IdentityCard renders the composed badge PNG for a visitor.
func (h *VisitorHandler) IdentityCard(c echo.Context) error {
	visitorID, err := strconv.ParseUint(c.QueryParam("visitor_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "visitor_id query parameter required")
	}

	data, err := h.cards.CardPNG(uint(visitorID))
	if err != nil {
		if errors.Is(err, visitor.ErrVisitorNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Visitor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render identity card")
	}

	return c.Blob(http.StatusOK, "image/png", data)
}

// EmailIdentityCard sends the card download link to the visitor's email.
func (h *VisitorHandler) EmailIdentityCard(c echo.Context) error {
	var req qrCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.cards.EmailCardLink(req.VisitorID); err != nil {
		switch {
		case errors.Is(err, visitor.ErrVisitorNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "Visitor not found")
		case errors.Is(err, visitor.ErrInvalidEmailFormat):
			return echo.NewHTTPError(http.StatusBadRequest, "Visitor has no email address")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to send identity card email")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Identity card email sent"})
}
