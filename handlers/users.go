package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/middleware/auth"
	"github.com/spatium-offices/vms/services/user"
)

type UserHandler struct {
	users    *user.Service
	validate *validator.Validate
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

type registerUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=13"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password" validate:"omitempty,min=8"`
	RoleID      *uint  `json:"role_id"`
	CompanyID   *uint  `json:"company_id"`
	FacilityID  *uint  `json:"facility_id"`
	ZoneID      *uint  `json:"zone_id"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u := user.User{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		RoleID:      req.RoleID,
		CompanyID:   req.CompanyID,
		FacilityID:  req.FacilityID,
		ZoneID:      req.ZoneID,
	}

	if err := h.users.Register(&u, req.Password); err != nil {
		return mapUserError(err)
	}

	return c.JSON(http.StatusCreated, u)
}

// Me returns the authenticated caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.users.GetByID(auth.GetUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Archive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	if err := h.users.Archive(uint(id)); err != nil {
		return mapUserError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
