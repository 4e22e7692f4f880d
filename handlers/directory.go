package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spatium-offices/vms/services/directory"
)

type DirectoryHandler struct {
	directory *directory.Service
	validate  *validator.Validate
}

func NewDirectoryHandler(dir *directory.Service) *DirectoryHandler {
	return &DirectoryHandler{
		directory: dir,
		validate:  validator.New(),
	}
}

type createCompanyRequest struct {
	Name            string `json:"name" validate:"required"`
	Address         string `json:"address"`
	SpocName        string `json:"spoc_name"`
	SpocEmail       string `json:"spoc_email" validate:"required,email"`
	SpocPhoneNumber string `json:"spoc_phone_number" validate:"omitempty,max=13"`
	GSTIN           string `json:"gstin"`
	FacilityID      *uint  `json:"facility_id"`
}

func (h *DirectoryHandler) CreateCompany(c echo.Context) error {
	var req createCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	company := directory.Company{
		Name:            req.Name,
		Address:         req.Address,
		SpocName:        req.SpocName,
		SpocEmail:       req.SpocEmail,
		SpocPhoneNumber: req.SpocPhoneNumber,
		GSTIN:           req.GSTIN,
		FacilityID:      req.FacilityID,
	}

	if err := h.directory.CreateCompany(&company); err != nil {
		return mapDirectoryError(err)
	}

	return c.JSON(http.StatusCreated, company)
}

func (h *DirectoryHandler) ListCompanies(c echo.Context) error {
	var facilityID *uint
	if raw := c.QueryParam("facility_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid facility_id")
		}
		id := uint(parsed)
		facilityID = &id
	}

	companies, err := h.directory.ListCompanies(facilityID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list companies")
	}

	return c.JSON(http.StatusOK, companies)
}

func (h *DirectoryHandler) ArchiveCompany(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid company id")
	}

	if err := h.directory.ArchiveCompany(uint(id)); err != nil {
		return mapDirectoryError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

type createNamedRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *DirectoryHandler) CreateFacility(c echo.Context) error {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Address string `json:"address"`
		CityID  *uint  `json:"city_id"`
		ZoneID  *uint  `json:"zone_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	facility := directory.Facility{
		Name:    req.Name,
		Address: req.Address,
		CityID:  req.CityID,
		ZoneID:  req.ZoneID,
	}
	if err := h.directory.CreateFacility(&facility); err != nil {
		return mapDirectoryError(err)
	}

	return c.JSON(http.StatusCreated, facility)
}

func (h *DirectoryHandler) ListFacilities(c echo.Context) error {
	facilities, err := h.directory.ListFacilities()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list facilities")
	}
	return c.JSON(http.StatusOK, facilities)
}

func (h *DirectoryHandler) CreatePurpose(c echo.Context) error {
	var req createNamedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	purpose := directory.PurposeOfVisit{Name: req.Name}
	if err := h.directory.CreatePurpose(&purpose); err != nil {
		return mapDirectoryError(err)
	}

	return c.JSON(http.StatusCreated, purpose)
}

func (h *DirectoryHandler) ListPurposes(c echo.Context) error {
	purposes, err := h.directory.ListPurposes()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list purposes of visit")
	}
	return c.JSON(http.StatusOK, purposes)
}

func mapDirectoryError(err error) error {
	switch {
	case errors.Is(err, directory.ErrNameRequired),
		errors.Is(err, directory.ErrDuplicateSpoc),
		errors.Is(err, directory.ErrAlreadyArchived),
		errors.Is(err, directory.ErrNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
