package directory

import (
	"errors"
	"fmt"

	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("directory record not found")
	ErrDuplicateSpoc   = errors.New("company SPOC email or phone number already registered")
	ErrNameRequired    = errors.New("name field cannot be empty")
	ErrAlreadyArchived = errors.New("record is already archived")
)

// Service owns the company/facility/zone/city/state/purpose tables.
type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

func (s *Service) CreateCompany(company *Company) error {
	if company.Name == "" {
		return ErrNameRequired
	}

	// SPOC contact uniqueness is absolute: archived companies still hold
	// their email and phone.
	var count int64
	err := s.db.Model(&Company{}).
		Where("spoc_email = ? OR (spoc_phone_number <> '' AND spoc_phone_number = ?)",
			company.SpocEmail, company.SpocPhoneNumber).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check SPOC uniqueness: %w", err)
	}
	if count > 0 {
		return ErrDuplicateSpoc
	}

	if err := s.db.Create(company).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create company",
				zap.String("name", company.Name),
				zap.Error(err))
		}
		return fmt.Errorf("failed to create company: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("company created",
			zap.Uint("company_id", company.ID),
			zap.String("name", company.Name))
	}

	return nil
}

func (s *Service) GetCompany(id uint) (*Company, error) {
	var company Company
	err := s.db.Preload("Facility").First(&company, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return &company, nil
}

// ListCompanies returns non-archived companies, optionally scoped to one
// facility.
func (s *Service) ListCompanies(facilityID *uint) ([]Company, error) {
	query := s.db.Where("is_archive = ?", false).Order("id DESC")
	if facilityID != nil {
		query = query.Where("facility_id = ?", *facilityID)
	}

	var companies []Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// ArchiveCompany soft-deletes: the row keeps enforcing SPOC uniqueness.
func (s *Service) ArchiveCompany(id uint) error {
	company, err := s.GetCompany(id)
	if err != nil {
		return err
	}
	if company.IsArchive {
		return ErrAlreadyArchived
	}

	if err := s.db.Model(company).Update("is_archive", true).Error; err != nil {
		return fmt.Errorf("failed to archive company: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("company archived", zap.Uint("company_id", id))
	}

	return nil
}

func (s *Service) CreateFacility(facility *Facility) error {
	if facility.Name == "" {
		return ErrNameRequired
	}

	if err := s.db.Create(facility).Error; err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (s *Service) ListFacilities() ([]Facility, error) {
	var facilities []Facility
	err := s.db.Where("is_archive = ?", false).
		Preload("City").Preload("Zone").
		Order("id DESC").
		Find(&facilities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return facilities, nil
}

func (s *Service) CreatePurpose(purpose *PurposeOfVisit) error {
	if purpose.Name == "" {
		return ErrNameRequired
	}

	if err := s.db.Create(purpose).Error; err != nil {
		return fmt.Errorf("failed to create purpose of visit: %w", err)
	}
	return nil
}

func (s *Service) ListPurposes() ([]PurposeOfVisit, error) {
	var purposes []PurposeOfVisit
	if err := s.db.Where("is_archive = ?", false).Find(&purposes).Error; err != nil {
		return nil, fmt.Errorf("failed to list purposes of visit: %w", err)
	}
	return purposes, nil
}

func (s *Service) CreateZone(zone *Zone) error {
	if zone.Name == "" {
		return ErrNameRequired
	}
	if err := s.db.Create(zone).Error; err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}
	return nil
}

func (s *Service) ListZones() ([]Zone, error) {
	var zones []Zone
	err := s.db.Where("is_archive = ?", false).Preload("City").Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, nil
}

func (s *Service) CreateCity(city *City) error {
	if city.Name == "" {
		return ErrNameRequired
	}
	if err := s.db.Create(city).Error; err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

func (s *Service) CreateState(state *State) error {
	if state.Name == "" {
		return ErrNameRequired
	}
	if err := s.db.Create(state).Error; err != nil {
		return fmt.Errorf("failed to create state: %w", err)
	}
	return nil
}
