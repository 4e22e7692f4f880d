package visitor

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/spatium-offices/vms/services/logging"
	"github.com/spatium-offices/vms/services/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVisitorNotFound    = errors.New("visitor not found")
	ErrNameRequired       = errors.New("name field cannot be empty")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// Notifier alerts the host that a visitor has arrived.
type Notifier interface {
	SendVisitorWaiting(to, visitorName, fromCompany string) error
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Register records a visitor and, when a host user is attached, emails the
// host that the visitor is waiting. A notification failure is the caller's
// problem to surface; the visitor row is kept either way.
func (s *Service) Register(v *Visitor) error {
	if v.Name == "" {
		return ErrNameRequired
	}
	if v.Email != "" {
		if _, err := mail.ParseAddress(v.Email); err != nil {
			return ErrInvalidEmailFormat
		}
	}

	if err := s.db.Create(v).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to register visitor",
				zap.String("name", v.Name),
				zap.Error(err))
		}
		return fmt.Errorf("failed to register visitor: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("visitor registered",
			zap.Uint("visitor_id", v.ID),
			zap.String("name", v.Name))
	}

	if v.UserID != nil && s.notifier != nil {
		var host user.User
		if err := s.db.First(&host, *v.UserID).Error; err == nil {
			if err := s.notifier.SendVisitorWaiting(host.Email, v.Name, v.FromCompany); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Service) Get(id uint) (*Visitor, error) {
	var v Visitor
	err := s.db.Preload("Company").Preload("User").Preload("Purpose").First(&v, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, fmt.Errorf("failed to load visitor: %w", err)
	}
	return &v, nil
}

// Scope restricts a listing to one facility. A scope with a nil FacilityID
// matches only visitors whose company has no facility assigned.
type Scope struct {
	FacilityID *uint
}

// List returns visitors newest-first. A nil scope is unrestricted and is
// reserved for admin callers; everyone else is scoped to their facility,
// including callers with no facility at all.
func (s *Service) List(scope *Scope, limit, offset int) ([]Visitor, int64, error) {
	query := s.db.Model(&Visitor{})
	if scope != nil {
		query = query.Joins("JOIN companies ON companies.id = visitors.company_id")
		if scope.FacilityID != nil {
			query = query.Where("companies.facility_id = ?", *scope.FacilityID)
		} else {
			query = query.Where("companies.facility_id IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count visitors: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}

	var visitors []Visitor
	err := query.Preload("Company").Preload("User").Preload("Purpose").
		Order("visitors.id DESC").
		Limit(limit).Offset(offset).
		Find(&visitors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visitors: %w", err)
	}

	return visitors, total, nil
}
