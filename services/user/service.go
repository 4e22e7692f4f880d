package user

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/logging"
	"github.com/spatium-offices/vms/services/otp"
	"github.com/spatium-offices/vms/services/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email address already registered")
	ErrDuplicatePhone     = errors.New("phone number already registered")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrPasswordHashing    = errors.New("failed to hash password")
)

// Notifier delivers the verification code out-of-band.
type Notifier interface {
	SendVerificationCode(to, code string) error
}

// TokenPair is what the verification and refresh flows hand back to clients.
type TokenPair struct {
	Refresh    string `json:"refresh"`
	Access     string `json:"access"`
	ExpiryDays int    `json:"expiry_days"`
}

type Service struct {
	config   *config.Config
	db       *gorm.DB
	otp      *otp.Service
	tokens   *token.Service
	notifier Notifier
	logger   *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, otpSvc *otp.Service, tokenSvc *token.Service, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		otp:    otpSvc,
		tokens: tokenSvc,
		logger: logger,
	}
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Register creates a user after checking that neither the email nor the
// phone number is held by any existing row, archived or not.
func (s *Service) Register(u *User, password string) error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmailFormat
	}

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	if u.PhoneNumber != "" {
		if err := s.db.Model(&User{}).Where("phone_number = ?", u.PhoneNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check phone uniqueness: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePhone
		}
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("password hashing failed", zap.Error(err))
			}
			return ErrPasswordHashing
		}
		u.PasswordHash = string(hash)
	}

	if err := s.db.Create(u).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create user",
				zap.String("email", u.Email),
				zap.Error(err))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user registered",
			zap.Uint("user_id", u.ID),
			zap.String("email", u.Email))
	}

	return nil
}

func (s *Service) GetByID(id uint) (*User, error) {
	var u User
	err := s.db.Preload("Role").Preload("Company").Preload("Facility").First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *Service) GetByIdentifier(identifier string) (*User, error) {
	column := "email"
	if s.config.OTP.AuthenticationFlag == config.AuthFlagPhone {
		column = "phone_number"
	}

	var u User
	err := s.db.Where(column+" = ? AND is_archive = ?", identifier, false).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// RequestVerification issues a one-time code for the identifier and delivers
// it out-of-band. The identifier must belong to an active user.
func (s *Service) RequestVerification(identifier string) error {
	if s.config.OTP.AuthenticationFlag == config.AuthFlagEmail {
		if _, err := mail.ParseAddress(identifier); err != nil {
			return ErrInvalidEmailFormat
		}
	}

	u, err := s.GetByIdentifier(identifier)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(identifier)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendVerificationCode(u.Email, code); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to deliver verification code",
					zap.String("identifier", identifier),
					zap.Error(err))
			}
			return err
		}
	}

	return nil
}

// VerifyAndLogin verifies the presented code, consumes the OTP record so it
// cannot be replayed, and mints a token pair for the user.
func (s *Service) VerifyAndLogin(identifier, code string) (*TokenPair, error) {
	if !s.otp.Verify(identifier, code) {
		return nil, ErrInvalidCode
	}

	u, err := s.GetByIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	if err := s.otp.Consume(identifier); err != nil {
		return nil, err
	}

	pair, err := s.tokens.Mint(u.ID)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("user logged in via verification code",
			zap.Uint("user_id", u.ID))
	}

	return &TokenPair{
		Refresh:    pair.Refresh,
		Access:     pair.Access,
		ExpiryDays: s.tokens.AccessExpiryDays(),
	}, nil
}

// Refresh exchanges a refresh token for a new pair via the token service.
// The owning account must still exist and be active; an archived user's
// refresh token is dead even before its expiry.
func (s *Service) Refresh(oldRefreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Decode(oldRefreshToken)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&User{}).
		Where("id = ? AND is_archive = ?", claims.UserID, false).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if count == 0 {
		if s.logger != nil {
			s.logger.Warn("refresh rejected for missing or archived user",
				zap.Uint("user_id", claims.UserID))
		}
		return nil, ErrUserNotFound
	}

	pair, err := s.tokens.Refresh(oldRefreshToken)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Refresh:    pair.Refresh,
		Access:     pair.Access,
		ExpiryDays: s.tokens.AccessExpiryDays(),
	}, nil
}

// Logout revokes the presented access and refresh tokens.
func (s *Service) Logout(claims *token.Claims, accessToken, refreshToken string) error {
	return s.tokens.RevokeOnLogout(claims, accessToken, refreshToken)
}

// Archive soft-deletes a user; the email and phone stay reserved.
func (s *Service) Archive(id uint) error {
	result := s.db.Model(&User{}).Where("id = ?", id).Update("is_archive", true)
	if result.Error != nil {
		return fmt.Errorf("failed to archive user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	if s.logger != nil {
		s.logger.Info("user archived", zap.Uint("user_id", id))
	}

	return nil
}

// RoleNameFor returns the role name of an active user, or the empty string
// when no role is assigned.
func (s *Service) RoleNameFor(userID uint) (string, error) {
	var u User
	err := s.db.Preload("Role").
		Where("id = ? AND is_archive = ?", userID, false).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user role: %w", err)
	}

	if u.Role == nil {
		return "", nil
	}
	return u.Role.Name, nil
}

// SeedRoles inserts the fixed role set if missing.
func (s *Service) SeedRoles() error {
	roles := []Role{
		{Name: RoleAdmin, Priority: 0},
		{Name: RoleZoneManager, Priority: 1},
		{Name: RoleFacilityManager, Priority: 2},
		{Name: RoleFrontDesk, Priority: 3},
		{Name: RoleSpoc, Priority: 4},
	}

	for i := range roles {
		if err := s.db.Where(Role{Name: roles[i].Name}).
			FirstOrCreate(&roles[i]).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", roles[i].Name, err)
		}
	}

	return nil
}
