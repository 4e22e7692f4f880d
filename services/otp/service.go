package otp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeValidity is how long an issued code stays usable, independent of the
// time-step size used to compute it.
const codeValidity = 10 * time.Minute

var ErrCodeGenerationFailed = errors.New("failed to generate one-time code")

// Service issues and verifies time-boxed one-time codes keyed by an
// identifier (email or phone number).
type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing OTP service",
			zap.Int("step_seconds", cfg.OTP.ExpirySeconds),
			zap.String("authentication_flag", cfg.OTP.AuthenticationFlag))
	}

	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

// Issue computes a fresh code for the identifier and persists it as the sole
// live code for that identifier, replacing any prior unconsumed code. The
// code is returned for out-of-band delivery.
func (s *Service) Issue(identifier string) (string, error) {
	code, err := s.generateCode(identifier, time.Now())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("one-time code generation failed",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
		return "", ErrCodeGenerationFailed
	}

	expiresAt := time.Now().Add(codeValidity)

	record := OneTimeCode{Identifier: identifier}
	if err := s.db.Where(OneTimeCode{Identifier: identifier}).
		FirstOrCreate(&record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to load one-time code record",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
		return "", fmt.Errorf("failed to load one-time code record: %w", err)
	}

	record.Code = code
	record.ExpiresAt = &expiresAt
	if err := s.db.Save(&record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store one-time code",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
		return "", fmt.Errorf("failed to store one-time code: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("one-time code issued",
			zap.String("identifier", identifier),
			zap.Time("expires_at", expiresAt))
	}

	return code, nil
}

// Verify fails closed: false when no record exists for the identifier, when
// the stored code does not exactly match, or when the expiry has passed. The
// comparison is inclusive of the expiry instant. Verification never deletes
// the record; callers purge it via Consume after the flow completes.
func (s *Service) Verify(identifier, code string) bool {
	var record OneTimeCode
	if err := s.db.Where("identifier = ?", identifier).First(&record).Error; err != nil {
		if s.logger != nil {
			s.logger.Warn("one-time code record not found",
				zap.String("identifier", identifier))
		}
		return false
	}

	now := time.Now()
	if record.Code == code && record.ExpiresAt != nil && !record.ExpiresAt.Before(now) {
		if s.logger != nil {
			s.logger.Info("one-time code verified",
				zap.String("identifier", identifier),
				zap.Timep("expires_at", record.ExpiresAt))
		}
		return true
	}

	if s.logger != nil {
		s.logger.Warn("one-time code verification failed",
			zap.String("identifier", identifier),
			zap.Timep("expires_at", record.ExpiresAt))
	}
	return false
}

// Consume deletes the live code for the identifier. Missing records are not
// an error.
func (s *Service) Consume(identifier string) error {
	result := s.db.Where("identifier = ?", identifier).Delete(&OneTimeCode{})
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to consume one-time code",
				zap.String("identifier", identifier),
				zap.Error(result.Error))
		}
		return fmt.Errorf("failed to consume one-time code: %w", result.Error)
	}

	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("one-time code consumed",
			zap.String("identifier", identifier))
	}

	return nil
}

// generateCode derives a per-issue secret from the identifier, the current
// timestamp and the process secret, base32-encodes it, and computes a
// time-step code with the configured step size.
func (s *Service) generateCode(identifier string, at time.Time) (string, error) {
	material := identifier + at.UTC().String() + s.config.JWT.SecretKey
	secret := base32.StdEncoding.EncodeToString([]byte(material))

	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    uint(s.config.OTP.ExpirySeconds),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
