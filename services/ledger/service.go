package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrTokenNotFound = errors.New("outstanding token not found")

// Service is the durable record of every issued access token and every
// token that has been invalidated.
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

// RecordOutstanding inserts an outstanding row for a freshly minted access
// token. Idempotent on jti: a second call with the same jti returns the
// existing row untouched.
func (s *Service) RecordOutstanding(userID *uint, jti, token string, issuedAt, expiresAt time.Time) (*OutstandingAccessToken, error) {
	outstanding := OutstandingAccessToken{
		UserID:    userID,
		JTI:       jti,
		Token:     token,
		CreatedAt: issuedAt,
		ExpiresAt: expiresAt,
	}

	err := s.db.Where(OutstandingAccessToken{JTI: jti}).
		Attrs(outstanding).
		FirstOrCreate(&outstanding).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to record outstanding token",
				zap.String("jti", jti),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to record outstanding token: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("outstanding token recorded",
			zap.String("jti", jti),
			zap.Time("expires_at", expiresAt))
	}

	return &outstanding, nil
}

// Blacklist marks an outstanding token as revoked. Idempotent: blacklisting
// the same token twice leaves exactly one marker.
func (s *Service) Blacklist(outstanding *OutstandingAccessToken) error {
	marker := BlacklistedAccessToken{TokenID: outstanding.ID}

	err := s.db.Where(BlacklistedAccessToken{TokenID: outstanding.ID}).
		FirstOrCreate(&marker).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to blacklist token",
				zap.String("jti", outstanding.JTI),
				zap.Error(err))
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("token blacklisted",
			zap.String("jti", outstanding.JTI),
			zap.Time("blacklisted_at", marker.BlacklistedAt))
	}

	return nil
}

// BlacklistByJTI records the token as outstanding if it is not already (the
// logout path may see a token minted before the ledger existed) and then
// blacklists it.
func (s *Service) BlacklistByJTI(userID *uint, jti, token string, expiresAt time.Time) error {
	outstanding, err := s.RecordOutstanding(userID, jti, token, time.Now(), expiresAt)
	if err != nil {
		return err
	}
	return s.Blacklist(outstanding)
}

// IsBlacklisted reports whether an outstanding token with the given jti has
// a blacklist marker.
func (s *Service) IsBlacklisted(jti string) (bool, error) {
	var count int64
	err := s.db.Model(&BlacklistedAccessToken{}).
		Joins("JOIN outstanding_access_tokens ON outstanding_access_tokens.id = blacklisted_access_tokens.token_id").
		Where("outstanding_access_tokens.jti = ?", jti).
		Count(&count).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to check blacklist status",
				zap.String("jti", jti),
				zap.Error(err))
		}
		return false, fmt.Errorf("failed to check blacklist status: %w", err)
	}

	return count > 0, nil
}

// IsTokenStringBlacklisted reports whether the exact token string is already
// recorded outstanding and blacklisted. The issuer consults this before
// accepting a freshly generated token.
func (s *Service) IsTokenStringBlacklisted(token string) (bool, error) {
	var outstanding OutstandingAccessToken
	err := s.db.Where("token = ?", token).First(&outstanding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up token: %w", err)
	}

	var count int64
	err = s.db.Model(&BlacklistedAccessToken{}).
		Where("token_id = ?", outstanding.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist marker: %w", err)
	}

	return count > 0, nil
}

// BlacklistAllForUser blacklists every outstanding access token belonging to
// the user. The whole sweep runs in one transaction so a failure leaves no
// partially blacklisted set. Returns false on any failure.
func (s *Service) BlacklistAllForUser(userID uint) bool {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var outstanding []OutstandingAccessToken
		if err := tx.Where("user_id = ?", userID).Find(&outstanding).Error; err != nil {
			return err
		}

		for _, token := range outstanding {
			marker := BlacklistedAccessToken{TokenID: token.ID}
			if err := tx.Where(BlacklistedAccessToken{TokenID: token.ID}).
				FirstOrCreate(&marker).Error; err != nil {
				return err
			}
		}

		if s.logger != nil {
			s.logger.Info("blacklisted all user tokens",
				zap.Uint("user_id", userID),
				zap.Int("token_count", len(outstanding)))
		}

		return nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to blacklist all user tokens",
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
		return false
	}

	return true
}

// OutstandingForUser returns every outstanding token row for the user.
func (s *Service) OutstandingForUser(userID uint) ([]OutstandingAccessToken, error) {
	var tokens []OutstandingAccessToken
	if err := s.db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list outstanding tokens: %w", err)
	}
	return tokens, nil
}

// CleanupExpired deletes outstanding rows (and their markers via cascade)
// whose expiry has passed. Expired tokens fail signature validation anyway,
// so this only bounds table growth.
func (s *Service) CleanupExpired() error {
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var expiredIDs []uint
		if err := tx.Model(&OutstandingAccessToken{}).
			Where("expires_at < ?", now).
			Pluck("id", &expiredIDs).Error; err != nil {
			return err
		}

		if len(expiredIDs) == 0 {
			return nil
		}

		if err := tx.Where("token_id IN ?", expiredIDs).
			Delete(&BlacklistedAccessToken{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", expiredIDs).Delete(&OutstandingAccessToken{})
		if result.Error != nil {
			return result.Error
		}

		if s.logger != nil && result.RowsAffected > 0 {
			s.logger.Info("cleaned up expired ledger rows",
				zap.Int64("count", result.RowsAffected))
		}

		return nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("ledger cleanup failed", zap.Error(err))
		}
		return fmt.Errorf("ledger cleanup failed: %w", err)
	}

	return nil
}

// StartCleanupWorker periodically removes expired ledger rows.
func (s *Service) StartCleanupWorker(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := s.CleanupExpired(); err != nil && s.logger != nil {
				s.logger.Error("ledger cleanup worker failed", zap.Error(err))
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info("started ledger cleanup worker",
			zap.Duration("interval", interval))
	}
}
