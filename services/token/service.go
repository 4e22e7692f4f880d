package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/ledger"
	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenBlacklisted = errors.New("token is blacklisted")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

// Ledger is the durable outstanding/blacklist record the issuer and the
// authentication gate consult.
type Ledger interface {
	RecordOutstanding(userID *uint, jti, token string, issuedAt, expiresAt time.Time) (*ledger.OutstandingAccessToken, error)
	BlacklistByJTI(userID *uint, jti, token string, expiresAt time.Time) error
	IsBlacklisted(jti string) (bool, error)
	IsTokenStringBlacklisted(token string) (bool, error)
	BlacklistAllForUser(userID uint) bool
}

// Pair is a freshly minted refresh/access token pair.
type Pair struct {
	Refresh string
	Access  string
}

type Service struct {
	config *config.Config
	ledger Ledger
	logger *logging.Service
}

func NewService(cfg *config.Config, ledger Ledger, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		ledger: ledger,
		logger: logger,
	}
}

// AccessExpiryDays is the informational expiry surfaced to clients alongside
// issued token pairs.
func (s *Service) AccessExpiryDays() int {
	return s.config.JWT.TokenExpiryDays
}

func (s *Service) generate(userID uint, tokenType string, expiry time.Duration) (string, *Claims, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{s.config.JWT.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign token",
				zap.String("token_type", tokenType),
				zap.Error(err))
		}
		return "", nil, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return signed, claims, nil
}

// Mint produces a refresh/access pair for the user and records the access
// token in the outstanding ledger. A generated access token that collides
// with an already blacklisted token string is discarded and regenerated;
// with uuid JTIs in the claims a collision is vanishingly unlikely, but the
// ledger check is still performed on every mint.
func (s *Service) Mint(userID uint) (*Pair, error) {
	refresh, _, err := s.generate(userID, TypeRefresh, s.config.JWT.RefreshExpiry)
	if err != nil {
		return nil, err
	}

	var access string
	var claims *Claims
	for {
		access, claims, err = s.generate(userID, TypeAccess, s.config.JWT.AccessExpiry)
		if err != nil {
			return nil, err
		}

		blacklisted, err := s.ledger.IsTokenStringBlacklisted(access)
		if err != nil {
			return nil, fmt.Errorf("failed to check token collision: %w", err)
		}
		if !blacklisted {
			break
		}

		if s.logger != nil {
			s.logger.Warn("generated access token collides with a blacklisted token, regenerating",
				zap.Uint("user_id", userID))
		}
	}

	owner := userID
	_, err = s.ledger.RecordOutstanding(&owner, claims.JTI, access,
		claims.IssuedAt.Time, claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("token pair minted",
			zap.Uint("user_id", userID),
			zap.String("jti", claims.JTI))
	}

	return &Pair{Refresh: refresh, Access: access}, nil
}

// Refresh exchanges a valid refresh token for a new pair. Every access token
// previously outstanding for the owning user is blacklisted, not only the
// one paired with the presented refresh token. When rotation and
// blacklist-after-rotation are both enabled, the old refresh token itself is
// blacklisted best-effort; a failure there never blocks issuance.
func (s *Service) Refresh(oldRefreshToken string) (*Pair, error) {
	claims, err := s.Decode(oldRefreshToken)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("refresh rejected", zap.Error(err))
		}
		return nil, err
	}

	// An access token must never be exchangeable for a new pair.
	if claims.TokenType != TypeRefresh {
		if s.logger != nil {
			s.logger.Warn("refresh rejected: wrong token type",
				zap.Uint("user_id", claims.UserID),
				zap.String("token_type", claims.TokenType))
		}
		return nil, ErrInvalidToken
	}

	if ok := s.ledger.BlacklistAllForUser(claims.UserID); !ok && s.logger != nil {
		s.logger.Error("failed to blacklist outstanding tokens during refresh",
			zap.Uint("user_id", claims.UserID))
	}

	pair, err := s.Mint(claims.UserID)
	if err != nil {
		return nil, err
	}

	if s.config.JWT.RotateRefreshTokens && s.config.JWT.BlacklistAfterRotation {
		owner := claims.UserID
		if err := s.ledger.BlacklistByJTI(&owner, claims.JTI, oldRefreshToken,
			claims.ExpiresAt.Time); err != nil && s.logger != nil {
			s.logger.Warn("failed to blacklist rotated refresh token",
				zap.Uint("user_id", claims.UserID),
				zap.Error(err))
		}
	}

	return pair, nil
}

// RevokeOnLogout blacklists the presented access token and, best-effort, the
// paired refresh token.
func (s *Service) RevokeOnLogout(accessClaims *Claims, accessToken, refreshToken string) error {
	owner := accessClaims.UserID
	if err := s.ledger.BlacklistByJTI(&owner, accessClaims.JTI, accessToken,
		accessClaims.ExpiresAt.Time); err != nil {
		return err
	}

	if refreshToken != "" {
		if refreshClaims, err := s.Decode(refreshToken); err == nil {
			if err := s.ledger.BlacklistByJTI(&owner, refreshClaims.JTI, refreshToken,
				refreshClaims.ExpiresAt.Time); err != nil && s.logger != nil {
				s.logger.Warn("failed to blacklist refresh token on logout",
					zap.Uint("user_id", owner),
					zap.Error(err))
			}
		}
	}

	return nil
}

// Decode validates the signature and expiry of a token and returns its
// claims. The ledger is not consulted.
func (s *Service) Decode(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", t.Method.Alg())
		}
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", t.Header["alg"])
		}
		return []byte(s.config.JWT.SecretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Validate decodes the token and additionally rejects it when its jti is
// blacklisted in the ledger. This is the check the authentication gate runs
// on every request.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("token validation failed", zap.Error(err))
		}
		return nil, err
	}

	blacklisted, err := s.ledger.IsBlacklisted(claims.JTI)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to check blacklist during validation",
				zap.String("jti", claims.JTI),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		if s.logger != nil {
			s.logger.Warn("rejected blacklisted token",
				zap.Uint("user_id", claims.UserID),
				zap.String("jti", claims.JTI))
		}
		return nil, ErrTokenBlacklisted
	}

	return claims, nil
}
