package testutils

import (
	"time"

	"github.com/spatium-offices/vms/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Spatium Offices",
			URL:  "http://localhost:8080",
		},
		JWT: config.JWTConfig{
			SecretKey:              "a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p6",
			Issuer:                 "spatium-vms",
			AccessExpiry:           15 * time.Minute,
			RefreshExpiry:          24 * time.Hour,
			TokenExpiryDays:        1,
			RotateRefreshTokens:    true,
			BlacklistAfterRotation: true,
		},
		OTP: config.OTPConfig{
			ExpirySeconds:      300,
			AuthenticationFlag: config.AuthFlagEmail,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: true,
			Store:   "memory",
			Rate:    2,
			Period:  time.Minute,
		},
	}
}
