package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	// AuthFlagEmail selects email as the identifier the OTP verification
	// flow operates on; AuthFlagPhone selects the phone number.
	AuthFlagEmail = "email"
	AuthFlagPhone = "phone_number"
)

type Config struct {
	App       AppConfig       `envPrefix:"VMS_APP_"`
	Server    ServerConfig    `envPrefix:"VMS_SERVER_"`
	Log       LogConfig       `envPrefix:"VMS_LOG_"`
	Database  DatabaseConfig  `envPrefix:"VMS_DATABASE_"`
	JWT       JWTConfig       `envPrefix:"VMS_JWT_"`
	OTP       OTPConfig       `envPrefix:"VMS_OTP_"`
	Mail      MailConfig      `envPrefix:"VMS_MAIL_"`
	RateLimit RateLimitConfig `envPrefix:"VMS_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"Spatium Offices"`
	// URL is the externally reachable base URL, embedded in identity-card
	// links and QR codes.
	URL string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"vms.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey     string        `env:"SECRET_KEY"`
	Issuer        string        `env:"ISSUER" envDefault:"spatium-vms"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"24h"`
	// TokenExpiryDays is informational only: it is surfaced to clients
	// alongside issued token pairs.
	TokenExpiryDays        int  `env:"TOKEN_EXPIRY_TIME" envDefault:"1"`
	RotateRefreshTokens    bool `env:"ROTATE_REFRESH_TOKENS" envDefault:"true"`
	BlacklistAfterRotation bool `env:"BLACKLIST_AFTER_ROTATION" envDefault:"true"`
}

type OTPConfig struct {
	// ExpirySeconds is the time-step size used when computing one-time
	// codes, not the validity window of a delivered code (that is fixed
	// at ten minutes).
	ExpirySeconds int `env:"OTP_EXPIRY_TIME" envDefault:"300"`
	// AuthenticationFlag selects whether the verification flow keys OTP
	// records by email or by phone number.
	AuthenticationFlag string `env:"AUTHENTICATION_FLAG" envDefault:"email"`
}

type MailConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS" envDefault:"no-reply@spatiumoffices.com"`
	FromName    string `env:"FROM_NAME" envDefault:"Spatium Offices"`
	// EmailLogo is inlined into transactional email bodies.
	EmailLogo string `env:"EMAIL_LOGO"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Store   string        `env:"STORE" envDefault:"memory"`
	Rate    int           `env:"RATE" envDefault:"2"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if err := validateJWTConfig(&c.JWT); err != nil {
		return err
	}
	return validateOTPConfig(&c.OTP)
}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return fmt.Errorf("JWT secret key must be at least 32 characters long")
	}

	weakPatterns := []string{"password", "secret", "example", "default", "change"}
	lowered := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("JWT secret key contains weak patterns")
		}
	}

	return nil
}

func validateOTPConfig(cfg *OTPConfig) error {
	if cfg.ExpirySeconds <= 0 {
		return fmt.Errorf("OTP expiry time must be positive, got %d", cfg.ExpirySeconds)
	}

	switch cfg.AuthenticationFlag {
	case AuthFlagEmail, AuthFlagPhone:
		return nil
	default:
		return fmt.Errorf("unsupported authentication flag: %s (supported: %s, %s)",
			cfg.AuthenticationFlag, AuthFlagEmail, AuthFlagPhone)
	}
}
