// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	JWTSecret     string `env:"JWT_SECRET,required" validate:"required,min=32"`
	EncryptionKey string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	EmailProvider string `env:"EMAIL_PROVIDER" validate:"omitempty,oneof=resend smtp"`
	EmailFrom     string `env:"EMAIL_FROM" validate:"required_with=EmailProvider,omitempty,email"`
	ResendAPIKey  string `env:"RESEND_API_KEY" validate:"required_if=EmailProvider resend"`
	SMTPHost      string `env:"SMTP_HOST" validate:"required_if=EmailProvider smtp"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`

	UploadsEndpoint  string `env:"UPLOADS_ENDPOINT"`
	UploadsAccessKey string `env:"UPLOADS_ACCESS_KEY" validate:"required_with=UploadsEndpoint"`
	UploadsSecretKey string `env:"UPLOADS_SECRET_KEY" validate:"required_with=UploadsEndpoint"`
	UploadsBucket    string `env:"UPLOADS_BUCKET" envDefault:"product-images"`
	UploadsUseSSL    bool   `env:"UPLOADS_USE_SSL" envDefault:"true"`
	UploadsPublicURL string `env:"UPLOADS_PUBLIC_URL" validate:"omitempty,url"`

	// BaseURL is the public URL of the frontend, used to build links in
	// outbound emails.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"url"`

	SentryDSN string `env:"SENTRY_DSN"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if strings.TrimSpace(c.EmailProvider) != "" && strings.TrimSpace(c.EmailFrom) == "" {
		return fmt.Errorf("EMAIL_FROM is required when EMAIL_PROVIDER is set")
	}

	return nil
}

// EmailEnabled reports whether an outbound email provider is configured.
// Without one, the app still runs and all sends become no-ops.
func (c *Config) EmailEnabled() bool {
	return strings.TrimSpace(c.EmailProvider) != ""
}

// UploadsEnabled reports whether an object-storage endpoint is configured.
func (c *Config) UploadsEnabled() bool {
	return strings.TrimSpace(c.UploadsEndpoint) != ""
}
