package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:   "postgres://localhost:5432/craftline",
		JWTSecret:     strings.Repeat("s", 32),
		EncryptionKey: strings.Repeat("k", 32),
		CacheProvider: "memory",
		BaseURL:       "http://localhost:8080",
		LogFormat:     "text",
		Port:          "8080",
	}
}

func TestValidateEncryptionKeyLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		encryptionKey string
		wantErr       bool
	}{
		{
			name:          "valid 32-byte key",
			encryptionKey: strings.Repeat("k", 32),
			wantErr:       false,
		},
		{
			name:          "invalid short key",
			encryptionKey: "short",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.EncryptionKey = tt.encryptionKey

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateJWTSecretMinLength(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.JWTSecret = "too-short"

	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for short JWT secret, got nil")
	}
}

func TestValidateCacheProvider(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CacheProvider = "memcached"

	err := cfg.validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "CacheProvider") || !strings.Contains(err.Error(), "oneof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEmailProviderRequiresFrom(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.EmailProvider = "resend"
	cfg.ResendAPIKey = "re_test"

	if err := cfg.validate(); err == nil {
		t.Fatal("expected error when EMAIL_FROM is missing, got nil")
	}

	cfg.EmailFrom = "orders@craftline.example"
	if err := cfg.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.EmailEnabled() {
		t.Fatal("expected email to be enabled")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/craftline_test")
	t.Setenv("JWT_SECRET", strings.Repeat("j", 32))
	t.Setenv("ENCRYPTION_KEY", strings.Repeat("e", 32))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.CacheProvider != "memory" {
		t.Fatalf("unexpected default cache provider: %s", cfg.CacheProvider)
	}
	if cfg.EmailEnabled() {
		t.Fatal("email should be disabled by default")
	}
}
