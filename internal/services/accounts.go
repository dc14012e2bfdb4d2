package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftline/craftline/internal/cache"
	"github.com/craftline/craftline/internal/logging"
	"github.com/craftline/craftline/internal/models"
)

const resetTokenTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// UserStore is the storage dependency of the account service.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// TokenIssuer mints an access token for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// PasswordResetSender delivers the reset link. Best-effort.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// AccountService covers registration, login, profile edits and password
// resets.
type AccountService struct {
	users        UserStore
	tokens       TokenIssuer
	resetTokens  cache.Provider
	emails       PasswordResetSender
	resetURLBase string
	logger       *slog.Logger
}

func NewAccountService(users UserStore, tokens TokenIssuer, resetTokens cache.Provider, emails PasswordResetSender, resetURLBase string, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:        users,
		tokens:       tokens,
		resetTokens:  resetTokens,
		emails:       emails,
		resetURLBase: resetURLBase,
		logger:       logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Register creates an account. Admin accounts cannot be self-registered.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if !models.ValidRegistrationRole(input.Role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and returns the user plus a fresh token.
// Unknown email and wrong password produce the same error.
func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AccountService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// RequestPasswordReset stores a one-hour token and emails the reset link.
// An unknown email succeeds silently so the endpoint does not leak which
// addresses have accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	logger := logging.FromContext(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	if err := s.resetTokens.Set(ctx, cache.ResetTokenKey(token), user.ID.String(), resetTokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := s.resetURLBase + "?token=" + token
	if err := s.emails.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		logger.Warn("failed to send password reset email", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	key := cache.ResetTokenKey(token)

	rawUserID, err := s.resetTokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	// Single use.
	if err := s.resetTokens.Delete(ctx, key); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to delete reset token", "error", err)
	}
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
