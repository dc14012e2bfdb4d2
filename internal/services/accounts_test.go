package services_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftline/craftline/internal/cache"
	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return services.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *fakeUserStore) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return services.ErrNotFound
	}
	user.Name = name
	return nil
}

func (s *fakeUserStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return services.ErrNotFound
	}
	user.PasswordHash = hash
	return nil
}

type staticTokenIssuer struct{}

func (staticTokenIssuer) Issue(user *models.User) (string, error) {
	return "token-for-" + user.Email, nil
}

type recordingResetSender struct {
	mu   sync.Mutex
	urls []string
}

func (s *recordingResetSender) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, resetURL)
	return nil
}

func newAccountService(t *testing.T) (*services.AccountService, *fakeUserStore, *recordingResetSender) {
	t.Helper()
	users := newFakeUserStore()
	resetTokens, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatal(err)
	}
	sender := &recordingResetSender{}
	svc := services.NewAccountService(users, staticTokenIssuer{}, resetTokens, sender,
		"https://craftline.example.com/reset", slog.New(slog.DiscardHandler))
	return svc, users, sender
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("hashes the password", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newAccountService(t)

		user, err := svc.Register(context.Background(), services.RegisterInput{
			Name: "Ada", Email: "ada@example.com", Password: "hunter2hunter2", Role: models.RoleCustomer,
		})
		if err != nil {
			t.Fatal(err)
		}
		if user.PasswordHash == "hunter2hunter2" {
			t.Error("password stored in clear")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
			t.Error("stored hash does not verify")
		}
	})

	t.Run("rejects admin self-registration", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newAccountService(t)

		_, err := svc.Register(context.Background(), services.RegisterInput{
			Name: "Eve", Email: "eve@example.com", Password: "pw", Role: models.RoleAdmin,
		})
		if !errors.Is(err, services.ErrInvalidRole) {
			t.Errorf("got %v, want ErrInvalidRole", err)
		}
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newAccountService(t)

		input := services.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw", Role: models.RoleSeller}
		if _, err := svc.Register(context.Background(), input); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, services.ErrDuplicate) {
			t.Errorf("got %v, want ErrDuplicate", err)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAccountService(t)
	if _, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", Role: models.RoleCustomer,
	}); err != nil {
		t.Fatal(err)
	}

	t.Run("returns a token on success", func(t *testing.T) {
		t.Parallel()
		user, token, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
		if err != nil {
			t.Fatal(err)
		}
		if token != "token-for-ada@example.com" {
			t.Errorf("token = %q", token)
		}
		if user.Email != "ada@example.com" {
			t.Errorf("email = %q", user.Email)
		}
	})

	t.Run("wrong password and unknown email fail alike", func(t *testing.T) {
		t.Parallel()
		_, _, wrongPw := svc.Login(context.Background(), "ada@example.com", "wrong")
		_, _, unknown := svc.Login(context.Background(), "nobody@example.com", "wrong")
		if !errors.Is(wrongPw, services.ErrInvalidCredentials) || !errors.Is(unknown, services.ErrInvalidCredentials) {
			t.Errorf("got %v / %v, want ErrInvalidCredentials for both", wrongPw, unknown)
		}
	})
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	svc, users, sender := newAccountService(t)
	registered, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "old password", Role: models.RoleCustomer,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "ada@example.com"); err != nil {
		t.Fatal(err)
	}

	sender.mu.Lock()
	if len(sender.urls) != 1 {
		sender.mu.Unlock()
		t.Fatalf("sent %d reset emails, want 1", len(sender.urls))
	}
	url := sender.urls[0]
	sender.mu.Unlock()

	token := url[strings.Index(url, "token=")+len("token="):]
	if err := svc.ResetPassword(context.Background(), token, "new password"); err != nil {
		t.Fatal(err)
	}

	updated, err := users.GetByID(context.Background(), registered.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new password")); err != nil {
		t.Error("new password does not verify")
	}

	// Tokens are single use.
	if err := svc.ResetPassword(context.Background(), token, "another"); !errors.Is(err, services.ErrInvalidResetToken) {
		t.Errorf("reuse: got %v, want ErrInvalidResetToken", err)
	}
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, _, sender := newAccountService(t)
	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should not error: %v", err)
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.urls) != 0 {
		t.Error("no email should be sent for unknown addresses")
	}
}
