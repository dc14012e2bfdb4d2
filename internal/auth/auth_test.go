package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftline/craftline/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "ada@example.com",
		Role:  models.RoleSeller,
	}
}

func TestIssueAndIdentify(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("test-secret-with-plenty-of-entropy")
	user := testUser()

	token, err := a.Issue(user)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	principal, err := a.Identify(r)
	if err != nil {
		t.Fatal(err)
	}
	if principal.UserID != user.ID {
		t.Errorf("user id = %s, want %s", principal.UserID, user.ID)
	}
	if principal.Email != user.Email {
		t.Errorf("email = %q, want %q", principal.Email, user.Email)
	}
	if principal.Role != models.RoleSeller {
		t.Errorf("role = %s, want %s", principal.Role, models.RoleSeller)
	}
}

func TestIdentifyMissingHeader(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("test-secret-with-plenty-of-entropy")

	r := httptest.NewRequest("GET", "/", nil)
	if _, err := a.Identify(r); !errors.Is(err, ErrNoToken) {
		t.Errorf("no header: got %v, want ErrNoToken", err)
	}

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if _, err := a.Identify(r); !errors.Is(err, ErrNoToken) {
		t.Errorf("non-bearer header: got %v, want ErrNoToken", err)
	}
}

func TestIdentifyWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewJWTAuthenticator("first-secret-with-plenty-of-entropy")
	verifier := NewJWTAuthenticator("other-secret-with-plenty-of-entropy")

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if _, err := verifier.Identify(r); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestIdentifyExpiredToken(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("test-secret-with-plenty-of-entropy")
	a.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := a.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	verifier := NewJWTAuthenticator("test-secret-with-plenty-of-entropy")
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if _, err := verifier.Identify(r); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
