package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/models"
)

type fakeAuthenticator struct {
	principal *auth.Principal
	err       error
}

func (a fakeAuthenticator) Identify(*http.Request) (*auth.Principal, error) {
	return a.principal, a.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing token", func(t *testing.T) {
		t.Parallel()
		h := &Handlers{
			authenticator: fakeAuthenticator{err: auth.ErrNoToken},
			logger:        discardLogger(),
		}

		rec := httptest.NewRecorder()
		h.RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("next handler should not run")
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("stores the principal in context", func(t *testing.T) {
		t.Parallel()
		principal := &auth.Principal{UserID: uuid.New(), Role: models.RoleSeller}
		h := &Handlers{
			authenticator: fakeAuthenticator{principal: principal},
			logger:        discardLogger(),
		}

		rec := httptest.NewRecorder()
		h.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := principalFromContext(r.Context())
			if !ok || got.UserID != principal.UserID {
				t.Error("principal missing from context")
			}
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	principal := &auth.Principal{UserID: uuid.New(), Role: models.RoleCustomer}
	h := &Handlers{
		authenticator: fakeAuthenticator{principal: principal},
		logger:        discardLogger(),
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("allows a listed role", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h.RequireAuth(h.RequireRole(models.RoleCustomer, models.RoleAdmin)(next)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("blocks other roles", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h.RequireAuth(h.RequireRole(models.RoleAdmin)(next)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/returns", nil))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}
