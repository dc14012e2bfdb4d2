package handlers

import (
	"context"
	"net/http"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/models"
)

type principalContextKey struct{}

func withPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

func principalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*auth.Principal)
	return p, ok && p != nil
}

// RequireAuth resolves the bearer token and stores the principal in context.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.authenticator.Identify(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequireRole gates a subtree to specific roles. Must run inside RequireAuth.
func (h *Handlers) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromContext(r.Context())
			if !ok {
				h.respondError(w, r, auth.ErrNoToken)
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				h.respondJSON(w, r, http.StatusForbidden, errorResponse{Message: "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
