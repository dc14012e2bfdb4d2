package handlers

import (
	"errors"
	"net/http"

	"github.com/craftline/craftline/internal/auth"
	"github.com/craftline/craftline/internal/services"
)

type errorResponse struct {
	Message string `json:"message"`
}

// respondError maps service errors onto HTTP statuses. Unexpected errors get
// a generic body so internals never leak to clients.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := h.loggerFromContext(r.Context())

	switch {
	case errors.Is(err, services.ErrNotFound):
		h.respondJSON(w, r, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, services.ErrForbidden):
		h.respondJSON(w, r, http.StatusForbidden, errorResponse{Message: "forbidden"})
	case errors.Is(err, services.ErrInvalidCredentials):
		h.respondJSON(w, r, http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrInvalidToken):
		h.respondJSON(w, r, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
	case errors.Is(err, services.ErrDuplicate):
		h.respondJSON(w, r, http.StatusConflict, errorResponse{Message: "already exists"})
	case errors.Is(err, services.ErrStateConflict),
		errors.Is(err, services.ErrItemNotReturnable),
		errors.Is(err, services.ErrSellerNotApproved):
		h.respondJSON(w, r, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidResetToken),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrNotPurchased),
		errors.Is(err, services.ErrUploadsDisabled):
		h.respondJSON(w, r, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		h.respondJSON(w, r, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (h *Handlers) respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	h.respondJSON(w, r, http.StatusBadRequest, errorResponse{Message: message})
}
