package handlers

import (
	"net/http"
	"strings"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		h.respondBadRequest(w, r, "name and email are required")
		return
	}
	if len(req.Password) < 8 {
		h.respondBadRequest(w, r, "password must be at least 8 characters")
		return
	}

	user, err := h.accountService.Register(r.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}

	user, token, err := h.accountService.Login(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	user, err := h.accountService.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	var req updateProfileRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondBadRequest(w, r, "name is required")
		return
	}

	user, err := h.accountService.UpdateName(r.Context(), principal.UserID, strings.TrimSpace(req.Name))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}

	if err := h.accountService.RequestPasswordReset(r.Context(), strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		h.respondError(w, r, err)
		return
	}
	// Same response whether or not the account exists.
	h.respondJSON(w, r, http.StatusAccepted, map[string]string{"status": "reset email sent if the account exists"})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if len(req.Password) < 8 {
		h.respondBadRequest(w, r, "password must be at least 8 characters")
		return
	}

	if err := h.accountService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "password updated"})
}
