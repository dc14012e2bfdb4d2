package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/services"
)

type hireRequestBody struct {
	DesignerID uuid.UUID `json:"designer_id"`
	Brief      string    `json:"brief"`
	Budget     string    `json:"budget"`
}

func (h *Handlers) RequestHire(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	var req hireRequestBody
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Brief) == "" {
		h.respondBadRequest(w, r, "brief is required")
		return
	}
	budget, err := decimal.NewFromString(req.Budget)
	if err != nil || budget.IsNegative() {
		h.respondBadRequest(w, r, "budget must be a non-negative decimal string")
		return
	}

	hire, err := h.hireService.Request(r.Context(), principal.UserID, services.HireInput{
		DesignerID: req.DesignerID,
		Brief:      req.Brief,
		Budget:     budget,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, hire)
}

type decideHireRequest struct {
	Accept bool   `json:"accept"`
	Note   string `json:"note"`
}

func (h *Handlers) DecideHire(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	hireID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid hire request id")
		return
	}

	var req decideHireRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}

	hire, err := h.hireService.Decide(r.Context(), hireID, principal.UserID, req.Accept, req.Note)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, hire)
}

func (h *Handlers) CompleteHire(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	hireID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid hire request id")
		return
	}

	hire, err := h.hireService.Complete(r.Context(), hireID, principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, hire)
}

func (h *Handlers) ListMyHires(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	hires, err := h.hireService.ListForUser(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, hires)
}
