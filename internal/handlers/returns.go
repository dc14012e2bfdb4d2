package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type initiateReturnRequest struct {
	OrderItemID  uuid.UUID `json:"order_item_id"`
	Reason       string    `json:"reason"`
	RefundMethod string    `json:"refund_method"`
	RefundAmount *string   `json:"refund_amount,omitempty"`
	BankAccount  string    `json:"bank_account,omitempty"`
}

func (h *Handlers) InitiateReturn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	var req initiateReturnRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		h.respondBadRequest(w, r, "reason is required")
		return
	}
	method := models.RefundMethod(req.RefundMethod)
	if !models.ValidRefundMethod(method) {
		h.respondBadRequest(w, r, "refund_method must be STORE_CREDIT or BANK")
		return
	}
	if method == models.RefundMethodBank && strings.TrimSpace(req.BankAccount) == "" {
		h.respondBadRequest(w, r, "bank_account is required for BANK refunds")
		return
	}

	input := services.InitiateReturnInput{
		OrderItemID:  req.OrderItemID,
		Reason:       req.Reason,
		RefundMethod: method,
		BankAccount:  strings.TrimSpace(req.BankAccount),
	}
	if req.RefundAmount != nil {
		amount, err := decimal.NewFromString(*req.RefundAmount)
		if err != nil || amount.IsNegative() {
			h.respondBadRequest(w, r, "refund_amount must be a non-negative decimal string")
			return
		}
		input.RefundAmount = &amount
	}

	request, err := h.returnService.Initiate(r.Context(), principal.UserID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, request)
}

func (h *Handlers) SellerApproveReturn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	returnID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid return id")
		return
	}

	request, err := h.returnService.SellerApprove(r.Context(), returnID, principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, request)
}

type rejectReturnRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) SellerRejectReturn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	returnID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid return id")
		return
	}

	var req rejectReturnRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		h.respondBadRequest(w, r, "reason is required")
		return
	}

	request, err := h.returnService.SellerReject(r.Context(), returnID, principal.UserID, req.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, request)
}

func (h *Handlers) CancelReturn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	returnID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid return id")
		return
	}

	request, err := h.returnService.Cancel(r.Context(), returnID, principal.UserID, principal.Email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, request)
}

func (h *Handlers) AdminApproveReturn(w http.ResponseWriter, r *http.Request) {
	returnID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid return id")
		return
	}

	request, err := h.returnService.AdminApprove(r.Context(), returnID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, request)
}

func (h *Handlers) AdminCompleteRefund(w http.ResponseWriter, r *http.Request) {
	returnID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid return id")
		return
	}

	request, err := h.returnService.AdminCompleteRefund(r.Context(), returnID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, request)
}

type returnListResponse struct {
	Returns []*models.ReturnView `json:"returns"`
}

func (h *Handlers) ListMyReturns(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	views, err := h.returnService.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, returnListResponse{Returns: views})
}

func (h *Handlers) ListSellerReturns(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	views, err := h.returnService.ListBySeller(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, returnListResponse{Returns: views})
}
