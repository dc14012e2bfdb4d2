package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type placeOrderRequest struct {
	Items []struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int       `json:"quantity"`
	} `json:"items"`
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	var req placeOrderRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orderService.Place(r.Context(), principal.UserID, lines)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, order)
}

func (h *Handlers) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, orders)
}

func (h *Handlers) ListSellerItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	items, err := h.orderService.ListSellerItems(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, items)
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	itemID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid order item id")
		return
	}

	var req updateItemStatusRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	next := models.ItemStatus(req.Status)
	switch next {
	case models.ItemStatusShipped, models.ItemStatusFulfilled:
	default:
		h.respondBadRequest(w, r, "status must be shipped or fulfilled")
		return
	}

	item, err := h.orderService.UpdateItemStatus(r.Context(), itemID, principal.UserID, next)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, item)
}
