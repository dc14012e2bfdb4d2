package handlers

import (
	"net/http"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type rateProductRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func (h *Handlers) RateProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}
	productID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid product id")
		return
	}

	var req rateProductRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}

	rating, err := h.ratingService.Rate(r.Context(), principal.UserID, productID, req.Stars, req.Comment)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, rating)
}

type productRatingsResponse struct {
	Ratings []*models.Rating `json:"ratings"`
	Average float64          `json:"average"`
}

func (h *Handlers) ListProductRatings(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid product id")
		return
	}

	ratings, average, err := h.ratingService.ListForProduct(r.Context(), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, productRatingsResponse{Ratings: ratings, Average: average})
}
