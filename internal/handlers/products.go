package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/services"
)

const maxImageBytes = 8 << 20 // 8 MB

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	UnitPrice   string `json:"unit_price"`
	Active      *bool  `json:"active"`
}

func (r productRequest) toInput() (services.ProductInput, string) {
	if strings.TrimSpace(r.Name) == "" {
		return services.ProductInput{}, "name is required"
	}
	price, err := decimal.NewFromString(r.UnitPrice)
	if err != nil {
		return services.ProductInput{}, "unit_price must be a decimal string"
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return services.ProductInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Category:    r.Category,
		UnitPrice:   price,
		Active:      active,
	}, ""
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	var req productRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	input, problem := req.toInput()
	if problem != "" {
		h.respondBadRequest(w, r, problem)
		return
	}

	product, err := h.productService.Create(r.Context(), principal.UserID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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

	var req productRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondBadRequest(w, r, err.Error())
		return
	}
	input, problem := req.toInput()
	if problem != "" {
		h.respondBadRequest(w, r, problem)
		return
	}

	product, err := h.productService.Update(r.Context(), productID, principal.UserID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

// UploadProductImage accepts a multipart "image" field and stores it in
// object storage.
func (h *Handlers) UploadProductImage(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondBadRequest(w, r, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.respondBadRequest(w, r, "only image uploads are allowed")
		return
	}

	product, err := h.productService.AttachImage(r.Context(), productID, principal.UserID,
		header.Filename, contentType, header.Size, file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		h.respondBadRequest(w, r, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListActive(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, products)
}

func (h *Handlers) ListMyProducts(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		h.respondError(w, r, services.ErrForbidden)
		return
	}

	products, err := h.productService.ListBySeller(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, products)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}
