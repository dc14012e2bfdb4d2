package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/uploads"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

// ProductStorage is the storage dependency of the product service.
type ProductStorage interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	SetImageURL(ctx context.Context, id uuid.UUID, imageURL string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context) ([]*models.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.Product, error)
}

// ProductService manages seller catalogs.
type ProductService struct {
	products ProductStorage
	images   uploads.Provider
}

func NewProductService(products ProductStorage, images uploads.Provider) *ProductService {
	return &ProductService{products: products, images: images}
}

type ProductInput struct {
	Name        string
	Description string
	Category    string
	UnitPrice   decimal.Decimal
	Active      bool
}

func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, input ProductInput) (*models.Product, error) {
	if input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrStateConflict)
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		UnitPrice:   input.UnitPrice,
		Active:      input.Active,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, productID, sellerID uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, ErrForbidden
	}
	if input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrStateConflict)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = input.Category
	product.UnitPrice = input.UnitPrice
	product.Active = input.Active
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// AttachImage stores the uploaded image and records its URL on the product.
func (s *ProductService) AttachImage(ctx context.Context, productID, sellerID uuid.UUID, filename, contentType string, size int64, body io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, ErrUploadsDisabled
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, ErrForbidden
	}

	url, err := s.images.Store(ctx, filename, contentType, size, body)
	if err != nil {
		return nil, err
	}
	if err := s.products.SetImageURL(ctx, productID, url); err != nil {
		return nil, err
	}
	product.ImageURL = url
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) ListActive(ctx context.Context) ([]*models.Product, error) {
	return s.products.ListActive(ctx)
}

func (s *ProductService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}
