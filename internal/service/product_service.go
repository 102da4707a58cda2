package service

import (
	"context"
	"errors"

	"owzars-commerce/internal/domain"
	"owzars-commerce/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidProduct = errors.New("product is missing required fields")
)

// ProductInput carries the admin-editable product fields.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	Images      []string
	Category    string
	Inventory   int
}

// ProductService exposes catalog reads and admin product management.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Create validates input and inserts a new catalog product
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Category:    input.Category,
		Inventory:   input.Inventory,
		CreatedAt:   nowUTC(),
		UpdatedAt:   nowUTC(),
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update validates input and overwrites an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.Images = input.Images
	product.Category = input.Category
	product.Inventory = input.Inventory
	product.UpdatedAt = nowUTC()
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product from the catalog
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetByID retrieves a single product
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves the catalog, newest first
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

func validateProductInput(input ProductInput) error {
	if input.Title == "" || input.Description == "" || input.Category == "" {
		return ErrInvalidProduct
	}
	if input.Price < 0 || input.Inventory < 0 {
		return ErrInvalidProduct
	}
	return nil
}
