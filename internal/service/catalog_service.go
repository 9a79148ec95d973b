package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CategoryInput carries the writable fields of a category
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// ProductInput carries the fields needed to create a product. Every new
// product gets an inventory record in the same transaction.
type ProductInput struct {
	CategoryID    uuid.UUID
	Name          string
	Slug          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Images        []string
	SKU           string
	InitialStock  int
	MinStock      *int
}

// ProductUpdate carries optional fields for a partial product update.
// Nil fields are left unchanged.
type ProductUpdate struct {
	CategoryID    *uuid.UUID
	Name          *string
	Slug          *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Images        []string
	SKU           *string
	IsActive      *bool
}

// CatalogService defines the interface for category and product management
type CatalogService interface {
	CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	txManager     repository.TxManager
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	txManager repository.TxManager,
) CatalogService {
	return &catalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		txManager:     txManager,
	}
}

// CreateCategory creates a new category with a unique name and slug
func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if in.Name == "" || in.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrInvalidInput)
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categoryRepo.FindBySlug(ctx, slug)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// UpdateCategory replaces the writable fields of a category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		category.Name = in.Name
	}
	if in.Slug != "" {
		category.Slug = in.Slug
	}
	if in.Description != "" {
		category.Description = in.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category. Products referencing it must be
// moved or removed first.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	products, err := s.productRepo.List(ctx, &id)
	if err != nil {
		return fmt.Errorf("failed to list category products: %w", err)
	}
	if len(products) > 0 {
		return fmt.Errorf("%w: category still has products", ErrInvalidInput)
	}

	return s.categoryRepo.Delete(ctx, id)
}

// CreateProduct creates a product together with its inventory record.
// The two writes happen in one transaction so a product can never exist
// without stock tracking.
func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if in.Name == "" || in.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrInvalidInput)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if in.InitialStock < 0 {
		return nil, fmt.Errorf("%w: initial stock cannot be negative", ErrInvalidInput)
	}

	if _, err := s.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: category does not exist", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}

	minStock := domain.DefaultMinStock
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, fmt.Errorf("%w: min stock cannot be negative", ErrInvalidInput)
		}
		minStock = *in.MinStock
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Slug:          in.Slug,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Images:        in.Images,
		SKU:           in.SKU,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		inventory := &domain.Inventory{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  in.InitialStock,
			MinStock:  minStock,
			UpdatedAt: now,
		}
		if err := s.inventoryRepo.Create(ctx, inventory); err != nil {
			return fmt.Errorf("failed to create inventory: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, categoryID)
}

// UpdateProduct applies a partial update to a product
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductUpdate) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("%w: category does not exist", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Slug != nil {
		product.Slug = *in.Slug
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
		}
		product.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		product.OriginalPrice = in.OriginalPrice
	}
	if in.Images != nil {
		product.Images = in.Images
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product and its inventory record
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
