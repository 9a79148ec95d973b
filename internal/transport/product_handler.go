package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	CategoryID    string   `json:"category_id" validate:"required,uuid"`
	Name          string   `json:"name" validate:"required"`
	Slug          string   `json:"slug" validate:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Images        []string `json:"images"`
	SKU           string   `json:"sku"`
	InitialStock  int      `json:"initial_stock" validate:"gte=0"`
	MinStock      *int     `json:"min_stock,omitempty"`
}

// UpdateProductRequest represents a partial product update payload
type UpdateProductRequest struct {
	CategoryID    *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Name          *string  `json:"name,omitempty"`
	Slug          *string  `json:"slug,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Images        []string `json:"images,omitempty"`
	SKU           *string  `json:"sku,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/slug/{slug}", h.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles product creation. The inventory record is created with
// the product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.ProductInput{
		CategoryID:    categoryID,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Images:        req.Images,
		SKU:           req.SKU,
		InitialStock:  req.InitialStock,
		MinStock:      req.MinStock,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// List returns products, optionally filtered by category
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	products, err := h.catalog.ListProducts(r.Context(), categoryID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetBySlug returns one product by its slug
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	update := service.ProductUpdate{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Images:        req.Images,
		SKU:           req.SKU,
		IsActive:      req.IsActive,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		update.CategoryID = &categoryID
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product and its inventory record
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
