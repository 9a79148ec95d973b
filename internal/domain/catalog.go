package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category, addressable by its URL-safe slug
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product represents a product in the catalog. Every product has exactly
// one Inventory row, created together with it.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CategoryID    uuid.UUID `json:"category_id" db:"category_id"`
	Name          string    `json:"name" db:"name"`
	Slug          string    `json:"slug" db:"slug"`
	Description   string    `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty" db:"original_price"`
	Images        []string  `json:"images" db:"images"`
	SKU           string    `json:"sku,omitempty" db:"sku"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
