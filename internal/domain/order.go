package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks an order through its lifecycle
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is the header of a placed order. Total is supplied by the caller
// and must equal subtotal + shipping cost - discount.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	AddressID    uuid.UUID   `json:"address_id" db:"address_id"`
	Status       OrderStatus `json:"status" db:"status"`
	Subtotal     float64     `json:"subtotal" db:"subtotal"`
	ShippingCost float64     `json:"shipping_cost" db:"shipping_cost"`
	Discount     float64     `json:"discount" db:"discount"`
	Total        float64     `json:"total" db:"total"`
	Notes        string      `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is an immutable line-item snapshot taken at order time
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	Subtotal  float64   `json:"subtotal" db:"subtotal"`
}
