package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMinStock is applied when a product is created without an explicit
// low-stock threshold.
const DefaultMinStock = 5

// MovementType classifies a stock movement
type MovementType string

const (
	MovementEntry      MovementType = "entry"
	MovementExit       MovementType = "exit"
	MovementAdjustment MovementType = "adjustment"
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
)

// Valid reports whether t is a known movement type
func (t MovementType) Valid() bool {
	switch t {
	case MovementEntry, MovementExit, MovementAdjustment, MovementSale, MovementReturn:
		return true
	}
	return false
}

// Direction returns +1 for movements that add stock (entry, return)
// and -1 for movements that remove it.
func (t MovementType) Direction() int {
	if t == MovementEntry || t == MovementReturn {
		return 1
	}
	return -1
}

// Inventory tracks the on-hand quantity for a single product
type Inventory struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	MinStock  int       `json:"min_stock" db:"min_stock"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the quantity has fallen to or below the threshold
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// InventoryMovement is an append-only log entry. Recording one always
// carries the matching quantity adjustment with it.
type InventoryMovement struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	ProductID uuid.UUID    `json:"product_id" db:"product_id"`
	Type      MovementType `json:"type" db:"type"`
	Quantity  int          `json:"quantity" db:"quantity"`
	Note      string       `json:"note,omitempty" db:"note"`
	CreatedBy *uuid.UUID   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
