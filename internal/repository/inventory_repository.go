package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrMovementNotFound  = errors.New("inventory movement not found")
)

// InventoryRepository defines the interface for stock-level data access.
// Inventory rows are keyed by product: every product owns exactly one.
type InventoryRepository interface {
	Create(ctx context.Context, inventory *domain.Inventory) error
	FindByProduct(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error)
	List(ctx context.Context) ([]*domain.Inventory, error)
	ListLowStock(ctx context.Context) ([]*domain.Inventory, error)
	Update(ctx context.Context, inventory *domain.Inventory) error
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*domain.Inventory, error)
}

// MovementRepository defines the interface for the append-only movement log
type MovementRepository interface {
	Create(ctx context.Context, movement *domain.InventoryMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryMovement, error)
	List(ctx context.Context, productID *uuid.UUID) ([]*domain.InventoryMovement, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = "id, product_id, quantity, min_stock, updated_at"

// Create inserts the inventory row for a product
func (r *inventoryRepository) Create(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		INSERT INTO inventory (id, product_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		inventory.ID,
		inventory.ProductID,
		inventory.Quantity,
		inventory.MinStock,
		inventory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

// FindByProduct retrieves the inventory row for a product
func (r *inventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = $1`
	return scanInventory(conn(ctx, r.db).QueryRowContext(ctx, query, productID))
}

// List retrieves all inventory rows
func (r *inventoryRepository) List(ctx context.Context) ([]*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory ORDER BY updated_at DESC`
	return listInventory(ctx, conn(ctx, r.db), query)
}

// ListLowStock retrieves the inventory rows at or below their threshold.
// The result is recomputed on every call, never cached.
func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE quantity <= min_stock ORDER BY quantity ASC`
	return listInventory(ctx, conn(ctx, r.db), query)
}

// Update replaces the quantity and threshold of an inventory row
func (r *inventoryRepository) Update(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		UPDATE inventory
		SET quantity = $2, min_stock = $3, updated_at = $4
		WHERE product_id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		inventory.ProductID,
		inventory.Quantity,
		inventory.MinStock,
		inventory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	return requireRowsAffected(result, ErrInventoryNotFound)
}

// Adjust applies a signed delta to a product's quantity in a single
// statement and returns the updated row.
func (r *inventoryRepository) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*domain.Inventory, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity + $2, updated_at = $3
		WHERE product_id = $1
		RETURNING ` + inventoryColumns

	return scanInventory(conn(ctx, r.db).QueryRowContext(ctx, query, productID, delta, time.Now().UTC()))
}

func scanInventory(row *sql.Row) (*domain.Inventory, error) {
	inventory := &domain.Inventory{}
	err := row.Scan(
		&inventory.ID,
		&inventory.ProductID,
		&inventory.Quantity,
		&inventory.MinStock,
		&inventory.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to find inventory: %w", err)
	}
	return inventory, nil
}

func listInventory(ctx context.Context, ex executor, query string) ([]*domain.Inventory, error) {
	rows, err := ex.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	items := []*domain.Inventory{}
	for rows.Next() {
		inventory := &domain.Inventory{}
		if err := rows.Scan(
			&inventory.ID,
			&inventory.ProductID,
			&inventory.Quantity,
			&inventory.MinStock,
			&inventory.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		items = append(items, inventory)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return items, nil
}

type movementRepository struct {
	db *sql.DB
}

// NewMovementRepository creates a new instance of MovementRepository
func NewMovementRepository(db *sql.DB) MovementRepository {
	return &movementRepository{db: db}
}

const movementColumns = "id, product_id, type, quantity, note, created_by, created_at"

// Create appends a movement to the log
func (r *movementRepository) Create(ctx context.Context, movement *domain.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, product_id, type, quantity, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var createdBy uuid.NullUUID
	if movement.CreatedBy != nil {
		createdBy = uuid.NullUUID{UUID: *movement.CreatedBy, Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		movement.ID,
		movement.ProductID,
		movement.Type,
		movement.Quantity,
		movement.Note,
		createdBy,
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory movement: %w", err)
	}
	return nil
}

// FindByID retrieves a movement by ID
func (r *movementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`

	movement := &domain.InventoryMovement{}
	var createdBy uuid.NullUUID
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&movement.ID,
		&movement.ProductID,
		&movement.Type,
		&movement.Quantity,
		&movement.Note,
		&createdBy,
		&movement.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMovementNotFound
		}
		return nil, fmt.Errorf("failed to find inventory movement: %w", err)
	}
	if createdBy.Valid {
		movement.CreatedBy = &createdBy.UUID
	}
	return movement, nil
}

// List retrieves movements newest-first, optionally filtered by product
func (r *movementRepository) List(ctx context.Context, productID *uuid.UUID) ([]*domain.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements`
	args := []any{}
	if productID != nil {
		query += ` WHERE product_id = $1`
		args = append(args, *productID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory movements: %w", err)
	}
	defer rows.Close()

	movements := []*domain.InventoryMovement{}
	for rows.Next() {
		movement := &domain.InventoryMovement{}
		var createdBy uuid.NullUUID
		if err := rows.Scan(
			&movement.ID,
			&movement.ProductID,
			&movement.Type,
			&movement.Quantity,
			&movement.Note,
			&createdBy,
			&movement.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory movement: %w", err)
		}
		if createdBy.Valid {
			movement.CreatedBy = &createdBy.UUID
		}
		movements = append(movements, movement)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory movements: %w", err)
	}

	return movements, nil
}
