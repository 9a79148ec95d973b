package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartItemRepository defines the interface for cart item data access
type CartItemRepository interface {
	Create(ctx context.Context, item *domain.CartItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)
	ListByCart(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error)
	Update(ctx context.Context, item *domain.CartItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = "id, user_id, session_id, created_at, updated_at"

// Create inserts a new cart into the database
func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var userID uuid.NullUUID
	if cart.UserID != nil {
		userID = uuid.NullUUID{UUID: *cart.UserID, Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		cart.ID,
		userID,
		cart.SessionID,
		cart.CreatedAt,
		cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// FindByID retrieves a cart by ID
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	return scanCart(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

// FindByUser retrieves the cart tied to a user
func (r *cartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanCart(conn(ctx, r.db).QueryRowContext(ctx, query, userID))
}

// FindBySession retrieves the cart tied to an anonymous session
func (r *cartRepository) FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE session_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanCart(conn(ctx, r.db).QueryRowContext(ctx, query, sessionID))
}

// Delete removes a cart. Its items are removed by the cascading foreign key.
func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return requireRowsAffected(result, ErrCartNotFound)
}

func scanCart(row *sql.Row) (*domain.Cart, error) {
	cart := &domain.Cart{}
	var userID uuid.NullUUID
	err := row.Scan(
		&cart.ID,
		&userID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if userID.Valid {
		cart.UserID = &userID.UUID
	}
	return cart, nil
}

type cartItemRepository struct {
	db *sql.DB
}

// NewCartItemRepository creates a new instance of CartItemRepository
func NewCartItemRepository(db *sql.DB) CartItemRepository {
	return &cartItemRepository{db: db}
}

const cartItemColumns = "id, cart_id, product_id, quantity, price, created_at"

// Create inserts a new cart item with its snapshot price
func (r *cartItemRepository) Create(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		item.ID,
		item.CartID,
		item.ProductID,
		item.Quantity,
		item.Price,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// FindByID retrieves a cart item by ID
func (r *cartItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`

	item := &domain.CartItem{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return item, nil
}

// ListByCart retrieves all items in a cart
func (r *cartItemRepository) ListByCart(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Update replaces the quantity of an existing cart item. The snapshot
// price is deliberately left untouched.
func (r *cartItemRepository) Update(ctx context.Context, item *domain.CartItem) error {
	query := `UPDATE cart_items SET quantity = $2 WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, item.ID, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return requireRowsAffected(result, ErrCartItemNotFound)
}

// Delete removes a cart item
func (r *cartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return requireRowsAffected(result, ErrCartItemNotFound)
}

// ClearCart removes every item in a cart. Clearing an empty or unknown
// cart succeeds trivially.
func (r *cartItemRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
