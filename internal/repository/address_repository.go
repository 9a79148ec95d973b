package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressRepository defines the interface for address data access
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = "id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default, created_at"

// Create inserts a new address into the database using parameterized queries
func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		address.ID,
		address.UserID,
		address.Street,
		address.Number,
		address.Complement,
		address.Neighborhood,
		address.City,
		address.State,
		address.ZipCode,
		address.IsDefault,
		address.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// FindByID retrieves an address by ID
func (r *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	address := &domain.Address{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&address.ID,
		&address.UserID,
		&address.Street,
		&address.Number,
		&address.Complement,
		&address.Neighborhood,
		&address.City,
		&address.State,
		&address.ZipCode,
		&address.IsDefault,
		&address.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address by ID: %w", err)
	}
	return address, nil
}

// ListByUser retrieves all addresses owned by a user
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		address := &domain.Address{}
		if err := rows.Scan(
			&address.ID,
			&address.UserID,
			&address.Street,
			&address.Number,
			&address.Complement,
			&address.Neighborhood,
			&address.City,
			&address.State,
			&address.ZipCode,
			&address.IsDefault,
			&address.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// Update replaces the mutable fields of an existing address
func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	query := `
		UPDATE addresses
		SET street = $2, number = $3, complement = $4, neighborhood = $5,
		    city = $6, state = $7, zip_code = $8, is_default = $9
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		address.ID,
		address.Street,
		address.Number,
		address.Complement,
		address.Neighborhood,
		address.City,
		address.State,
		address.ZipCode,
		address.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return requireRowsAffected(result, ErrAddressNotFound)
}

// Delete removes an address from the database
func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return requireRowsAffected(result, ErrAddressNotFound)
}
