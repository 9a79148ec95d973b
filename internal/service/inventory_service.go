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

// MovementInput describes a stock movement to record
type MovementInput struct {
	ProductID uuid.UUID
	Type      domain.MovementType
	Quantity  int
	Note      string
	CreatedBy *uuid.UUID
}

// InventoryService defines the interface for stock management
type InventoryService interface {
	GetByProduct(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error)
	List(ctx context.Context) ([]*domain.Inventory, error)
	ListLowStock(ctx context.Context) ([]*domain.Inventory, error)
	SetMinStock(ctx context.Context, productID uuid.UUID, minStock int) (*domain.Inventory, error)
	RecordMovement(ctx context.Context, in MovementInput) (*domain.InventoryMovement, *domain.Inventory, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*domain.InventoryMovement, error)
	ListMovements(ctx context.Context, productID *uuid.UUID) ([]*domain.InventoryMovement, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	movementRepo  repository.MovementRepository
	txManager     repository.TxManager
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	movementRepo repository.MovementRepository,
	txManager repository.TxManager,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
		txManager:     txManager,
	}
}

func (s *inventoryService) GetByProduct(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error) {
	return s.inventoryRepo.FindByProduct(ctx, productID)
}

func (s *inventoryService) List(ctx context.Context) ([]*domain.Inventory, error) {
	return s.inventoryRepo.List(ctx)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]*domain.Inventory, error) {
	return s.inventoryRepo.ListLowStock(ctx)
}

// SetMinStock updates the low-stock threshold for a product. The on-hand
// quantity only changes through movements.
func (s *inventoryService) SetMinStock(ctx context.Context, productID uuid.UUID, minStock int) (*domain.Inventory, error) {
	if minStock < 0 {
		return nil, fmt.Errorf("%w: min stock cannot be negative", ErrInvalidInput)
	}

	inventory, err := s.inventoryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	inventory.MinStock = minStock
	inventory.UpdatedAt = time.Now()

	if err := s.inventoryRepo.Update(ctx, inventory); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	return inventory, nil
}

// RecordMovement appends a movement to the log and applies its signed
// quantity to the on-hand stock in one transaction. A movement is never
// recorded without its adjustment and vice versa.
func (s *inventoryService) RecordMovement(ctx context.Context, in MovementInput) (*domain.InventoryMovement, *domain.Inventory, error) {
	if !in.Type.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown movement type %q", ErrInvalidInput, in.Type)
	}
	if in.Quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	inventory, err := s.inventoryRepo.FindByProduct(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}

	delta := in.Type.Direction() * in.Quantity
	if inventory.Quantity+delta < 0 {
		return nil, nil, fmt.Errorf("%w: %d on hand, movement removes %d",
			ErrInsufficientStock, inventory.Quantity, in.Quantity)
	}

	movement := &domain.InventoryMovement{
		ID:        uuid.New(),
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now(),
	}

	var updated *domain.Inventory
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.movementRepo.Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}

		updated, err = s.inventoryRepo.Adjust(ctx, in.ProductID, delta)
		if err != nil {
			return fmt.Errorf("failed to adjust inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return movement, updated, nil
}

func (s *inventoryService) GetMovement(ctx context.Context, id uuid.UUID) (*domain.InventoryMovement, error) {
	movement, err := s.movementRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovementNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}
	return movement, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, productID *uuid.UUID) ([]*domain.InventoryMovement, error) {
	return s.movementRepo.List(ctx, productID)
}
