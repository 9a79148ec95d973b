package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// OrderItemInput is one requested line item
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput carries everything needed to place an order. When
// CartID is set the cart is emptied as part of the same transaction.
type PlaceOrderInput struct {
	UserID    uuid.UUID
	AddressID uuid.UUID
	Items     []OrderItemInput
	Discount  float64
	Notes     string
	CartID    *uuid.UUID
}

// OrderView is an order with its line items
type OrderView struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
}

// OrderService defines the interface for order management
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*OrderView, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, userID *uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	movementRepo  repository.MovementRepository
	userRepo      repository.UserRepository
	addressRepo   repository.AddressRepository
	cartItemRepo  repository.CartItemRepository
	txManager     repository.TxManager
	shipping      config.ShippingConfig
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	movementRepo repository.MovementRepository,
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	cartItemRepo repository.CartItemRepository,
	txManager repository.TxManager,
	shipping config.ShippingConfig,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
		userRepo:      userRepo,
		addressRepo:   addressRepo,
		cartItemRepo:  cartItemRepo,
		txManager:     txManager,
		shipping:      shipping,
	}
}

// PlaceOrder validates the request, snapshots current product prices
// into line items and decrements stock for each of them. Everything
// happens in one transaction: either the order exists with all its
// items, stock decrements and sale movements, or nothing changed.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*OrderView, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrInvalidInput)
	}
	if in.Discount < 0 {
		return nil, fmt.Errorf("%w: discount cannot be negative", ErrInvalidInput)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}

	user, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	address, err := s.addressRepo.FindByID(ctx, in.AddressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != user.ID {
		return nil, fmt.Errorf("%w: address does not belong to user", ErrInvalidInput)
	}

	var view *OrderView
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		// Resolve products and check stock before the first write so a
		// failed order leaves nothing behind.
		type line struct {
			product  *domain.Product
			quantity int
		}
		lines := make([]line, 0, len(in.Items))
		var subtotal float64

		for _, item := range in.Items {
			product, err := s.productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("%w: product %s is not available", ErrInvalidInput, product.Slug)
			}

			inventory, err := s.inventoryRepo.FindByProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if inventory.Quantity < item.Quantity {
				return fmt.Errorf("%w: product %s has %d on hand, %d requested",
					ErrInsufficientStock, product.Slug, inventory.Quantity, item.Quantity)
			}

			lines = append(lines, line{product: product, quantity: item.Quantity})
			subtotal += product.Price * float64(item.Quantity)
		}

		subtotal = round2(subtotal)
		shippingCost := s.shipping.FlatRate
		if subtotal > s.shipping.FreeThreshold {
			shippingCost = 0
		}
		total := round2(subtotal + shippingCost - in.Discount)
		if total < 0 {
			return fmt.Errorf("%w: discount exceeds order value", ErrInvalidInput)
		}

		now := time.Now()
		order := &domain.Order{
			ID:           uuid.New(),
			UserID:       in.UserID,
			AddressID:    in.AddressID,
			Status:       domain.OrderPending,
			Subtotal:     subtotal,
			ShippingCost: shippingCost,
			Discount:     in.Discount,
			Total:        total,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]*domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			item := &domain.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: l.product.ID,
				Quantity:  l.quantity,
				Price:     l.product.Price,
				Subtotal:  round2(l.product.Price * float64(l.quantity)),
			}
			if err := s.orderItemRepo.Create(ctx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			items = append(items, item)

			movement := &domain.InventoryMovement{
				ID:        uuid.New(),
				ProductID: l.product.ID,
				Type:      domain.MovementSale,
				Quantity:  l.quantity,
				Note:      fmt.Sprintf("order %s", order.ID),
				CreatedBy: &in.UserID,
				CreatedAt: now,
			}
			if err := s.movementRepo.Create(ctx, movement); err != nil {
				return fmt.Errorf("failed to record sale movement: %w", err)
			}
			if _, err := s.inventoryRepo.Adjust(ctx, l.product.ID, -l.quantity); err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		if in.CartID != nil {
			if err := s.cartItemRepo.ClearCart(ctx, *in.CartID); err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}

		view = &OrderView{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// GetOrder returns an order with its line items
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.orderItemRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	return &OrderView{Order: order, Items: items}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID *uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx, userID)
}

// UpdateStatus moves an order through its lifecycle. Cancelling an order
// returns its stock with a matching movement per item.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidInput)
	}
	if order.Status == status {
		return order, nil
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if status == domain.OrderCancelled {
			items, err := s.orderItemRepo.ListByOrder(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to list order items: %w", err)
			}
			now := time.Now()
			for _, item := range items {
				movement := &domain.InventoryMovement{
					ID:        uuid.New(),
					ProductID: item.ProductID,
					Type:      domain.MovementReturn,
					Quantity:  item.Quantity,
					Note:      fmt.Sprintf("order %s cancelled", order.ID),
					CreatedAt: now,
				}
				if err := s.movementRepo.Create(ctx, movement); err != nil {
					return fmt.Errorf("failed to record return movement: %w", err)
				}
				if _, err := s.inventoryRepo.Adjust(ctx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		order.Status = status
		order.UpdatedAt = time.Now()
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// DeleteOrder removes an order and everything hanging off it
func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orderRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("failed to find order: %w", err)
	}
	return s.orderRepo.Delete(ctx, id)
}
