package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CartView is a cart with its items and computed totals
type CartView struct {
	Cart   *domain.Cart       `json:"cart"`
	Items  []*domain.CartItem `json:"items"`
	Totals domain.CartTotals  `json:"totals"`
}

// CartService defines the interface for shopping cart operations
type CartService interface {
	GetOrCreateCart(ctx context.Context, userID *uuid.UUID, sessionID string) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type cartService struct {
	cartRepo     repository.CartRepository
	cartItemRepo repository.CartItemRepository
	productRepo  repository.ProductRepository
	txManager    repository.TxManager
	shipping     config.ShippingConfig
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	cartItemRepo repository.CartItemRepository,
	productRepo repository.ProductRepository,
	txManager repository.TxManager,
	shipping config.ShippingConfig,
) CartService {
	return &cartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		shipping:     shipping,
	}
}

// GetOrCreateCart finds the cart for a user or anonymous session,
// creating one when none exists. Exactly one of userID and sessionID
// must be set.
func (s *cartService) GetOrCreateCart(ctx context.Context, userID *uuid.UUID, sessionID string) (*domain.Cart, error) {
	if userID == nil && sessionID == "" {
		return nil, fmt.Errorf("%w: user ID or session ID is required", ErrInvalidInput)
	}
	if userID != nil && sessionID != "" {
		return nil, fmt.Errorf("%w: cart belongs to a user or a session, not both", ErrInvalidInput)
	}

	var (
		cart *domain.Cart
		err  error
	)
	if userID != nil {
		cart, err = s.cartRepo.FindByUser(ctx, *userID)
	} else {
		cart, err = s.cartRepo.FindBySession(ctx, sessionID)
	}
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	now := time.Now()
	cart = &domain.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

// GetCart returns the cart with its items and computed totals
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartItemRepo.ListByCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	return &CartView{
		Cart:   cart,
		Items:  items,
		Totals: s.computeTotals(items),
	}, nil
}

// AddItem adds a product to the cart, snapshotting the current product
// price. Adding a product already in the cart increases its quantity
// but keeps the original snapshot.
func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	if _, err := s.cartRepo.FindByID(ctx, cartID); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product is not available", ErrInvalidInput)
	}

	var result *domain.CartItem
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		items, err := s.cartItemRepo.ListByCart(ctx, cartID)
		if err != nil {
			return fmt.Errorf("failed to list cart items: %w", err)
		}

		for _, item := range items {
			if item.ProductID == productID {
				item.Quantity += quantity
				if err := s.cartItemRepo.Update(ctx, item); err != nil {
					return fmt.Errorf("failed to update cart item: %w", err)
				}
				result = item
				return nil
			}
		}

		result = &domain.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
			CreatedAt: time.Now(),
		}
		if err := s.cartItemRepo.Create(ctx, result); err != nil {
			return fmt.Errorf("failed to create cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateItem changes the quantity of a cart item. The price snapshot
// is never touched.
func (s *cartService) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	item, err := s.cartItemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.cartItemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return s.cartItemRepo.Delete(ctx, itemID)
}

// ClearCart removes every item from the cart. Clearing an already empty
// cart succeeds.
func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.cartRepo.FindByID(ctx, cartID); err != nil {
		return err
	}
	return s.cartItemRepo.ClearCart(ctx, cartID)
}

// computeTotals derives cart totals from the item snapshots. Carts over
// the free-shipping threshold ship free; everything else, an empty cart
// included, pays the flat rate.
func (s *cartService) computeTotals(items []*domain.CartItem) domain.CartTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = round2(subtotal)

	shipping := s.shipping.FlatRate
	if subtotal > s.shipping.FreeThreshold {
		shipping = 0
	}

	return domain.CartTotals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Discount:     0,
		Total:        round2(subtotal + shipping),
	}
}

// round2 rounds a monetary amount to cents
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
