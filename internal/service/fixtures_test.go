package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var testShipping = config.ShippingConfig{FreeThreshold: 500, FlatRate: 50}

// fixtures bundles an in-memory store with pre-seeded rows the tests
// share. Each test gets its own store.
type fixtures struct {
	store    *repository.MemoryStore
	user     *domain.User
	address  *domain.Address
	category *domain.Category
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Test Customer",
		Email:        "customer-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
	}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	address := &domain.Address{
		ID:           uuid.New(),
		UserID:       user.ID,
		Street:       "Main Street",
		Number:       "42",
		Neighborhood: "Downtown",
		City:         "Springfield",
		State:        "IL",
		ZipCode:      "62701",
		IsDefault:    true,
		CreatedAt:    time.Now(),
	}
	if err := store.Addresses().Create(ctx, address); err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      "General",
		Slug:      "general",
		CreatedAt: time.Now(),
	}
	if err := store.Categories().Create(ctx, category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	return &fixtures{store: store, user: user, address: address, category: category}
}

// seedProduct creates an active product with the given price and stock
func (f *fixtures) seedProduct(t *testing.T, price float64, stock int) *domain.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	product := &domain.Product{
		ID:         uuid.New(),
		CategoryID: f.category.ID,
		Name:       "Widget",
		Slug:       "widget-" + uuid.NewString()[:8],
		Price:      price,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.store.Products().Create(ctx, product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := f.store.Inventory().Create(ctx, &domain.Inventory{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  stock,
		MinStock:  domain.DefaultMinStock,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}
	return product
}

func (f *fixtures) cartService() CartService {
	return NewCartService(f.store.Carts(), f.store.CartItems(), f.store.Products(), f.store.TxManager(), testShipping)
}

func (f *fixtures) orderService() OrderService {
	return NewOrderService(
		f.store.Orders(), f.store.OrderItems(), f.store.Products(),
		f.store.Inventory(), f.store.Movements(), f.store.Users(),
		f.store.Addresses(), f.store.CartItems(), f.store.TxManager(),
		testShipping,
	)
}

func (f *fixtures) paymentService() PaymentService {
	return NewPaymentService(f.store.Payments(), f.store.Installments(), f.store.Orders(), f.store.TxManager())
}

func (f *fixtures) inventoryService() InventoryService {
	return NewInventoryService(f.store.Inventory(), f.store.Movements(), f.store.TxManager())
}
