package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore is the in-memory backing store: one keyed map per entity
// behind a single RWMutex. It implements every repository interface via
// the per-aggregate accessors below, and mirrors the cascade behavior of
// the SQL schema's foreign keys so both backends observe the same rules.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]domain.User
	addresses    map[uuid.UUID]domain.Address
	categories   map[uuid.UUID]domain.Category
	products     map[uuid.UUID]domain.Product
	inventory    map[uuid.UUID]domain.Inventory // keyed by product ID
	movements    map[uuid.UUID]domain.InventoryMovement
	carts        map[uuid.UUID]domain.Cart
	cartItems    map[uuid.UUID]domain.CartItem
	orders       map[uuid.UUID]domain.Order
	orderItems   map[uuid.UUID]domain.OrderItem
	payments     map[uuid.UUID]domain.Payment
	installments map[uuid.UUID]domain.Installment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]domain.User),
		addresses:    make(map[uuid.UUID]domain.Address),
		categories:   make(map[uuid.UUID]domain.Category),
		products:     make(map[uuid.UUID]domain.Product),
		inventory:    make(map[uuid.UUID]domain.Inventory),
		movements:    make(map[uuid.UUID]domain.InventoryMovement),
		carts:        make(map[uuid.UUID]domain.Cart),
		cartItems:    make(map[uuid.UUID]domain.CartItem),
		orders:       make(map[uuid.UUID]domain.Order),
		orderItems:   make(map[uuid.UUID]domain.OrderItem),
		payments:     make(map[uuid.UUID]domain.Payment),
		installments: make(map[uuid.UUID]domain.Installment),
	}
}

// Per-aggregate repository views over the shared store.

func (s *MemoryStore) Users() UserRepository               { return &memoryUsers{s} }
func (s *MemoryStore) Addresses() AddressRepository        { return &memoryAddresses{s} }
func (s *MemoryStore) Categories() CategoryRepository      { return &memoryCategories{s} }
func (s *MemoryStore) Products() ProductRepository         { return &memoryProducts{s} }
func (s *MemoryStore) Inventory() InventoryRepository      { return &memoryInventory{s} }
func (s *MemoryStore) Movements() MovementRepository       { return &memoryMovements{s} }
func (s *MemoryStore) Carts() CartRepository               { return &memoryCarts{s} }
func (s *MemoryStore) CartItems() CartItemRepository       { return &memoryCartItems{s} }
func (s *MemoryStore) Orders() OrderRepository             { return &memoryOrders{s} }
func (s *MemoryStore) OrderItems() OrderItemRepository     { return &memoryOrderItems{s} }
func (s *MemoryStore) Payments() PaymentRepository         { return &memoryPayments{s} }
func (s *MemoryStore) Installments() InstallmentRepository { return &memoryInstallments{s} }

// TxManager returns the unit-of-work boundary for this store: the write
// lock is held for the whole function, so multi-entity operations are
// observed atomically.
func (s *MemoryStore) TxManager() TxManager { return &memoryTxManager{s} }

// memTxKey marks a context as running inside the store's write lock so
// nested repository calls skip their own locking.
type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

func (s *MemoryStore) rlock(ctx context.Context) {
	if !inMemTx(ctx) {
		s.mu.RLock()
	}
}

func (s *MemoryStore) runlock(ctx context.Context) {
	if !inMemTx(ctx) {
		s.mu.RUnlock()
	}
}

func (s *MemoryStore) wlock(ctx context.Context) {
	if !inMemTx(ctx) {
		s.mu.Lock()
	}
}

func (s *MemoryStore) wunlock(ctx context.Context) {
	if !inMemTx(ctx) {
		s.mu.Unlock()
	}
}

type memoryTxManager struct {
	store *MemoryStore
}

func (m *memoryTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// Note: the memory transaction serializes writers but does not roll back
// map mutations on error. Services therefore order their writes so that
// validation and lookups happen before the first mutation.

// copy helpers for values that carry reference fields

func copyProduct(p domain.Product) domain.Product {
	cp := p
	cp.Images = append([]string(nil), p.Images...)
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		cp.OriginalPrice = &v
	}
	return cp
}

func copyCart(c domain.Cart) domain.Cart {
	cp := c
	if c.UserID != nil {
		v := *c.UserID
		cp.UserID = &v
	}
	return cp
}

func copyMovement(m domain.InventoryMovement) domain.InventoryMovement {
	cp := m
	if m.CreatedBy != nil {
		v := *m.CreatedBy
		cp.CreatedBy = &v
	}
	return cp
}

func copyInstallment(i domain.Installment) domain.Installment {
	cp := i
	if i.PaidAt != nil {
		v := *i.PaidAt
		cp.PaidAt = &v
	}
	return cp
}
