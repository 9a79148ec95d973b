package repository

import (
	"context"
	"sort"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type memoryCarts struct {
	store *MemoryStore
}

func (r *memoryCarts) Create(ctx context.Context, cart *domain.Cart) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.carts[cart.ID] = copyCart(*cart)
	return nil
}

func (r *memoryCarts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	cart, ok := r.store.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := copyCart(cart)
	return &cp, nil
}

func (r *memoryCarts) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	var newest *domain.Cart
	for _, cart := range r.store.carts {
		if cart.UserID == nil || *cart.UserID != userID {
			continue
		}
		if newest == nil || cart.CreatedAt.After(newest.CreatedAt) {
			cp := copyCart(cart)
			newest = &cp
		}
	}
	if newest == nil {
		return nil, ErrCartNotFound
	}
	return newest, nil
}

func (r *memoryCarts) FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	var newest *domain.Cart
	for _, cart := range r.store.carts {
		if cart.SessionID == "" || cart.SessionID != sessionID {
			continue
		}
		if newest == nil || cart.CreatedAt.After(newest.CreatedAt) {
			cp := copyCart(cart)
			newest = &cp
		}
	}
	if newest == nil {
		return nil, ErrCartNotFound
	}
	return newest, nil
}

// Delete removes the cart and, mirroring the schema cascade, its items
func (r *memoryCarts) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.carts[id]; !ok {
		return ErrCartNotFound
	}
	delete(r.store.carts, id)
	for itemID, item := range r.store.cartItems {
		if item.CartID == id {
			delete(r.store.cartItems, itemID)
		}
	}
	return nil
}

type memoryCartItems struct {
	store *MemoryStore
}

func (r *memoryCartItems) Create(ctx context.Context, item *domain.CartItem) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.cartItems[item.ID] = *item
	return nil
}

func (r *memoryCartItems) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	item, ok := r.store.cartItems[id]
	if !ok {
		return nil, ErrCartItemNotFound
	}
	cp := item
	return &cp, nil
}

func (r *memoryCartItems) ListByCart(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	items := []*domain.CartItem{}
	for _, item := range r.store.cartItems {
		if item.CartID == cartID {
			cp := item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *memoryCartItems) Update(ctx context.Context, item *domain.CartItem) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	existing, ok := r.store.cartItems[item.ID]
	if !ok {
		return ErrCartItemNotFound
	}
	// Only the quantity is mutable; the snapshot price stays fixed.
	existing.Quantity = item.Quantity
	r.store.cartItems[item.ID] = existing
	return nil
}

func (r *memoryCartItems) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.cartItems[id]; !ok {
		return ErrCartItemNotFound
	}
	delete(r.store.cartItems, id)
	return nil
}

func (r *memoryCartItems) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	for itemID, item := range r.store.cartItems {
		if item.CartID == cartID {
			delete(r.store.cartItems, itemID)
		}
	}
	return nil
}

type memoryOrders struct {
	store *MemoryStore
}

func (r *memoryOrders) Create(ctx context.Context, order *domain.Order) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.orders[order.ID] = *order
	return nil
}

func (r *memoryOrders) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	order, ok := r.store.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := order
	return &cp, nil
}

func (r *memoryOrders) List(ctx context.Context, userID *uuid.UUID) ([]*domain.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	orders := []*domain.Order{}
	for _, order := range r.store.orders {
		if userID != nil && order.UserID != *userID {
			continue
		}
		cp := order
		orders = append(orders, &cp)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memoryOrders) Update(ctx context.Context, order *domain.Order) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}
	r.store.orders[order.ID] = *order
	return nil
}

func (r *memoryOrders) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.orders[id]; !ok {
		return ErrOrderNotFound
	}
	r.store.deleteOrderCascade(id)
	return nil
}

// deleteOrderCascade removes an order with its items, payment and
// installments. Callers must hold the write lock.
func (s *MemoryStore) deleteOrderCascade(orderID uuid.UUID) {
	delete(s.orders, orderID)
	for itemID, item := range s.orderItems {
		if item.OrderID == orderID {
			delete(s.orderItems, itemID)
		}
	}
	for paymentID, payment := range s.payments {
		if payment.OrderID == orderID {
			delete(s.payments, paymentID)
			for instID, installment := range s.installments {
				if installment.PaymentID == paymentID {
					delete(s.installments, instID)
				}
			}
		}
	}
}

type memoryOrderItems struct {
	store *MemoryStore
}

func (r *memoryOrderItems) Create(ctx context.Context, item *domain.OrderItem) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.orderItems[item.ID] = *item
	return nil
}

func (r *memoryOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	items := []*domain.OrderItem{}
	for _, item := range r.store.orderItems {
		if item.OrderID == orderID {
			cp := item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

type memoryPayments struct {
	store *MemoryStore
}

func (r *memoryPayments) Create(ctx context.Context, payment *domain.Payment) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *memoryPayments) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	payment, ok := r.store.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := payment
	return &cp, nil
}

func (r *memoryPayments) FindByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	var newest *domain.Payment
	for _, payment := range r.store.payments {
		if payment.OrderID != orderID {
			continue
		}
		if newest == nil || payment.CreatedAt.After(newest.CreatedAt) {
			cp := payment
			newest = &cp
		}
	}
	if newest == nil {
		return nil, ErrPaymentNotFound
	}
	return newest, nil
}

func (r *memoryPayments) List(ctx context.Context) ([]*domain.Payment, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	payments := make([]*domain.Payment, 0, len(r.store.payments))
	for _, payment := range r.store.payments {
		cp := payment
		payments = append(payments, &cp)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

func (r *memoryPayments) Update(ctx context.Context, payment *domain.Payment) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.payments[payment.ID]; !ok {
		return ErrPaymentNotFound
	}
	r.store.payments[payment.ID] = *payment
	return nil
}

type memoryInstallments struct {
	store *MemoryStore
}

func (r *memoryInstallments) Create(ctx context.Context, installment *domain.Installment) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.installments[installment.ID] = copyInstallment(*installment)
	return nil
}

func (r *memoryInstallments) FindByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	installment, ok := r.store.installments[id]
	if !ok {
		return nil, ErrInstallmentNotFound
	}
	cp := copyInstallment(installment)
	return &cp, nil
}

func (r *memoryInstallments) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Installment, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	installments := []*domain.Installment{}
	for _, installment := range r.store.installments {
		if installment.PaymentID == paymentID {
			cp := copyInstallment(installment)
			installments = append(installments, &cp)
		}
	}
	sort.Slice(installments, func(i, j int) bool {
		return installments[i].Number < installments[j].Number
	})
	return installments, nil
}

func (r *memoryInstallments) Update(ctx context.Context, installment *domain.Installment) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.installments[installment.ID]; !ok {
		return ErrInstallmentNotFound
	}
	r.store.installments[installment.ID] = copyInstallment(*installment)
	return nil
}
