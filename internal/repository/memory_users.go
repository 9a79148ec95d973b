package repository

import (
	"context"
	"sort"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type memoryUsers struct {
	store *MemoryStore
}

func (r *memoryUsers) Create(ctx context.Context, user *domain.User) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	user, ok := r.store.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := user
	return &cp, nil
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, user := range r.store.users {
		if user.Email == email {
			cp := user
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUsers) Update(ctx context.Context, user *domain.User) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, existing := range r.store.users {
		if id != user.ID && existing.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	r.store.users[user.ID] = *user
	return nil
}

// Delete removes the user and everything the schema cascades from it:
// addresses, carts with their items, orders with their items and
// payments. Movement author references are cleared, not deleted.
func (r *memoryUsers) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.store.users, id)

	for addrID, addr := range r.store.addresses {
		if addr.UserID == id {
			delete(r.store.addresses, addrID)
		}
	}

	for cartID, cart := range r.store.carts {
		if cart.UserID != nil && *cart.UserID == id {
			delete(r.store.carts, cartID)
			for itemID, item := range r.store.cartItems {
				if item.CartID == cartID {
					delete(r.store.cartItems, itemID)
				}
			}
		}
	}

	for orderID, order := range r.store.orders {
		if order.UserID == id {
			r.store.deleteOrderCascade(orderID)
		}
	}

	for movID, movement := range r.store.movements {
		if movement.CreatedBy != nil && *movement.CreatedBy == id {
			movement.CreatedBy = nil
			r.store.movements[movID] = movement
		}
	}

	return nil
}

func (r *memoryUsers) List(ctx context.Context) ([]*domain.User, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	users := make([]*domain.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		cp := user
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

type memoryAddresses struct {
	store *MemoryStore
}

func (r *memoryAddresses) Create(ctx context.Context, address *domain.Address) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddresses) FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	address, ok := r.store.addresses[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	cp := address
	return &cp, nil
}

func (r *memoryAddresses) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	addresses := []*domain.Address{}
	for _, address := range r.store.addresses {
		if address.UserID == userID {
			cp := address
			addresses = append(addresses, &cp)
		}
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].CreatedAt.Before(addresses[j].CreatedAt)
	})
	return addresses, nil
}

func (r *memoryAddresses) Update(ctx context.Context, address *domain.Address) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.addresses[address.ID]; !ok {
		return ErrAddressNotFound
	}
	r.store.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddresses) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.addresses[id]; !ok {
		return ErrAddressNotFound
	}
	delete(r.store.addresses, id)
	return nil
}
