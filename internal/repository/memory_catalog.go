package repository

import (
	"context"
	"sort"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type memoryCategories struct {
	store *MemoryStore
}

func (r *memoryCategories) Create(ctx context.Context, category *domain.Category) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	for _, existing := range r.store.categories {
		if existing.Name == category.Name || existing.Slug == category.Slug {
			return ErrCategoryAlreadyExists
		}
	}
	r.store.categories[category.ID] = *category
	return nil
}

func (r *memoryCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	category, ok := r.store.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	cp := category
	return &cp, nil
}

func (r *memoryCategories) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, category := range r.store.categories {
		if category.Slug == slug {
			cp := category
			return &cp, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (r *memoryCategories) List(ctx context.Context) ([]*domain.Category, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	categories := make([]*domain.Category, 0, len(r.store.categories))
	for _, category := range r.store.categories {
		cp := category
		categories = append(categories, &cp)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *memoryCategories) Update(ctx context.Context, category *domain.Category) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.categories[category.ID]; !ok {
		return ErrCategoryNotFound
	}
	for id, existing := range r.store.categories {
		if id != category.ID && (existing.Name == category.Name || existing.Slug == category.Slug) {
			return ErrCategoryAlreadyExists
		}
	}
	r.store.categories[category.ID] = *category
	return nil
}

func (r *memoryCategories) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(r.store.categories, id)
	return nil
}

type memoryProducts struct {
	store *MemoryStore
}

func (r *memoryProducts) Create(ctx context.Context, product *domain.Product) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	for _, existing := range r.store.products {
		if existing.Slug == product.Slug || (product.SKU != "" && existing.SKU == product.SKU) {
			return ErrProductAlreadyExists
		}
	}
	r.store.products[product.ID] = copyProduct(*product)
	return nil
}

func (r *memoryProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	product, ok := r.store.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := copyProduct(product)
	return &cp, nil
}

func (r *memoryProducts) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, product := range r.store.products {
		if product.Slug == slug {
			cp := copyProduct(product)
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *memoryProducts) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	for _, product := range r.store.products {
		if product.SKU != "" && product.SKU == sku {
			cp := copyProduct(product)
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *memoryProducts) List(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	products := []*domain.Product{}
	for _, product := range r.store.products {
		if categoryID != nil && product.CategoryID != *categoryID {
			continue
		}
		cp := copyProduct(product)
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (r *memoryProducts) Update(ctx context.Context, product *domain.Product) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.products[product.ID]; !ok {
		return ErrProductNotFound
	}
	for id, existing := range r.store.products {
		if id == product.ID {
			continue
		}
		if existing.Slug == product.Slug || (product.SKU != "" && existing.SKU == product.SKU) {
			return ErrProductAlreadyExists
		}
	}
	r.store.products[product.ID] = copyProduct(*product)
	return nil
}

// Delete removes the product and everything the schema cascades from it:
// the inventory row, the movement log and any cart items referencing it.
func (r *memoryProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.store.products, id)
	delete(r.store.inventory, id)
	for movID, movement := range r.store.movements {
		if movement.ProductID == id {
			delete(r.store.movements, movID)
		}
	}
	for itemID, item := range r.store.cartItems {
		if item.ProductID == id {
			delete(r.store.cartItems, itemID)
		}
	}
	return nil
}

type memoryInventory struct {
	store *MemoryStore
}

func (r *memoryInventory) Create(ctx context.Context, inventory *domain.Inventory) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.inventory[inventory.ProductID] = *inventory
	return nil
}

func (r *memoryInventory) FindByProduct(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	inventory, ok := r.store.inventory[productID]
	if !ok {
		return nil, ErrInventoryNotFound
	}
	cp := inventory
	return &cp, nil
}

func (r *memoryInventory) List(ctx context.Context) ([]*domain.Inventory, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	items := make([]*domain.Inventory, 0, len(r.store.inventory))
	for _, inventory := range r.store.inventory {
		cp := inventory
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

func (r *memoryInventory) ListLowStock(ctx context.Context) ([]*domain.Inventory, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	items := []*domain.Inventory{}
	for _, inventory := range r.store.inventory {
		if inventory.Quantity <= inventory.MinStock {
			cp := inventory
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Quantity < items[j].Quantity
	})
	return items, nil
}

func (r *memoryInventory) Update(ctx context.Context, inventory *domain.Inventory) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if _, ok := r.store.inventory[inventory.ProductID]; !ok {
		return ErrInventoryNotFound
	}
	r.store.inventory[inventory.ProductID] = *inventory
	return nil
}

func (r *memoryInventory) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*domain.Inventory, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	inventory, ok := r.store.inventory[productID]
	if !ok {
		return nil, ErrInventoryNotFound
	}
	inventory.Quantity += delta
	inventory.UpdatedAt = time.Now().UTC()
	r.store.inventory[productID] = inventory
	cp := inventory
	return &cp, nil
}

type memoryMovements struct {
	store *MemoryStore
}

func (r *memoryMovements) Create(ctx context.Context, movement *domain.InventoryMovement) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	r.store.movements[movement.ID] = copyMovement(*movement)
	return nil
}

func (r *memoryMovements) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryMovement, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	movement, ok := r.store.movements[id]
	if !ok {
		return nil, ErrMovementNotFound
	}
	cp := copyMovement(movement)
	return &cp, nil
}

func (r *memoryMovements) List(ctx context.Context, productID *uuid.UUID) ([]*domain.InventoryMovement, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	movements := []*domain.InventoryMovement{}
	for _, movement := range r.store.movements {
		if productID != nil && movement.ProductID != *productID {
			continue
		}
		cp := copyMovement(movement)
		movements = append(movements, &cp)
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	return movements, nil
}
