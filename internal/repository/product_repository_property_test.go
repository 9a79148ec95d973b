package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seedCategory(t *testing.T, store *MemoryStore) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      "Fixtures",
		Slug:      "fixtures-" + uuid.NewString()[:8],
		CreatedAt: time.Now(),
	}
	if err := store.Categories().Create(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func TestProperty_ProductAttributesSurviveStorage(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Products()
	category := seedCategory(t, store)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("a stored product comes back with the same attributes by id, slug and sku", prop.ForAll(
		func(name string, price float64, qtyImages int) bool {
			images := make([]string, qtyImages)
			for i := range images {
				images[i] = "https://cdn.example.com/" + uuid.NewString() + ".jpg"
			}

			product := &domain.Product{
				ID:         uuid.New(),
				CategoryID: category.ID,
				Name:       name,
				Slug:       "p-" + uuid.NewString(),
				Price:      price,
				Images:     images,
				SKU:        "SKU-" + uuid.NewString(),
				IsActive:   true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}
			if err := repo.Create(ctx, product); err != nil {
				t.Logf("failed to create product: %v", err)
				return false
			}

			byID, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("failed to find by id: %v", err)
				return false
			}
			bySlug, err := repo.FindBySlug(ctx, product.Slug)
			if err != nil {
				t.Logf("failed to find by slug: %v", err)
				return false
			}
			bySKU, err := repo.FindBySKU(ctx, product.SKU)
			if err != nil {
				t.Logf("failed to find by sku: %v", err)
				return false
			}

			for _, got := range []*domain.Product{byID, bySlug, bySKU} {
				if got.ID != product.ID || got.Name != name || got.Price != price {
					return false
				}
				if len(got.Images) != len(images) {
					return false
				}
				for i := range images {
					if got.Images[i] != images[i] {
						return false
					}
				}
			}
			return true
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}( [a-z]{2,10}){0,3}`),
		gen.Float64Range(0.01, 99999).Map(func(v float64) float64 {
			return float64(int(v*100)) / 100
		}),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_AdjustAccumulatesSignedDeltas(t *testing.T) {
	store := NewMemoryStore()
	category := seedCategory(t, store)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("quantity after a sequence of adjustments equals the initial quantity plus the sum of deltas", prop.ForAll(
		func(initial int, deltas []int) bool {
			product := &domain.Product{
				ID:         uuid.New(),
				CategoryID: category.ID,
				Name:       "Adjustable",
				Slug:       "adj-" + uuid.NewString(),
				Price:      10,
				IsActive:   true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}
			if err := store.Products().Create(ctx, product); err != nil {
				return false
			}
			if err := store.Inventory().Create(ctx, &domain.Inventory{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  initial,
				MinStock:  domain.DefaultMinStock,
				UpdatedAt: time.Now(),
			}); err != nil {
				return false
			}

			want := initial
			for _, delta := range deltas {
				updated, err := store.Inventory().Adjust(ctx, product.ID, delta)
				if err != nil {
					t.Logf("adjust failed: %v", err)
					return false
				}
				want += delta
				if updated.Quantity != want {
					t.Logf("after delta %d: got %d, want %d", delta, updated.Quantity, want)
					return false
				}
			}

			final, err := store.Inventory().FindByProduct(ctx, product.ID)
			if err != nil {
				return false
			}
			return final.Quantity == want
		},
		gen.IntRange(0, 1000),
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestListLowStockBoundary(t *testing.T) {
	store := NewMemoryStore()
	category := seedCategory(t, store)
	ctx := context.Background()

	cases := []struct {
		quantity int
		minStock int
		low      bool
	}{
		{quantity: 4, minStock: 5, low: true},
		{quantity: 5, minStock: 5, low: true},
		{quantity: 6, minStock: 5, low: false},
		{quantity: 0, minStock: 0, low: true},
	}

	lowProducts := make(map[uuid.UUID]bool)
	for _, tc := range cases {
		product := &domain.Product{
			ID:         uuid.New(),
			CategoryID: category.ID,
			Name:       "Stocked",
			Slug:       "low-" + uuid.NewString(),
			Price:      10,
			IsActive:   true,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := store.Products().Create(ctx, product); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
		if err := store.Inventory().Create(ctx, &domain.Inventory{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  tc.quantity,
			MinStock:  tc.minStock,
			UpdatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("failed to create inventory: %v", err)
		}
		if tc.low {
			lowProducts[product.ID] = true
		}
	}

	low, err := store.Inventory().ListLowStock(ctx)
	if err != nil {
		t.Fatalf("ListLowStock failed: %v", err)
	}
	if len(low) != len(lowProducts) {
		t.Fatalf("got %d low-stock rows, want %d", len(low), len(lowProducts))
	}
	for _, inv := range low {
		if !lowProducts[inv.ProductID] {
			t.Errorf("product %s reported low on %d/%d", inv.ProductID, inv.Quantity, inv.MinStock)
		}
	}
}
