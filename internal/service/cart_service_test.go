package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestGetOrCreateCartRequiresExactlyOneIdentity(t *testing.T) {
	f := newFixtures(t)
	svc := f.cartService()
	ctx := context.Background()

	if _, err := svc.GetOrCreateCart(ctx, nil, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput with no identity, got %v", err)
	}
	if _, err := svc.GetOrCreateCart(ctx, &f.user.ID, "sess-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput with both identities, got %v", err)
	}

	cart, err := svc.GetOrCreateCart(ctx, nil, "sess-1")
	if err != nil {
		t.Fatalf("session cart failed: %v", err)
	}
	again, err := svc.GetOrCreateCart(ctx, nil, "sess-1")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if cart.ID != again.ID {
		t.Errorf("same session got two carts: %s and %s", cart.ID, again.ID)
	}
}

func TestAddItemSnapshotsPriceAndMergesLines(t *testing.T) {
	f := newFixtures(t)
	svc := f.cartService()
	ctx := context.Background()
	product := f.seedProduct(t, 19.90, 100)

	cart, err := svc.GetOrCreateCart(ctx, &f.user.ID, "")
	if err != nil {
		t.Fatalf("cart failed: %v", err)
	}

	item, err := svc.AddItem(ctx, cart.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if item.Price != 19.90 {
		t.Errorf("snapshot price = %v, want 19.90", item.Price)
	}

	// A price change after the add must not touch the snapshot.
	product.Price = 29.90
	if err := f.store.Products().Update(ctx, product); err != nil {
		t.Fatalf("product update failed: %v", err)
	}

	merged, err := svc.AddItem(ctx, cart.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if merged.ID != item.ID {
		t.Errorf("duplicate product created a second line")
	}
	if merged.Quantity != 5 {
		t.Errorf("merged quantity = %d, want 5", merged.Quantity)
	}
	if merged.Price != 19.90 {
		t.Errorf("merge recomputed the snapshot: %v", merged.Price)
	}

	view, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("got %d lines, want 1", len(view.Items))
	}
	if view.Totals.Subtotal != 99.50 {
		t.Errorf("subtotal = %v, want 99.50", view.Totals.Subtotal)
	}
}

func TestCartTotalsShipping(t *testing.T) {
	cases := []struct {
		name         string
		price        float64
		quantity     int
		wantShipping float64
	}{
		{name: "below threshold pays flat rate", price: 100, quantity: 3, wantShipping: 50},
		{name: "at threshold still pays", price: 500, quantity: 1, wantShipping: 50},
		{name: "above threshold ships free", price: 500.01, quantity: 1, wantShipping: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixtures(t)
			svc := f.cartService()
			ctx := context.Background()
			product := f.seedProduct(t, tc.price, 100)

			cart, err := svc.GetOrCreateCart(ctx, &f.user.ID, "")
			if err != nil {
				t.Fatalf("cart failed: %v", err)
			}
			if _, err := svc.AddItem(ctx, cart.ID, product.ID, tc.quantity); err != nil {
				t.Fatalf("add item failed: %v", err)
			}

			view, err := svc.GetCart(ctx, cart.ID)
			if err != nil {
				t.Fatalf("get cart failed: %v", err)
			}
			if view.Totals.ShippingCost != tc.wantShipping {
				t.Errorf("shipping = %v, want %v", view.Totals.ShippingCost, tc.wantShipping)
			}
			wantTotal := view.Totals.Subtotal + tc.wantShipping
			if math.Abs(view.Totals.Total-wantTotal) > 0.001 {
				t.Errorf("total = %v, want %v", view.Totals.Total, wantTotal)
			}
		})
	}
}

func TestEmptyCartStillOwesFlatShipping(t *testing.T) {
	f := newFixtures(t)
	svc := f.cartService()
	ctx := context.Background()

	cart, err := svc.GetOrCreateCart(ctx, &f.user.ID, "")
	if err != nil {
		t.Fatalf("cart failed: %v", err)
	}

	view, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.Totals.Subtotal != 0 {
		t.Errorf("subtotal = %v, want 0", view.Totals.Subtotal)
	}
	if view.Totals.ShippingCost != testShipping.FlatRate {
		t.Errorf("shipping = %v, want %v", view.Totals.ShippingCost, testShipping.FlatRate)
	}
	if view.Totals.Total != testShipping.FlatRate {
		t.Errorf("total = %v, want %v", view.Totals.Total, testShipping.FlatRate)
	}
}

func TestRemoveAndClearItems(t *testing.T) {
	f := newFixtures(t)
	svc := f.cartService()
	ctx := context.Background()
	first := f.seedProduct(t, 10, 100)
	second := f.seedProduct(t, 20, 100)

	cart, err := svc.GetOrCreateCart(ctx, &f.user.ID, "")
	if err != nil {
		t.Fatalf("cart failed: %v", err)
	}
	item, err := svc.AddItem(ctx, cart.ID, first.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, cart.ID, second.ID, 1); err != nil {
		t.Fatalf("add second item failed: %v", err)
	}

	if _, err := svc.UpdateItem(ctx, item.ID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero quantity, got %v", err)
	}

	if err := svc.RemoveItem(ctx, item.ID); err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	view, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("got %d lines after removal, want 1", len(view.Items))
	}

	if err := svc.ClearCart(ctx, cart.ID); err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if err := svc.ClearCart(ctx, cart.ID); err != nil {
		t.Fatalf("clearing an empty cart should succeed: %v", err)
	}
	view, err = svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("got %d lines after clearing, want 0", len(view.Items))
	}
}

func TestAddItemRejectsUnknownAndInactiveProducts(t *testing.T) {
	f := newFixtures(t)
	svc := f.cartService()
	ctx := context.Background()

	cart, err := svc.GetOrCreateCart(ctx, &f.user.ID, "")
	if err != nil {
		t.Fatalf("cart failed: %v", err)
	}

	if _, err := svc.AddItem(ctx, cart.ID, uuid.New(), 1); err == nil {
		t.Fatal("expected error for unknown product")
	}

	product := f.seedProduct(t, 10, 100)
	product.IsActive = false
	if err := f.store.Products().Update(ctx, product); err != nil {
		t.Fatalf("product update failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, cart.ID, product.ID, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inactive product, got %v", err)
	}
}
