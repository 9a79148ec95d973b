package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func TestPlaceOrderSnapshotsPricesAndDecrementsStock(t *testing.T) {
	f := newFixtures(t)
	svc := f.orderService()
	ctx := context.Background()

	laptop := f.seedProduct(t, 45.50, 10)
	mouse := f.seedProduct(t, 8.25, 20)

	view, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items: []OrderItemInput{
			{ProductID: laptop.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if view.Order.Status != domain.OrderPending {
		t.Errorf("status = %s, want pending", view.Order.Status)
	}
	if view.Order.Subtotal != 124.00 {
		t.Errorf("subtotal = %v, want 124.00", view.Order.Subtotal)
	}
	if view.Order.ShippingCost != 50 {
		t.Errorf("shipping = %v, want 50", view.Order.ShippingCost)
	}
	if view.Order.Total != 174.00 {
		t.Errorf("total = %v, want 174.00", view.Order.Total)
	}
	if len(view.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(view.Items))
	}

	inv, err := f.store.Inventory().FindByProduct(ctx, laptop.ID)
	if err != nil {
		t.Fatalf("inventory lookup failed: %v", err)
	}
	if inv.Quantity != 8 {
		t.Errorf("laptop stock = %d, want 8", inv.Quantity)
	}

	movements, err := f.store.Movements().List(ctx, &laptop.ID)
	if err != nil {
		t.Fatalf("movement list failed: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != domain.MovementSale || movements[0].Quantity != 2 {
		t.Errorf("expected one sale movement of 2, got %+v", movements)
	}
}

func TestPlaceOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	f := newFixtures(t)
	svc := f.orderService()
	ctx := context.Background()

	plenty := f.seedProduct(t, 10, 100)
	scarce := f.seedProduct(t, 10, 1)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items: []OrderItemInput{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	inv, err := f.store.Inventory().FindByProduct(ctx, plenty.ID)
	if err != nil {
		t.Fatalf("inventory lookup failed: %v", err)
	}
	if inv.Quantity != 100 {
		t.Errorf("stock changed on failed order: %d", inv.Quantity)
	}

	orders, err := f.store.Orders().List(ctx, &f.user.ID)
	if err != nil {
		t.Fatalf("order list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("failed order was persisted: %d orders", len(orders))
	}

	movements, err := f.store.Movements().List(ctx, nil)
	if err != nil {
		t.Fatalf("movement list failed: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("failed order recorded %d movements", len(movements))
	}
}

func TestPlaceOrderFromCartClearsIt(t *testing.T) {
	f := newFixtures(t)
	orderSvc := f.orderService()
	cartSvc := f.cartService()
	ctx := context.Background()

	product := f.seedProduct(t, 30, 10)
	cart, err := cartSvc.GetOrCreateCart(ctx, &f.user.ID, "")
	if err != nil {
		t.Fatalf("cart failed: %v", err)
	}
	if _, err := cartSvc.AddItem(ctx, cart.ID, product.ID, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	_, err = orderSvc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		CartID:    &cart.ID,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	view, err := cartSvc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("cart still has %d items after checkout", len(view.Items))
	}
}

func TestPlaceOrderRejectsForeignAddress(t *testing.T) {
	f := newFixtures(t)
	svc := f.orderService()
	ctx := context.Background()
	product := f.seedProduct(t, 10, 10)

	users := newUserService(f)
	second, err := users.Register(ctx, RegisterInput{Name: "Other", Email: "other@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err = svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    second.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for foreign address, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newFixtures(t)
	svc := f.orderService()
	ctx := context.Background()
	product := f.seedProduct(t, 25, 10)

	view, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	cancelled, err := svc.UpdateStatus(ctx, view.Order.ID, domain.OrderCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.OrderCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	inv, err := f.store.Inventory().FindByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("inventory lookup failed: %v", err)
	}
	if inv.Quantity != 10 {
		t.Errorf("stock = %d after cancel, want 10", inv.Quantity)
	}

	movements, err := f.store.Movements().List(ctx, &product.ID)
	if err != nil {
		t.Fatalf("movement list failed: %v", err)
	}
	var returns int
	for _, m := range movements {
		if m.Type == domain.MovementReturn {
			returns++
		}
	}
	if returns != 1 {
		t.Errorf("got %d return movements, want 1", returns)
	}

	// Cancelled is terminal.
	if _, err := svc.UpdateStatus(ctx, view.Order.ID, domain.OrderPending); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on reviving a cancelled order, got %v", err)
	}
}

func TestPlaceOrderDiscountCannotExceedTotal(t *testing.T) {
	f := newFixtures(t)
	svc := f.orderService()
	ctx := context.Background()
	product := f.seedProduct(t, 10, 10)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		Discount:  1000,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	inv, err := f.store.Inventory().FindByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("inventory lookup failed: %v", err)
	}
	if inv.Quantity != 10 {
		t.Errorf("stock changed on rejected order: %d", inv.Quantity)
	}
}
