package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

func newAnalytics(f *fixtures) AnalyticsService {
	return NewAnalyticsService(f.store.Orders(), f.store.Products(), f.store.Users(), f.store.Inventory())
}

func TestDashboardRevenueExcludesCancelledOrders(t *testing.T) {
	f := newFixtures(t)
	orderSvc := f.orderService()
	ctx := context.Background()
	product := f.seedProduct(t, 100, 50)

	kept, err := orderSvc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	cancelled, err := orderSvc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    f.user.ID,
		AddressID: f.address.ID,
		Items:     []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if _, err := orderSvc.UpdateStatus(ctx, cancelled.Order.ID, domain.OrderCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	stats, err := newAnalytics(f).Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if stats.TotalOrders != 2 {
		t.Errorf("total orders = %d, want 2", stats.TotalOrders)
	}
	if stats.TotalRevenue != kept.Order.Total {
		t.Errorf("revenue = %v, want %v", stats.TotalRevenue, kept.Order.Total)
	}
	if stats.TotalProducts != 1 {
		t.Errorf("products = %d, want 1", stats.TotalProducts)
	}
	if stats.TotalCustomers != 1 {
		t.Errorf("customers = %d, want 1", stats.TotalCustomers)
	}
	if len(stats.RecentOrders) != 2 {
		t.Errorf("recent orders = %d, want 2", len(stats.RecentOrders))
	}
}

func TestSalesReportRejectsUnknownPeriod(t *testing.T) {
	f := newFixtures(t)
	svc := newAnalytics(f)
	ctx := context.Background()

	for _, period := range []string{"week", "month", "year"} {
		report, err := svc.Sales(ctx, period)
		if err != nil {
			t.Fatalf("sales(%s) failed: %v", period, err)
		}
		if report.Period != period {
			t.Errorf("period = %q, want %q", report.Period, period)
		}
	}

	if _, err := svc.Sales(ctx, "fortnight"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
