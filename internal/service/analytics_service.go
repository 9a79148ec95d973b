package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   float64         `json:"total_revenue"`
	TotalProducts  int             `json:"total_products"`
	TotalCustomers int             `json:"total_customers"`
	LowStockCount  int             `json:"low_stock_count"`
	RecentOrders   []*domain.Order `json:"recent_orders"`
}

// SalesReport aggregates orders placed within a period
type SalesReport struct {
	Period     string    `json:"period"`
	From       time.Time `json:"from"`
	OrderCount int       `json:"order_count"`
	TotalSales float64   `json:"total_sales"`
}

// AnalyticsService defines the interface for reporting
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	Sales(ctx context.Context, period string) (*SalesReport, error)
}

type analyticsService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	inventoryRepo repository.InventoryRepository
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	inventoryRepo repository.InventoryRepository,
) AnalyticsService {
	return &analyticsService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		inventoryRepo: inventoryRepo,
	}
}

// Dashboard aggregates counters across the store. Revenue counts every
// order that was not cancelled.
func (s *analyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orderRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	products, err := s.productRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	lowStock, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	var revenue float64
	for _, o := range orders {
		if o.Status != domain.OrderCancelled {
			revenue += o.Total
		}
	}

	customers := 0
	for _, u := range users {
		if u.Role == domain.RoleCustomer {
			customers++
		}
	}

	recent := make([]*domain.Order, len(orders))
	copy(recent, orders)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &DashboardStats{
		TotalOrders:    len(orders),
		TotalRevenue:   round2(revenue),
		TotalProducts:  len(products),
		TotalCustomers: customers,
		LowStockCount:  len(lowStock),
		RecentOrders:   recent,
	}, nil
}

// Sales sums orders placed in the trailing week, month or year
func (s *analyticsService) Sales(ctx context.Context, period string) (*SalesReport, error) {
	now := time.Now()
	var from time.Time

	switch period {
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
	default:
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}

	orders, err := s.orderRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	report := &SalesReport{Period: period, From: from}
	for _, o := range orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		if o.CreatedAt.Before(from) {
			continue
		}
		report.OrderCount++
		report.TotalSales += o.Total
	}
	report.TotalSales = round2(report.TotalSales)

	return report, nil
}
