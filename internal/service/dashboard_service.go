package service

import (
	"context"
	"fmt"

	"german-butchery/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardStats is the admin index summary
type DashboardStats struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	TotalProducts int             `json:"total_products"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewDashboardService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) DashboardService {
	return &dashboardService{orderRepo: orderRepo, productRepo: productRepo}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orderStats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}

	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &DashboardStats{
		TotalOrders:   orderStats.TotalOrders,
		PendingOrders: orderStats.PendingOrders,
		TotalProducts: products,
		Revenue:       orderStats.Revenue,
	}, nil
}
