package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/storefront/internal/model"
)

// OrderService reads a user's order history.
type OrderService struct {
	orders OrderRepositoryInterface
}

// NewOrderService creates an OrderService with the given repository.
func NewOrderService(orders OrderRepositoryInterface) *OrderService {
	return &OrderService{orders: orders}
}

// History returns the user's orders newest first, their frozen lines, lifetime spend and level.
func (s *OrderService) History(ctx context.Context, userID int64) (*model.OrderHistory, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	lines := []model.OrderLine{}
	if len(orders) > 0 {
		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		lines, err = s.orders.ListLines(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list order lines: %w", err)
		}
	} else {
		orders = []model.Order{}
	}

	lifetime, err := s.orders.LifetimeSpend(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("lifetime spend: %w", err)
	}

	return &model.OrderHistory{
		Orders:   orders,
		Items:    lines,
		Lifetime: lifetime,
		Level:    model.TierFor(lifetime),
	}, nil
}
