package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/pkg/database"
)

func TestOrderService_History(t *testing.T) {
	var askedIDs []int64
	orders := &mockOrderRepository{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Order, error) {
			return []model.Order{{ID: 9, TotalPrice: 80000}, {ID: 4, TotalPrice: 30000}}, nil
		},
		listLinesFn: func(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error) {
			askedIDs = orderIDs
			return []model.OrderLine{{OrderID: 9, ProductID: 1, Name: "lamp", Price: 40000, Quantity: 2}}, nil
		},
		lifetimeSpendFn: func(ctx context.Context, q database.TxQuerier, userID int64) (int64, error) {
			return 110000, nil
		},
	}
	svc := NewOrderService(orders)

	history, err := svc.History(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, askedIDs)
	assert.Len(t, history.Orders, 2)
	assert.Len(t, history.Items, 1)
	assert.Equal(t, int64(110000), history.Lifetime)
	assert.Equal(t, model.TierLV10, history.Level)
}

func TestOrderService_History_NoOrders(t *testing.T) {
	orders := &mockOrderRepository{
		listLinesFn: func(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error) {
			t.Fatal("no line lookup without orders")
			return nil, nil
		},
	}
	svc := NewOrderService(orders)

	history, err := svc.History(context.Background(), 42)

	require.NoError(t, err)
	assert.NotNil(t, history.Orders)
	assert.NotNil(t, history.Items)
	assert.Equal(t, model.TierLV1, history.Level)
}

func TestOrderService_History_LoginRequired(t *testing.T) {
	_, err := NewOrderService(&mockOrderRepository{}).History(context.Background(), 0)
	assert.ErrorIs(t, err, ErrLoginRequired)
}
