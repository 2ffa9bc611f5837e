package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/pkg/database"
)

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProductRepositoryInterface defines the interface for product data access.
type ProductRepositoryInterface interface {
	List(ctx context.Context, query string, limit, offset int) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error)
	ListForUpdate(ctx context.Context, tx database.TxQuerier, ids []int64) ([]model.Product, error)
	DecrementStock(ctx context.Context, tx database.TxQuerier, id int64, quantity int) error
}

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	GetLines(ctx context.Context, userID int64) ([]model.CartLine, error)
	GetLinesForUpdate(ctx context.Context, tx database.TxQuerier, userID int64) ([]model.CartLine, error)
	Upsert(ctx context.Context, tx database.TxQuerier, userID, productID int64, quantity, maxQuantity int) error
	SetQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, tx database.TxQuerier, userID int64) error
}

// UserCouponRepositoryInterface defines the interface for coupon issuance and consumption.
type UserCouponRepositoryInterface interface {
	GetForUpdate(ctx context.Context, tx database.TxQuerier, userID int64, code string) (*model.UserCoupon, error)
	MarkUsed(ctx context.Context, tx database.TxQuerier, userCouponID, orderID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.UserCoupon, error)
	Exists(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error)
	Issue(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error)
	TypesForTiers(ctx context.Context, tx database.TxQuerier, tiers []model.Tier) ([]model.CouponType, error)
	DeleteUnusedForTiers(ctx context.Context, tx database.TxQuerier, userID int64, tiers []model.Tier) (int64, error)
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, tx database.TxQuerier, order *model.Order) error
	InsertLine(ctx context.Context, tx database.TxQuerier, line model.OrderLine) error
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListLines(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error)
	// LifetimeSpend sums eligible order totals. A nil q reads outside any transaction.
	LifetimeSpend(ctx context.Context, q database.TxQuerier, userID int64) (int64, error)
}

// OrderEventPublisher emits domain events for committed orders.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error
}

// CheckoutRecorder receives checkout outcomes for metrics.
type CheckoutRecorder interface {
	RecordCheckout(ctx context.Context, outcome string, breakdown *model.Breakdown)
}

// MembershipLedger is recomputed after each committed order.
type MembershipLedger interface {
	EnsureTierCoupons(ctx context.Context, userID int64) (*model.ClaimResult, error)
}
