package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fairyhunter13/storefront/internal/model"
)

// CartService manages the per-user shopping cart.
type CartService struct {
	pool            TxBeginner
	products        ProductRepositoryInterface
	carts           CartRepositoryInterface
	baseShippingFee int64
	now             func() time.Time
}

// NewCartService creates a CartService with the given pool and repositories.
func NewCartService(pool TxBeginner, products ProductRepositoryInterface, carts CartRepositoryInterface, baseShippingFee int64) *CartService {
	return &CartService{
		pool:            pool,
		products:        products,
		carts:           carts,
		baseShippingFee: baseShippingFee,
		now:             time.Now,
	}
}

// AddItem adds quantity to the cart line for the product, capping the line at current stock.
// Returns ErrOutOfStock when the product has no stock left.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) error {
	if userID <= 0 {
		return ErrLoginRequired
	}
	if req == nil || req.ProductID <= 0 {
		return ErrInvalidRequest
	}
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	product, err := s.products.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("get product for update: %w", err)
	}
	if product.Stock <= 0 {
		return ErrOutOfStock
	}

	if err := s.carts.Upsert(ctx, tx, userID, req.ProductID, req.Quantity, product.Stock); err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateItem sets the line quantity. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID int64, req *model.UpdateCartItemRequest) error {
	if userID <= 0 {
		return ErrLoginRequired
	}
	if req == nil || req.ProductID <= 0 || req.Quantity == nil {
		return ErrInvalidRequest
	}

	qty := *req.Quantity
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, req.ProductID)
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: product %d requested %d, available %d", ErrOutOfStock, product.ID, qty, product.Stock)
	}

	if err := s.carts.SetQuantity(ctx, userID, req.ProductID, qty); err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

// RemoveItem deletes the cart line. Removing a missing line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	if userID <= 0 {
		return ErrLoginRequired
	}
	if productID <= 0 {
		return ErrInvalidRequest
	}
	if err := s.carts.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

// View returns the priced cart without locking or stock validation. An empty cart is not an error.
func (s *CartService) View(ctx context.Context, userID int64) (*model.CartView, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	lines, err := s.carts.GetLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}

	agg := priceLines(lines, s.now(), s.baseShippingFee)
	items := agg.Lines
	if items == nil {
		items = []model.CartLine{}
	}
	return &model.CartView{
		Items:       items,
		Subtotal:    agg.Subtotal,
		ShippingFee: agg.BaseShippingFee,
	}, nil
}
