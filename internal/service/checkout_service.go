package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/pkg/database"
)

var checkoutTracer = otel.Tracer("service/checkout")

// CheckoutDeps groups the collaborators of CheckoutService.
// Ledger, Publisher and Recorder are optional.
type CheckoutDeps struct {
	Products        ProductRepositoryInterface
	Carts           CartRepositoryInterface
	Coupons         UserCouponRepositoryInterface
	Orders          OrderRepositoryInterface
	Ledger          MembershipLedger
	Publisher       OrderEventPublisher
	Recorder        CheckoutRecorder
	BaseShippingFee int64
	Now             func() time.Time
}

// CheckoutService settles carts and commits them into orders.
type CheckoutService struct {
	pool            TxBeginner
	products        ProductRepositoryInterface
	carts           CartRepositoryInterface
	coupons         UserCouponRepositoryInterface
	orders          OrderRepositoryInterface
	ledger          MembershipLedger
	publisher       OrderEventPublisher
	recorder        CheckoutRecorder
	baseShippingFee int64
	now             func() time.Time
}

// NewCheckoutService creates a CheckoutService over the given pool and repositories.
func NewCheckoutService(pool TxBeginner, deps CheckoutDeps) *CheckoutService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{
		pool:            pool,
		products:        deps.Products,
		carts:           deps.Carts,
		coupons:         deps.Coupons,
		orders:          deps.Orders,
		ledger:          deps.Ledger,
		publisher:       deps.Publisher,
		recorder:        deps.Recorder,
		baseShippingFee: deps.BaseShippingFee,
		now:             now,
	}
}

// Preview settles the user's cart with an optional coupon without changing any state.
// It runs the same locked read path as Checkout and always rolls back.
func (s *CheckoutService) Preview(ctx context.Context, userID int64, couponCode string) (*model.Breakdown, error) {
	ctx, span := checkoutTracer.Start(ctx, "checkout.preview", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("coupon.present", couponCode != ""),
	))
	defer span.End()

	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }() // preview never commits

	_, _, breakdown, err := s.settleCart(ctx, tx, userID, couponCode)
	if err != nil {
		return nil, spanError(span, err)
	}
	return &breakdown, nil
}

// Checkout converts the user's cart into an order in one transaction:
// lock cart -> validate coupon -> settle -> insert order -> copy lines and decrement stock
// -> consume coupon -> clear cart -> commit. Any failure rolls everything back.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, couponCode string) (*model.CheckoutResult, error) {
	ctx, span := checkoutTracer.Start(ctx, "checkout.commit", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("coupon.present", couponCode != ""),
	))
	defer span.End()

	result, err := s.checkout(ctx, userID, couponCode)
	s.record(ctx, err, result)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.Int64("order.id", result.OrderID), attribute.Int64("order.total", result.Breakdown.Total))
	return result, nil
}

func (s *CheckoutService) checkout(ctx context.Context, userID int64, couponCode string) (*model.CheckoutResult, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	cart, coupon, breakdown, err := s.settleCart(ctx, tx, userID, couponCode)
	if err != nil {
		return nil, err
	}

	orderID, err := s.commitOrder(ctx, tx, userID, cart, coupon, breakdown)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	result := &model.CheckoutResult{OrderID: orderID, Breakdown: breakdown}
	s.afterCommit(ctx, userID, cart, result)
	return result, nil
}

// DirectCheckout purchases an explicit item list without touching the cart.
// Duplicate product ids are merged before stock is checked.
func (s *CheckoutService) DirectCheckout(ctx context.Context, userID int64, items []model.DirectItem, couponCode string) (*model.CheckoutResult, error) {
	ctx, span := checkoutTracer.Start(ctx, "checkout.direct", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("items.count", len(items)),
		attribute.Bool("coupon.present", couponCode != ""),
	))
	defer span.End()

	result, err := s.directCheckout(ctx, userID, items, couponCode)
	s.record(ctx, err, result)
	if err != nil {
		return nil, spanError(span, err)
	}
	span.SetAttributes(attribute.Int64("order.id", result.OrderID))
	return result, nil
}

func (s *CheckoutService) directCheckout(ctx context.Context, userID int64, items []model.DirectItem, couponCode string) (*model.CheckoutResult, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}
	if len(items) == 0 {
		return nil, ErrInvalidRequest
	}

	quantities, ids, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	products, err := s.products.ListForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.CartLine, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, id)
		}
		lines = append(lines, model.CartLine{
			ProductID: id,
			Name:      p.Name,
			Quantity:  quantities[id],
			Product:   p,
		})
	}

	cart, err := AggregateLines(lines, s.now(), s.baseShippingFee)
	if err != nil {
		return nil, err
	}

	coupon, err := s.validateCoupon(ctx, tx, userID, couponCode)
	if err != nil {
		return nil, err
	}

	breakdown := Settle(cart, coupon)

	orderID, err := s.commitOrder(ctx, tx, userID, cart, coupon, breakdown)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit direct checkout: %w", err)
	}

	result := &model.CheckoutResult{OrderID: orderID, Breakdown: breakdown}
	s.afterCommit(ctx, userID, cart, result)
	return result, nil
}

// settleCart is the shared read path of Preview and Checkout.
func (s *CheckoutService) settleCart(ctx context.Context, tx database.TxQuerier, userID int64, couponCode string) (*model.CartAggregate, *model.UserCoupon, model.Breakdown, error) {
	cart, err := s.loadCart(ctx, tx, userID)
	if err != nil {
		return nil, nil, model.Breakdown{}, err
	}

	coupon, err := s.validateCoupon(ctx, tx, userID, couponCode)
	if err != nil {
		return nil, nil, model.Breakdown{}, err
	}

	return cart, coupon, Settle(cart, coupon), nil
}

// loadCart reads the cart with product rows locked until the transaction ends.
func (s *CheckoutService) loadCart(ctx context.Context, tx database.TxQuerier, userID int64) (*model.CartAggregate, error) {
	lines, err := s.carts.GetLinesForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	return AggregateLines(lines, s.now(), s.baseShippingFee)
}

// validateCoupon returns nil for an empty code. The coupon row stays locked for the transaction.
func (s *CheckoutService) validateCoupon(ctx context.Context, tx database.TxQuerier, userID int64, code string) (*model.UserCoupon, error) {
	if code == "" {
		return nil, nil
	}

	coupon, err := s.coupons.GetForUpdate(ctx, tx, userID, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}

	if coupon.Used() {
		return nil, ErrCouponAlreadyUsed
	}
	if coupon.ExpiredAt(s.now()) {
		return nil, ErrCouponExpired
	}
	return coupon, nil
}

// commitOrder writes the order, its frozen lines and stock decrements, then consumes the coupon.
func (s *CheckoutService) commitOrder(ctx context.Context, tx database.TxQuerier, userID int64, cart *model.CartAggregate, coupon *model.UserCoupon, breakdown model.Breakdown) (int64, error) {
	order := &model.Order{
		UserID:     userID,
		Status:     model.OrderStatusCreated,
		TotalPrice: breakdown.Total,
	}
	if err := s.orders.Create(ctx, tx, order); err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	for _, l := range cart.Lines {
		line := model.OrderLine{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		}
		if err := s.orders.InsertLine(ctx, tx, line); err != nil {
			return 0, fmt.Errorf("insert order line: %w", err)
		}
		if err := s.products.DecrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
			if errors.Is(err, ErrOutOfStock) {
				return 0, err
			}
			return 0, fmt.Errorf("decrement stock: %w", err)
		}
	}

	if coupon != nil {
		if err := s.coupons.MarkUsed(ctx, tx, coupon.ID, order.ID); err != nil {
			if errors.Is(err, ErrCouponAlreadyUsed) {
				return 0, ErrCouponAlreadyUsed
			}
			return 0, fmt.Errorf("mark coupon used: %w", err)
		}
	}

	return order.ID, nil
}

// afterCommit runs best-effort follow-ups. Failures are logged and never undo the order.
func (s *CheckoutService) afterCommit(ctx context.Context, userID int64, cart *model.CartAggregate, result *model.CheckoutResult) {
	logEvent := log.Info().
		Int64("user_id", userID).
		Int64("order_id", result.OrderID).
		Int64("total", result.Breakdown.Total).
		Int("lines", len(cart.Lines))
	if result.Breakdown.Applied != nil {
		logEvent = logEvent.Str("coupon_code", result.Breakdown.Applied.Code)
	}
	logEvent.Msg("order committed")

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, s.orderPlacedEvent(userID, cart, result)); err != nil {
			log.Error().Err(err).Int64("order_id", result.OrderID).Msg("failed to publish order placed event")
		}
	}

	if s.ledger != nil {
		if _, err := s.ledger.EnsureTierCoupons(ctx, userID); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("membership recompute after order failed")
		}
	}
}

func (s *CheckoutService) orderPlacedEvent(userID int64, cart *model.CartAggregate, result *model.CheckoutResult) model.OrderPlacedEvent {
	lines := make([]model.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, model.OrderLine{
			OrderID:   result.OrderID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	event := model.OrderPlacedEvent{
		EventID:    uuid.NewString(),
		OrderID:    result.OrderID,
		UserID:     userID,
		Total:      result.Breakdown.Total,
		Discount:   result.Breakdown.Discount,
		Lines:      lines,
		OccurredAt: s.now().UTC(),
	}
	if result.Breakdown.Applied != nil {
		event.CouponCode = result.Breakdown.Applied.Code
	}
	return event
}

func (s *CheckoutService) record(ctx context.Context, err error, result *model.CheckoutResult) {
	if s.recorder == nil {
		return
	}
	if err != nil {
		s.recorder.RecordCheckout(ctx, Outcome(err), nil)
		return
	}
	s.recorder.RecordCheckout(ctx, Outcome(nil), &result.Breakdown)
}

// Outcome labels an operation result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrLoginRequired):
		return "login_required"
	case errors.Is(err, ErrCartEmpty):
		return "cart_empty"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrCouponNotFound):
		return "coupon_not_found"
	case errors.Is(err, ErrCouponAlreadyUsed):
		return "coupon_already_used"
	case errors.Is(err, ErrCouponExpired):
		return "coupon_expired"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "error"
	}
}

// mergeItems sums quantities per product and returns ids in ascending order,
// which is also the row lock order.
func mergeItems(items []model.DirectItem) (map[int64]int, []int64, error) {
	quantities := make(map[int64]int, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, nil, fmt.Errorf("%w: product id %d", ErrInvalidRequest, it.ProductID)
		}
		if it.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidQuantity, it.ProductID, it.Quantity)
		}
		quantities[it.ProductID] += it.Quantity
	}

	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return quantities, ids, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
