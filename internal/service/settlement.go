package service

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/storefront/internal/model"
)

// EffectivePrice returns the sale price while a sale is active at now, else the list price.
// A sale without an end time never expires; a sale ending exactly at now is over.
func EffectivePrice(p *model.Product, now time.Time) int64 {
	if onSale(p, now) {
		return *p.SalePrice
	}
	return p.Price
}

func onSale(p *model.Product, now time.Time) bool {
	return p.SalePrice != nil && (p.SaleEndsAt == nil || p.SaleEndsAt.After(now))
}

// AggregateLines prices lines at now and checks every quantity against live stock.
// The flat fee applies unless every product ships free.
func AggregateLines(lines []model.CartLine, now time.Time, flatFee int64) (*model.CartAggregate, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		if l.Quantity > l.Product.Stock {
			return nil, fmt.Errorf("%w: product %d requested %d, available %d",
				ErrOutOfStock, l.ProductID, l.Quantity, l.Product.Stock)
		}
	}
	return priceLines(lines, now, flatFee), nil
}

// priceLines fills unit prices and totals without validating stock.
func priceLines(lines []model.CartLine, now time.Time, flatFee int64) *model.CartAggregate {
	agg := &model.CartAggregate{Lines: lines}
	if len(lines) == 0 {
		return agg
	}

	allFree := true
	for i := range lines {
		l := &lines[i]
		l.UnitPrice = EffectivePrice(&l.Product, now)
		agg.Subtotal += int64(l.Quantity) * l.UnitPrice
		if !l.Product.FreeShipping() {
			allFree = false
		}
	}

	if !allFree {
		agg.BaseShippingFee = flatFee
	}
	return agg
}

// Settle combines a priced cart and an optional validated coupon into the final breakdown.
// Preview and checkout both go through this function.
func Settle(cart *model.CartAggregate, coupon *model.UserCoupon) model.Breakdown {
	b := model.Breakdown{
		Subtotal:    cart.Subtotal,
		ShippingFee: cart.BaseShippingFee,
	}

	if coupon != nil {
		b.Applied = &model.AppliedCoupon{
			Code:   coupon.Code,
			Kind:   coupon.Kind,
			Amount: coupon.Amount,
			Label:  coupon.Label,
		}
		switch coupon.Kind {
		case model.CouponKindShipping:
			b.ShippingFee = 0
		case model.CouponKindAmount:
			b.Discount = min(cart.Subtotal, max(coupon.Amount, 0))
		}
	}

	b.Total = max(0, b.Subtotal-b.Discount) + b.ShippingFee
	return b
}
