package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/pkg/database"
)

// MembershipService derives tiers from lifetime spend and issues tier coupons.
type MembershipService struct {
	pool    TxBeginner
	orders  OrderRepositoryInterface
	coupons UserCouponRepositoryInterface
}

// NewMembershipService creates a MembershipService with the given pool and repositories.
func NewMembershipService(pool TxBeginner, orders OrderRepositoryInterface, coupons UserCouponRepositoryInterface) *MembershipService {
	return &MembershipService{
		pool:    pool,
		orders:  orders,
		coupons: coupons,
	}
}

// LifetimeSpend returns the sum of eligible order totals for the user.
func (s *MembershipService) LifetimeSpend(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrLoginRequired
	}
	total, err := s.orders.LifetimeSpend(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("lifetime spend: %w", err)
	}
	return total, nil
}

// ClaimWelcomeCoupon issues the welcome coupon when it was never issued and the user has no spend.
// Returns whether a coupon was issued.
func (s *MembershipService) ClaimWelcomeCoupon(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lifetime, err := s.orders.LifetimeSpend(ctx, tx, userID)
	if err != nil {
		return false, fmt.Errorf("lifetime spend: %w", err)
	}

	issued, err := s.claimWelcome(ctx, tx, userID, lifetime)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit welcome claim: %w", err)
	}
	return issued, nil
}

// EnsureTierCoupons issues every tier coupon the user qualifies for and does not hold yet.
// Only newly issued coupons are reported.
func (s *MembershipService) EnsureTierCoupons(ctx context.Context, userID int64) (*model.ClaimResult, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lifetime, err := s.orders.LifetimeSpend(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lifetime spend: %w", err)
	}
	level := model.TierFor(lifetime)

	issued, err := s.ensureTierCoupons(ctx, tx, userID, level)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tier coupons: %w", err)
	}

	return &model.ClaimResult{Lifetime: lifetime, Level: level, Issued: issued}, nil
}

// Claim runs the welcome claim and the tier grant in one transaction.
func (s *MembershipService) Claim(ctx context.Context, userID int64) (*model.ClaimResult, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lifetime, err := s.orders.LifetimeSpend(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lifetime spend: %w", err)
	}
	level := model.TierFor(lifetime)

	issued := []model.IssuedCoupon{}

	welcome, err := s.claimWelcome(ctx, tx, userID, lifetime)
	if err != nil {
		return nil, err
	}
	if welcome {
		issued = append(issued, model.IssuedCoupon{Code: model.WelcomeCouponCode, Label: model.WelcomeCouponLabel})
	}

	tierIssued, err := s.ensureTierCoupons(ctx, tx, userID, level)
	if err != nil {
		return nil, err
	}
	issued = append(issued, tierIssued...)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit membership claim: %w", err)
	}

	return &model.ClaimResult{Lifetime: lifetime, Level: level, Issued: issued}, nil
}

// Resync removes unused coupons that require a tier above the user's current one.
// Used coupons are kept.
func (s *MembershipService) Resync(ctx context.Context, userID int64) (*model.MembershipStatus, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lifetime, err := s.orders.LifetimeSpend(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lifetime spend: %w", err)
	}
	level := model.TierFor(lifetime)

	if above := model.TiersAbove(level); len(above) > 0 {
		removed, err := s.coupons.DeleteUnusedForTiers(ctx, tx, userID, above)
		if err != nil {
			return nil, fmt.Errorf("delete coupons above tier: %w", err)
		}
		if removed > 0 {
			log.Info().
				Int64("user_id", userID).
				Str("level", string(level)).
				Int64("removed", removed).
				Msg("revoked coupons above current tier")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit resync: %w", err)
	}

	return &model.MembershipStatus{Lifetime: lifetime, Level: level}, nil
}

// ListCoupons returns the user's coupons, newest first.
func (s *MembershipService) ListCoupons(ctx context.Context, userID int64) (*model.CouponListResponse, error) {
	if userID <= 0 {
		return nil, ErrLoginRequired
	}
	coupons, err := s.coupons.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	if coupons == nil {
		coupons = []model.UserCoupon{}
	}
	return &model.CouponListResponse{Coupons: coupons}, nil
}

func (s *MembershipService) claimWelcome(ctx context.Context, tx database.TxQuerier, userID, lifetime int64) (bool, error) {
	exists, err := s.coupons.Exists(ctx, tx, userID, model.WelcomeCouponCode)
	if err != nil {
		return false, fmt.Errorf("check welcome coupon: %w", err)
	}
	if exists || lifetime != 0 {
		return false, nil
	}

	issued, err := s.coupons.Issue(ctx, tx, userID, model.WelcomeCouponCode)
	if err != nil {
		return false, fmt.Errorf("issue welcome coupon: %w", err)
	}
	if issued {
		log.Info().Int64("user_id", userID).Str("coupon_code", model.WelcomeCouponCode).Msg("welcome coupon issued")
	}
	return issued, nil
}

// ensureTierCoupons issues coupon types required by tiers above LV1 up to and including level.
func (s *MembershipService) ensureTierCoupons(ctx context.Context, tx database.TxQuerier, userID int64, level model.Tier) ([]model.IssuedCoupon, error) {
	var tiers []model.Tier
	for _, t := range []model.Tier{model.TierLV10, model.TierLV100} {
		if t.Rank() <= level.Rank() {
			tiers = append(tiers, t)
		}
	}

	issued := []model.IssuedCoupon{}
	if len(tiers) == 0 {
		return issued, nil
	}

	types, err := s.coupons.TypesForTiers(ctx, tx, tiers)
	if err != nil {
		return nil, fmt.Errorf("coupon types for tiers: %w", err)
	}

	for _, ct := range types {
		ok, err := s.coupons.Issue(ctx, tx, userID, ct.Code)
		if err != nil {
			return nil, fmt.Errorf("issue coupon %s: %w", ct.Code, err)
		}
		if ok {
			issued = append(issued, model.IssuedCoupon{Code: ct.Code, Label: ct.Label})
		}
	}

	if len(issued) > 0 {
		log.Info().
			Int64("user_id", userID).
			Str("level", string(level)).
			Int("issued", len(issued)).
			Msg("tier coupons issued")
	}
	return issued, nil
}
