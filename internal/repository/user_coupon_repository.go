package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
	"github.com/fairyhunter13/storefront/pkg/database"
)

const userCouponSelect = `SELECT uc.id, uc.user_id, uc.coupon_code, ct.label, ct.kind, ct.amount,
		uc.expires_at, uc.used_order_id, uc.created_at
	FROM user_coupons uc
	JOIN coupon_types ct ON ct.code = uc.coupon_code`

// UserCouponRepository provides data access for issued coupons using pgx.
type UserCouponRepository struct {
	pool PoolInterface
}

// NewUserCouponRepository creates a new UserCouponRepository with the given pool.
func NewUserCouponRepository(pool *pgxpool.Pool) *UserCouponRepository {
	return &UserCouponRepository{pool: pool}
}

// NewUserCouponRepositoryWithPool creates a new UserCouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewUserCouponRepositoryWithPool(pool PoolInterface) *UserCouponRepository {
	return &UserCouponRepository{pool: pool}
}

// GetForUpdate retrieves the user's coupon by code with a row lock (SELECT FOR UPDATE).
// Returns service.ErrCouponNotFound if the user holds no such coupon.
func (r *UserCouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, userID int64, code string) (*model.UserCoupon, error) {
	query := userCouponSelect + ` WHERE uc.user_id = $1 AND uc.coupon_code = $2 FOR UPDATE OF uc`

	c, err := scanUserCoupon(tx.QueryRow(ctx, query, userID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return c, nil
}

// MarkUsed binds the coupon to the order only if it is still unused.
// Returns service.ErrCouponAlreadyUsed when another order got there first.
func (r *UserCouponRepository) MarkUsed(ctx context.Context, tx database.TxQuerier, userCouponID, orderID int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE user_coupons SET used_order_id = $1 WHERE id = $2 AND used_order_id IS NULL`,
		orderID, userCouponID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return service.ErrCouponAlreadyUsed
		}
		return fmt.Errorf("mark coupon %d used: %w", userCouponID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponAlreadyUsed
	}
	return nil
}

// ListByUser returns the user's coupons, newest first.
// On success, returns an empty slice (not nil) when the user has none.
func (r *UserCouponRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserCoupon, error) {
	rows, err := r.pool.Query(ctx, userCouponSelect+` WHERE uc.user_id = $1 ORDER BY uc.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list coupons for user %d: %w", userID, err)
	}
	defer rows.Close()

	coupons := []model.UserCoupon{}
	for rows.Next() {
		c, err := scanUserCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// Exists reports whether the coupon was ever issued to the user, used or not.
func (r *UserCouponRepository) Exists(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_coupons WHERE user_id = $1 AND coupon_code = $2)`,
		userID, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check coupon %s: %w", code, err)
	}
	return exists, nil
}

// Issue grants the coupon once per user. Returns false when the user already holds it.
func (r *UserCouponRepository) Issue(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO user_coupons (user_id, coupon_code) VALUES ($1, $2)
		ON CONFLICT (user_id, coupon_code) DO NOTHING`,
		userID, code)
	if err != nil {
		return false, fmt.Errorf("issue coupon %s: %w", code, err)
	}
	return tag.RowsAffected() == 1, nil
}

// TypesForTiers returns the coupon types whose level requirement is one of tiers.
func (r *UserCouponRepository) TypesForTiers(ctx context.Context, tx database.TxQuerier, tiers []model.Tier) ([]model.CouponType, error) {
	rows, err := tx.Query(ctx,
		`SELECT code, label, kind, amount, level_required FROM coupon_types
		WHERE level_required = ANY($1) ORDER BY code`,
		tierStrings(tiers))
	if err != nil {
		return nil, fmt.Errorf("coupon types for tiers: %w", err)
	}
	defer rows.Close()

	types := []model.CouponType{}
	for rows.Next() {
		var ct model.CouponType
		var kind, level string
		if err := rows.Scan(&ct.Code, &ct.Label, &kind, &ct.Amount, &level); err != nil {
			return nil, fmt.Errorf("scan coupon type: %w", err)
		}
		ct.Kind = model.CouponKind(kind)
		ct.LevelRequired = model.Tier(level)
		types = append(types, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon type rows: %w", err)
	}
	return types, nil
}

// DeleteUnusedForTiers removes the user's unused coupons whose type requires one of tiers.
func (r *UserCouponRepository) DeleteUnusedForTiers(ctx context.Context, tx database.TxQuerier, userID int64, tiers []model.Tier) (int64, error) {
	tag, err := tx.Exec(ctx,
		`DELETE FROM user_coupons uc
		USING coupon_types ct
		WHERE ct.code = uc.coupon_code
		  AND uc.user_id = $1
		  AND uc.used_order_id IS NULL
		  AND ct.level_required = ANY($2)`,
		userID, tierStrings(tiers))
	if err != nil {
		return 0, fmt.Errorf("delete coupons for tiers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUserCoupon(row scanner) (*model.UserCoupon, error) {
	var c model.UserCoupon
	var kind string
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Code,
		&c.Label,
		&kind,
		&c.Amount,
		&c.ExpiresAt,
		&c.UsedOrderID,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Kind = model.CouponKind(kind)
	return &c, nil
}

func tierStrings(tiers []model.Tier) []string {
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = string(t)
	}
	return out
}
