package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_UpAndDownArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	assert.Equal(t, ups, downs, "every migration needs both directions")
}

func TestFS_SchemaGuardsStockAndCouponUse(t *testing.T) {
	schema, err := fs.ReadFile(FS, "000001_init_schema.up.sql")
	require.NoError(t, err)

	sql := string(schema)
	assert.Contains(t, sql, "CHECK (stock >= 0)")
	assert.Contains(t, sql, "UNIQUE (user_id, product_id)")
	assert.Contains(t, sql, "UNIQUE (user_id, coupon_code)")
	assert.Contains(t, sql, "WHERE used_order_id IS NOT NULL")
}

func TestFS_SeedsWelcomeCoupon(t *testing.T) {
	seed, err := fs.ReadFile(FS, "000002_seed_coupon_types.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(seed), "'M_LV1_5K'")
}

func TestFS_SeedsLV10BonusCoupon(t *testing.T) {
	seed, err := fs.ReadFile(FS, "000003_seed_lv10_bonus_coupon.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(seed), "'M_LV10_5K'")
	assert.Contains(t, string(seed), "'LV10'")
}

// Seed rollbacks must release issued coupons before removing their types.
func TestFS_SeedDownRemovesIssuedCouponsFirst(t *testing.T) {
	for _, name := range []string{
		"000002_seed_coupon_types.down.sql",
		"000003_seed_lv10_bonus_coupon.down.sql",
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := fs.ReadFile(FS, name)
			require.NoError(t, err)
			sql := string(raw)

			userCoupons := strings.Index(sql, "DELETE FROM user_coupons")
			types := strings.Index(sql, "DELETE FROM coupon_types")
			require.GreaterOrEqual(t, userCoupons, 0)
			require.GreaterOrEqual(t, types, 0)
			assert.Less(t, userCoupons, types)
		})
	}
}
