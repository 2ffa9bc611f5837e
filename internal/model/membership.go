package model

// Tier is a membership level derived from lifetime eligible spend.
type Tier string

const (
	TierLV1   Tier = "LV1"
	TierLV10  Tier = "LV10"
	TierLV100 Tier = "LV100"
)

// tierThresholds are inclusive lower bounds, highest first.
var tierThresholds = []struct {
	tier Tier
	min  int64
}{
	{TierLV100, 1_000_000},
	{TierLV10, 100_000},
	{TierLV1, 0},
}

// TierFor returns the highest tier whose threshold is at or below amount.
func TierFor(amount int64) Tier {
	for _, t := range tierThresholds {
		if amount >= t.min {
			return t.tier
		}
	}
	return TierLV1
}

// Rank orders tiers; unknown tiers rank above every known tier so they are never granted.
func (t Tier) Rank() int {
	switch t {
	case TierLV1:
		return 1
	case TierLV10:
		return 2
	case TierLV100:
		return 3
	default:
		return 99
	}
}

// Threshold returns the minimum lifetime spend for the tier.
func (t Tier) Threshold() int64 {
	for _, th := range tierThresholds {
		if th.tier == t {
			return th.min
		}
	}
	return 0
}

// TiersAbove lists known tiers ranked strictly above t.
func TiersAbove(t Tier) []Tier {
	var above []Tier
	for _, th := range tierThresholds {
		if th.tier.Rank() > t.Rank() {
			above = append(above, th.tier)
		}
	}
	return above
}

// MembershipStatus is the API response for a membership resync.
type MembershipStatus struct {
	Lifetime int64 `json:"lifetime"`
	Level    Tier  `json:"level"`
}

// ClaimResult is the API response for a membership claim.
// Issued is always present, empty when nothing new was granted.
type ClaimResult struct {
	Lifetime int64          `json:"lifetime"`
	Level    Tier           `json:"level"`
	Issued   []IssuedCoupon `json:"issued"`
}
