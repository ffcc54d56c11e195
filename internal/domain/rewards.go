package domain

// Tier is the derived loyalty classification for a user. It is never stored
// as mutable state; the current tier is always recomputed from the ledger sum.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Fixed ascending point thresholds. A total below the silver threshold is
// bronze; platinum starts at 2500.
const (
	SilverThreshold   = 1000
	GoldThreshold     = 1500
	PlatinumThreshold = 2500
)

// TierFor maps a cumulative point total to its tier.
func TierFor(points int64) Tier {
	switch {
	case points >= PlatinumThreshold:
		return TierPlatinum
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}
