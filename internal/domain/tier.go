package domain

// Tier is the granular USD-value bucket of a non-LP holder.
type Tier string

const (
	TierDust      Tier = "dust"
	TierSmall     Tier = "small"
	TierMedium    Tier = "medium"
	TierLarge     Tier = "large"
	TierBoss      Tier = "boss"
	TierKingpin   Tier = "kingpin"
	TierSuperBoss Tier = "superBoss"
	TierBabyWhale Tier = "babyWhale"
	TierTrueWhale Tier = "trueWhale"
)

// AllTiers lists granular tiers in ascending order.
var AllTiers = []Tier{
	TierDust, TierSmall, TierMedium, TierLarge, TierBoss,
	TierKingpin, TierSuperBoss, TierBabyWhale, TierTrueWhale,
}

// SimpleTier is the simplified USD-value bucket of a non-LP holder.
type SimpleTier string

const (
	SimpleTierDust    SimpleTier = "dust"
	SimpleTierRetail  SimpleTier = "retail"
	SimpleTierSerious SimpleTier = "serious"
	SimpleTierWhales  SimpleTier = "whales"
)

// AllSimpleTiers lists simplified tiers in ascending order.
var AllSimpleTiers = []SimpleTier{
	SimpleTierDust, SimpleTierRetail, SimpleTierSerious, SimpleTierWhales,
}
