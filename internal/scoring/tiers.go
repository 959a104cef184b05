// Package scoring turns classified holders into tier counts, concentration
// statistics, risk flags and a health grade.
package scoring

import "solana-holder-lab/internal/domain"

type tierBound struct {
	min  float64 // inclusive lower bound in USD
	tier domain.Tier
}

// granularBounds in descending order. Large spans $25-$200 so that every
// non-LP holder falls into exactly one tier.
var granularBounds = []tierBound{
	{5000, domain.TierTrueWhale},
	{2000, domain.TierBabyWhale},
	{1000, domain.TierSuperBoss},
	{500, domain.TierKingpin},
	{200, domain.TierBoss},
	{25, domain.TierLarge},
	{12, domain.TierMedium},
	{1, domain.TierSmall},
}

// Real-wallet band: holders between the large and boss tiers.
const (
	realWalletMinUSD = 49
	realWalletMaxUSD = 200
)

// GranularTier returns the granular tier for a USD value.
func GranularTier(usd float64) domain.Tier {
	for _, b := range granularBounds {
		if usd >= b.min {
			return b.tier
		}
	}
	return domain.TierDust
}

// SimpleTierFor returns the simplified tier for a USD value.
func SimpleTierFor(usd float64) domain.SimpleTier {
	switch {
	case usd > 1000:
		return domain.SimpleTierWhales
	case usd >= 200:
		return domain.SimpleTierSerious
	case usd >= 1:
		return domain.SimpleTierRetail
	default:
		return domain.SimpleTierDust
	}
}

// IsRealWallet reports whether usd falls in the $49-$200 band counted as realWallets.
func IsRealWallet(usd float64) bool {
	return usd >= realWalletMinUSD && usd < realWalletMaxUSD
}

// NewTierCounts returns counts with every tier present at zero.
func NewTierCounts() domain.TierCounts {
	counts := make(domain.TierCounts, len(domain.AllTiers))
	for _, t := range domain.AllTiers {
		counts[t] = 0
	}
	return counts
}

// NewSimpleTierCounts returns counts with every simplified tier present at zero.
func NewSimpleTierCounts() domain.SimpleTierCounts {
	counts := make(domain.SimpleTierCounts, len(domain.AllSimpleTiers))
	for _, t := range domain.AllSimpleTiers {
		counts[t] = 0
	}
	return counts
}
