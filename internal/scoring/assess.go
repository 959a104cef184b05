package scoring

import (
	"sort"

	"solana-holder-lab/internal/domain"
)

// Input is everything the scorer needs for one mint.
type Input struct {
	// Holders annotated by Annotate.
	Holders []domain.HolderAccount
	// Classes is index-aligned with Holders.
	Classes       []domain.LPClassification
	PriceUSD      float64
	Graph         *domain.ClusterGraph
	CreatorWallet string
}

// Assessment is the scored distribution of one mint.
type Assessment struct {
	Holders        []domain.ClassifiedHolder // ranked by balance
	LiquidityPools []domain.ClassifiedHolder

	TotalBalance float64
	LPBalance    float64
	LPPercentage float64
	NonLPHolders int

	Tiers       domain.TierCounts
	SimpleTiers domain.SimpleTierCounts
	RealWallets int

	Stats       domain.DistributionStats
	Circulating domain.SupplyFigure
	RiskFlags   []string
	Health      domain.HealthScore
	DevWallet   *domain.DevWalletGuess
}

// Assess ranks, tiers and scores the holders.
func Assess(in Input) *Assessment {
	price := finite(in.PriceUSD)
	a := &Assessment{
		Holders:        make([]domain.ClassifiedHolder, 0, len(in.Holders)),
		LiquidityPools: []domain.ClassifiedHolder{},
		Tiers:          NewTierCounts(),
		SimpleTiers:    NewSimpleTierCounts(),
	}

	bundledSet := in.Graph.BundledSet()
	for i, h := range in.Holders {
		_, isBundled := bundledSet[h.OwnerAddress]
		ch := domain.ClassifiedHolder{
			HolderAccount: h,
			IsBundled:     isBundled,
			IsCreator:     in.CreatorWallet != "" && h.OwnerAddress == in.CreatorWallet,
		}
		if i < len(in.Classes) {
			ch.Classification = in.Classes[i]
		} else {
			ch.Classification = domain.LPClassification{ReasonCode: domain.ReasonHolder}
		}
		a.TotalBalance += finite(h.BalanceUI)
		a.Holders = append(a.Holders, ch)
	}

	sort.SliceStable(a.Holders, func(i, j int) bool {
		hi, hj := a.Holders[i], a.Holders[j]
		if hi.BalanceUI != hj.BalanceUI {
			return hi.BalanceUI > hj.BalanceUI
		}
		if hi.OwnerAddress != hj.OwnerAddress {
			return hi.OwnerAddress < hj.OwnerAddress
		}
		return hi.TokenAccountAddress < hj.TokenAccountAddress
	})

	var nonLP []domain.ClassifiedHolder
	var dustBalance float64
	for i := range a.Holders {
		h := &a.Holders[i]
		h.Rank = i + 1
		if h.Classification.IsLP {
			a.LPBalance += finite(h.BalanceUI)
			a.LiquidityPools = append(a.LiquidityPools, *h)
			continue
		}

		h.Tier = GranularTier(h.USDValue)
		h.SimpleTier = SimpleTierFor(h.USDValue)
		a.Tiers[h.Tier]++
		a.SimpleTiers[h.SimpleTier]++
		if IsRealWallet(h.USDValue) {
			a.RealWallets++
		}
		if h.Tier == domain.TierDust {
			dustBalance += finite(h.BalanceUI)
		}
		nonLP = append(nonLP, *h)
	}
	a.NonLPHolders = len(nonLP)
	a.LPPercentage = percent(a.LPBalance, a.TotalBalance)

	circulating := a.TotalBalance - a.LPBalance
	if circulating < 0 {
		circulating = 0
	}
	a.Circulating = domain.SupplyFigure{
		Tokens:     circulating,
		USD:        circulating * price,
		Percentage: percent(circulating, a.TotalBalance),
	}

	bundled := 0.0
	if in.Graph != nil {
		bundled = finite(in.Graph.BundledPercentage)
	}
	top5, top10, top20 := topBalance(nonLP, 5), topBalance(nonLP, 10), topBalance(nonLP, 20)
	a.Stats = domain.DistributionStats{
		Top5Percentage:         percent(top5, circulating),
		Top10Percentage:        percent(top10, circulating),
		Top20Percentage:        percent(top20, circulating),
		Top5PercentageOfTotal:  percent(top5, a.TotalBalance),
		Top10PercentageOfTotal: percent(top10, a.TotalBalance),
		Top20PercentageOfTotal: percent(top20, a.TotalBalance),
		DustPercentage:         percent(dustBalance, a.TotalBalance),
		BundledPercentage:      bundled,
	}

	a.RiskFlags = RiskFlags(FlagInput{
		Top5Percentage:    a.Stats.Top5Percentage,
		LPPercentage:      a.LPPercentage,
		LPCount:           len(a.LiquidityPools),
		WhaleCount:        a.SimpleTiers[domain.SimpleTierWhales],
		TotalHolders:      len(a.Holders),
		DustPercentage:    a.Stats.DustPercentage,
		BundledPercentage: bundled,
	})
	a.Health = Health(HealthInput{
		Top5Percentage:    a.Stats.Top5Percentage,
		LPPercentage:      a.LPPercentage,
		BundledPercentage: bundled,
		HolderCount:       a.NonLPHolders,
		DustPercentage:    a.Stats.DustPercentage,
	})
	a.DevWallet = GuessDevWallet(nonLP, in.CreatorWallet)
	return a
}

// topBalance sums the balances of the first n holders of a ranked list.
func topBalance(ranked []domain.ClassifiedHolder, n int) float64 {
	if n > len(ranked) {
		n = len(ranked)
	}
	var sum float64
	for _, h := range ranked[:n] {
		sum += finite(h.BalanceUI)
	}
	return sum
}
