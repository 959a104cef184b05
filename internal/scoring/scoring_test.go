package scoring

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/domain"
)

func lp() domain.LPClassification {
	return domain.LPClassification{IsLP: true, Confidence: domain.ConfidenceVerified, ReasonCode: domain.ReasonDEXProgram}
}

func notLP() domain.LPClassification {
	return domain.LPClassification{ReasonCode: domain.ReasonHolder}
}

func TestGranularTier(t *testing.T) {
	tests := []struct {
		usd  float64
		want domain.Tier
	}{
		{0, domain.TierDust},
		{0.99, domain.TierDust},
		{1, domain.TierSmall},
		{11.99, domain.TierSmall},
		{12, domain.TierMedium},
		{25, domain.TierLarge},
		{40, domain.TierLarge},
		{49, domain.TierLarge},
		{199.99, domain.TierLarge},
		{200, domain.TierBoss},
		{500, domain.TierKingpin},
		{1000, domain.TierSuperBoss},
		{2000, domain.TierBabyWhale},
		{4999.99, domain.TierBabyWhale},
		{5000, domain.TierTrueWhale},
		{1e12, domain.TierTrueWhale},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.usd), func(t *testing.T) {
			assert.Equal(t, tt.want, GranularTier(tt.usd))
		})
	}
}

func TestGranularTier_MutuallyExclusive(t *testing.T) {
	// Every value maps to one tier and tiers are ordered by their bounds.
	prev := 0
	order := make(map[domain.Tier]int)
	for i, tier := range domain.AllTiers {
		order[tier] = i
	}
	for usd := 0.0; usd < 6000; usd += 0.5 {
		idx := order[GranularTier(usd)]
		assert.GreaterOrEqual(t, idx, prev, "tier regressed at $%v", usd)
		prev = idx
	}
}

func TestSimpleTierFor(t *testing.T) {
	assert.Equal(t, domain.SimpleTierDust, SimpleTierFor(0.5))
	assert.Equal(t, domain.SimpleTierRetail, SimpleTierFor(1))
	assert.Equal(t, domain.SimpleTierRetail, SimpleTierFor(199))
	assert.Equal(t, domain.SimpleTierSerious, SimpleTierFor(200))
	assert.Equal(t, domain.SimpleTierSerious, SimpleTierFor(1000))
	assert.Equal(t, domain.SimpleTierWhales, SimpleTierFor(1000.01))
}

func TestIsRealWallet(t *testing.T) {
	assert.False(t, IsRealWallet(48.99))
	assert.True(t, IsRealWallet(49))
	assert.True(t, IsRealWallet(199.99))
	assert.False(t, IsRealWallet(200))
}

func TestAnnotate(t *testing.T) {
	holders := []domain.HolderAccount{{BalanceUI: 750}, {BalanceUI: 200}, {BalanceUI: 50}}
	total := Annotate(holders, 0.1)

	assert.Equal(t, 1000.0, total)
	assert.InDelta(t, 75.0, holders[0].USDValue, 1e-9)
	assert.InDelta(t, 75.0, holders[0].PercentageOfSupply, 1e-9)

	var sum float64
	for _, h := range holders {
		sum += h.PercentageOfSupply
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestAnnotate_Degenerate(t *testing.T) {
	assert.Zero(t, Annotate(nil, 1))

	holders := []domain.HolderAccount{{BalanceUI: 0}, {BalanceUI: math.NaN()}}
	total := Annotate(holders, math.Inf(1))
	assert.Zero(t, total)
	for _, h := range holders {
		assert.Zero(t, h.PercentageOfSupply)
		assert.Zero(t, h.USDValue)
	}
}

func TestAssess_ThreeHolderScenario(t *testing.T) {
	holders := []domain.HolderAccount{
		{OwnerAddress: "Wallet40", BalanceUI: 40},
		{OwnerAddress: "Pool", BalanceUI: 900},
		{OwnerAddress: "Wallet60", BalanceUI: 60},
	}
	Annotate(holders, 1.0)

	a := Assess(Input{
		Holders:  holders,
		Classes:  []domain.LPClassification{notLP(), lp(), notLP()},
		PriceUSD: 1.0,
	})

	assert.Len(t, a.LiquidityPools, 1)
	assert.Equal(t, 900.0, a.LPBalance)
	assert.Equal(t, 2, a.NonLPHolders)
	assert.Equal(t, 100.0, a.Circulating.Tokens)
	assert.Equal(t, 100.0, a.Circulating.USD)
	assert.InDelta(t, 100.0, a.Stats.Top5Percentage, 1e-9)
	assert.InDelta(t, 10.0, a.Stats.Top5PercentageOfTotal, 1e-9)
	assert.InDelta(t, 90.0, a.LPPercentage, 1e-9)

	require.Len(t, a.Holders, 3)
	assert.Equal(t, "Pool", a.Holders[0].OwnerAddress)
	assert.Equal(t, 1, a.Holders[0].Rank)
	assert.Empty(t, a.Holders[0].Tier)

	w60 := a.Holders[1]
	assert.Equal(t, "Wallet60", w60.OwnerAddress)
	assert.Equal(t, domain.TierLarge, w60.Tier)
	assert.Equal(t, domain.SimpleTierRetail, w60.SimpleTier)

	w40 := a.Holders[2]
	assert.Equal(t, domain.TierLarge, w40.Tier)
	assert.Equal(t, domain.SimpleTierRetail, w40.SimpleTier)

	assert.Equal(t, 2, a.Tiers[domain.TierLarge])
	assert.Equal(t, 0, a.Tiers[domain.TierDust])
	assert.Equal(t, 1, a.RealWallets)

	require.NotNil(t, a.DevWallet)
	assert.Equal(t, "Wallet60", a.DevWallet.Address)
}

func TestAssess_ZeroPriceCollapsesToDust(t *testing.T) {
	holders := []domain.HolderAccount{
		{OwnerAddress: "A", BalanceUI: 5000},
		{OwnerAddress: "B", BalanceUI: 10},
	}
	Annotate(holders, 0)
	a := Assess(Input{Holders: holders, Classes: []domain.LPClassification{notLP(), notLP()}})

	assert.Equal(t, 2, a.Tiers[domain.TierDust])
	assert.Equal(t, 2, a.SimpleTiers[domain.SimpleTierDust])
	assert.InDelta(t, 100.0, a.Stats.DustPercentage, 1e-9)
	assert.Zero(t, a.Circulating.USD)
}

func TestAssess_Empty(t *testing.T) {
	a := Assess(Input{})
	assert.Empty(t, a.Holders)
	assert.Zero(t, a.Stats.Top5Percentage)
	assert.Zero(t, a.LPPercentage)
	assert.Nil(t, a.DevWallet)
	assert.Equal(t, 100-20-15, a.Health.Score)
	assert.NotNil(t, a.RiskFlags)
	for _, tier := range domain.AllTiers {
		assert.Contains(t, a.Tiers, tier)
	}
}

func TestAssess_ManyBundledHolders(t *testing.T) {
	const n = 2000
	holders := make([]domain.HolderAccount, n)
	classes := make([]domain.LPClassification, n)
	var bundled []string
	for i := range holders {
		owner := fmt.Sprintf("W%04d", i)
		holders[i] = domain.HolderAccount{OwnerAddress: owner, BalanceUI: 1}
		classes[i] = notLP()
		if i%2 == 0 {
			bundled = append(bundled, owner)
		}
	}
	Annotate(holders, 1)

	a := Assess(Input{Holders: holders, Classes: classes, PriceUSD: 1, Graph: &domain.ClusterGraph{BundledAddresses: bundled}})

	count := 0
	for _, h := range a.Holders {
		if h.IsBundled {
			count++
		}
	}
	assert.Equal(t, n/2, count)

	a = Assess(Input{Holders: holders, Classes: classes, PriceUSD: 1})
	for _, h := range a.Holders {
		assert.False(t, h.IsBundled)
	}
}

func TestAssess_BundledAndCreator(t *testing.T) {
	holders := []domain.HolderAccount{
		{OwnerAddress: "Creator", BalanceUI: 10},
		{OwnerAddress: "Bundler", BalanceUI: 30},
		{OwnerAddress: "Other", BalanceUI: 60},
	}
	Annotate(holders, 1)
	graph := &domain.ClusterGraph{BundledAddresses: []string{"Bundler"}, BundledPercentage: 30}

	a := Assess(Input{
		Holders:       holders,
		Classes:       []domain.LPClassification{notLP(), notLP(), notLP()},
		PriceUSD:      1,
		Graph:         graph,
		CreatorWallet: "Creator",
	})

	byOwner := make(map[string]domain.ClassifiedHolder)
	for _, h := range a.Holders {
		byOwner[h.OwnerAddress] = h
	}
	assert.True(t, byOwner["Bundler"].IsBundled)
	assert.True(t, byOwner["Creator"].IsCreator)
	assert.Equal(t, 30.0, a.Stats.BundledPercentage)
	assert.Contains(t, a.RiskFlags, "Bundled wallets hold 30.00% of supply")

	require.NotNil(t, a.DevWallet)
	assert.Equal(t, "Creator", a.DevWallet.Address)
	assert.Equal(t, 90, a.DevWallet.Confidence)
}

func TestAssess_RankTieBreak(t *testing.T) {
	holders := []domain.HolderAccount{
		{OwnerAddress: "B", TokenAccountAddress: "2", BalanceUI: 5},
		{OwnerAddress: "A", TokenAccountAddress: "9", BalanceUI: 5},
		{OwnerAddress: "A", TokenAccountAddress: "1", BalanceUI: 5},
	}
	a := Assess(Input{Holders: holders})
	got := []string{}
	for _, h := range a.Holders {
		got = append(got, h.OwnerAddress+h.TokenAccountAddress)
	}
	assert.Equal(t, []string{"A1", "A9", "B2"}, got)
}

func TestRiskFlags(t *testing.T) {
	flags := RiskFlags(FlagInput{
		Top5Percentage:    30,
		LPPercentage:      10,
		LPCount:           1,
		WhaleCount:        0,
		TotalHolders:      51,
		DustPercentage:    31,
		BundledPercentage: 11,
	})
	require.Len(t, flags, 5)
	assert.Contains(t, flags[0], "Top 5")
	assert.Contains(t, flags[1], "Low liquidity")
	assert.Contains(t, flags[2], "No whale")
	assert.Contains(t, flags[3], "Dust")
	assert.Contains(t, flags[4], "Bundled")

	assert.Empty(t, RiskFlags(FlagInput{LPPercentage: 1, TotalHolders: 50}), "no LP flag without pools")
	assert.Empty(t, RiskFlags(FlagInput{Top5Percentage: 25, LPPercentage: 15, LPCount: 1, DustPercentage: 30, BundledPercentage: 10}))
}

func TestHealth(t *testing.T) {
	best := Health(HealthInput{LPPercentage: 50, HolderCount: 500})
	assert.Equal(t, domain.HealthScore{Score: 100, Grade: "A"}, best)

	worst := Health(HealthInput{Top5Percentage: 90, LPPercentage: 0, BundledPercentage: 50, HolderCount: 3, DustPercentage: 90})
	assert.Equal(t, 0, worst.Score)
	assert.Equal(t, "F", worst.Grade)

	mid := Health(HealthInput{Top5Percentage: 35, LPPercentage: 15, BundledPercentage: 6, HolderCount: 80})
	assert.Equal(t, 100-20-10-5-10, mid.Score)
	assert.Equal(t, "D", mid.Grade)
}

func TestHealth_Monotonic(t *testing.T) {
	base := HealthInput{LPPercentage: 30, HolderCount: 200}
	for _, vary := range []func(*HealthInput, float64){
		func(in *HealthInput, v float64) { in.Top5Percentage = v },
		func(in *HealthInput, v float64) { in.BundledPercentage = v },
		func(in *HealthInput, v float64) { in.DustPercentage = v },
	} {
		prev := 101
		for v := 0.0; v <= 100; v += 0.5 {
			in := base
			vary(&in, v)
			score := Health(in).Score
			assert.LessOrEqual(t, score, prev)
			prev = score
		}
	}
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "A", Grade(90))
	assert.Equal(t, "B", Grade(89))
	assert.Equal(t, "B", Grade(80))
	assert.Equal(t, "C", Grade(65))
	assert.Equal(t, "D", Grade(50))
	assert.Equal(t, "F", Grade(49))
}

func TestGuessDevWallet(t *testing.T) {
	nonLP := []domain.ClassifiedHolder{
		{HolderAccount: domain.HolderAccount{OwnerAddress: "Top", PercentageOfSupply: 12}, Rank: 1},
		{HolderAccount: domain.HolderAccount{OwnerAddress: "Next", PercentageOfSupply: 3}, Rank: 2},
	}

	g := GuessDevWallet(nonLP, "")
	require.NotNil(t, g)
	assert.Equal(t, "Top", g.Address)
	assert.Equal(t, 34, g.Confidence)

	g = GuessDevWallet(nonLP, "Gone")
	assert.Equal(t, "Top", g.Address)
	assert.Contains(t, g.Reason, "Gone no longer holds")

	g = GuessDevWallet(nonLP, "Next")
	assert.Equal(t, "Next", g.Address)
	assert.Equal(t, 90, g.Confidence)

	assert.Nil(t, GuessDevWallet(nil, ""))
	assert.Equal(t, 70, shareConfidence(99))
	assert.Equal(t, 10, shareConfidence(0))
}
