package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/domain"
)

func holder(owner, tokenAccount string, pct float64) domain.HolderAccount {
	return domain.HolderAccount{
		OwnerAddress:        owner,
		TokenAccountAddress: tokenAccount,
		PercentageOfSupply:  pct,
		BalanceUI:           pct,
	}
}

func TestClassify_Rules(t *testing.T) {
	cat := catalog.Default()
	c := New(cat, DefaultOptions())

	reg := domain.NewPoolRegistry()
	reg.Add("PairFromMarkets", domain.PoolOriginMarketsAPI)
	reg.Add("PoolVault", domain.PoolOriginPairsAPI)
	reg.Add(catalog.RaydiumAuthority, domain.PoolOriginProgramConstant)
	reg.Add(catalog.IncineratorWallet, domain.PoolOriginBurnConstant)
	reg.SetPrimaryLP("PrimaryOwner")

	dexOwned := holder("CurveOwner", "TA-curve", 30)
	dexOwned.AccountOwnerProgram = catalog.PumpFun

	tests := []struct {
		name       string
		h          domain.HolderAccount
		activity   Activity
		isLP       bool
		confidence domain.Confidence
		reason     string
		platform   string
		origin     domain.PoolOrigin
	}{
		{
			name: "primary lp by owner", h: holder("PrimaryOwner", "TA1", 50),
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonVerifiedPrimaryLP,
			origin: domain.PoolOriginMarketsAPI,
		},
		{
			name: "primary lp by token account", h: holder("Someone", "PrimaryOwner", 1),
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonVerifiedPrimaryLP,
			origin: domain.PoolOriginMarketsAPI,
		},
		{
			name: "registry token account", h: holder("Vault authority", "PoolVault", 5),
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonPoolRegistry,
			origin: domain.PoolOriginPairsAPI,
		},
		{
			name: "registry authority carries platform", h: holder(catalog.RaydiumAuthority, "TA2", 5),
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonPoolRegistry,
			platform: "Raydium AMM", origin: domain.PoolOriginProgramConstant,
		},
		{
			name: "registry burn", h: holder(catalog.IncineratorWallet, "TA3", 5),
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonBurned,
			origin: domain.PoolOriginBurnConstant,
		},
		{
			name: "dex program owner", h: dexOwned,
			isLP: true, confidence: domain.ConfidenceVerified, reason: domain.ReasonDEXProgram,
			platform: "pump.fun bonding curve", origin: domain.PoolOriginProgramConstant,
		},
		{
			name: "large inactive holder", h: holder("Dormant", "TA4", 12), activity: Activity{"Dormant": false},
			isLP: true, confidence: domain.ConfidenceHeuristic, reason: domain.ReasonLargeInactiveHolder,
		},
		{
			name: "large active holder", h: holder("Trader", "TA5", 12), activity: Activity{"Trader": true},
			reason: domain.ReasonHolder,
		},
		{
			name: "large holder without signal", h: holder("Unknown", "TA6", 40),
			reason: domain.ReasonHolder,
		},
		{
			name: "small inactive holder", h: holder("Small", "TA7", 9.99), activity: Activity{"Small": false},
			reason: domain.ReasonHolder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.h, reg, tt.activity)
			assert.Equal(t, tt.isLP, got.IsLP)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.reason, got.ReasonCode)
			assert.Equal(t, tt.platform, got.PlatformLabel)
			assert.Equal(t, tt.origin, got.OriginSource)
		})
	}
}

func TestClassify_BurnWithoutRegistry(t *testing.T) {
	c := New(catalog.Default(), DefaultOptions())
	got := c.Classify(holder(catalog.IncineratorWallet, "TA", 1), nil, nil)
	assert.True(t, got.IsLP)
	assert.Equal(t, domain.ReasonBurned, got.ReasonCode)
	assert.Equal(t, domain.ConfidenceVerified, got.Confidence)
}

func TestClassify_PrimaryLPNeverHeuristic(t *testing.T) {
	c := New(catalog.Default(), DefaultOptions())
	reg := domain.NewPoolRegistry()
	reg.SetPrimaryLP("BigPool")

	// Would satisfy the heuristic rule as well.
	h := holder("BigPool", "TA", 80)
	got := c.Classify(h, reg, Activity{"BigPool": false})
	assert.Equal(t, domain.ConfidenceVerified, got.Confidence)
	assert.Equal(t, domain.ReasonVerifiedPrimaryLP, got.ReasonCode)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(catalog.Default(), DefaultOptions())
	reg := domain.NewPoolRegistry()
	reg.Add("Pool", domain.PoolOriginPairsAPI)

	holders := []domain.HolderAccount{
		holder("Pool", "TA1", 60),
		holder("Whale", "TA2", 30),
		holder("Fish", "TA3", 10),
	}
	activity := Activity{"Whale": false}

	first := c.ClassifyAll(holders, reg, activity)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, c.ClassifyAll(holders, reg, activity))
	}
	require.Len(t, first, 3)
	assert.True(t, first[0].IsLP)
	assert.True(t, first[1].IsLP)
	assert.Equal(t, domain.ConfidenceHeuristic, first[1].Confidence)
	assert.False(t, first[2].IsLP)
}

func TestHeuristicCandidates(t *testing.T) {
	c := New(catalog.Default(), Options{HeuristicMinPercentage: 20})
	reg := domain.NewPoolRegistry()
	reg.Add("Pool", domain.PoolOriginPairsAPI)

	holders := []domain.HolderAccount{
		holder("Pool", "TA1", 50),
		holder("Whale", "TA2", 25),
		holder("Fish", "TA3", 5),
		holder(catalog.IncineratorWallet, "TA4", 20),
	}
	assert.Equal(t, []string{"Whale"}, c.HeuristicCandidates(holders, reg))
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, Options{})
	assert.Equal(t, DefaultHeuristicMinPercentage, c.opts.HeuristicMinPercentage)
	assert.NotNil(t, c.catalog)
}
