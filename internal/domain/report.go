package domain

// TierCounts counts non-LP holders per granular tier.
type TierCounts map[Tier]int

// SimpleTierCounts counts non-LP holders per simplified tier.
type SimpleTierCounts map[SimpleTier]int

// SupplyFigure is a token amount with its USD value and share of total supply.
type SupplyFigure struct {
	Tokens     float64 `json:"tokens"`
	USD        float64 `json:"usd"`
	Percentage float64 `json:"percentage"`
}

// DistributionStats holds concentration of the largest non-LP holders.
// The plain fields are relative to circulating supply, the *OfTotal fields to total supply.
type DistributionStats struct {
	Top5Percentage         float64 `json:"top5Percentage"`
	Top10Percentage        float64 `json:"top10Percentage"`
	Top20Percentage        float64 `json:"top20Percentage"`
	Top5PercentageOfTotal  float64 `json:"top5PercentageOfTotal"`
	Top10PercentageOfTotal float64 `json:"top10PercentageOfTotal"`
	Top20PercentageOfTotal float64 `json:"top20PercentageOfTotal"`
	DustPercentage         float64 `json:"dustPercentageOfSupply"`
	BundledPercentage      float64 `json:"bundledPercentage"`
}

// Report is the aggregate root of one holder-distribution analysis.
type Report struct {
	ReportID    string `json:"reportId"`
	TokenMint   string `json:"tokenMint"`
	GeneratedAt int64  `json:"generatedAt"` // unix ms

	TotalHolders           int     `json:"totalHolders"`
	LiquidityPoolsDetected int     `json:"liquidityPoolsDetected"`
	LPBalance              float64 `json:"lpBalance"`
	LPPercentageOfSupply   float64 `json:"lpPercentageOfSupply"`
	NonLPHolders           int     `json:"nonLpHolders"`
	TotalBalance           float64 `json:"totalBalance"`

	Tiers       TierCounts       `json:"tiers"`
	SimpleTiers SimpleTierCounts `json:"simpleTiers"`
	RealWallets int              `json:"realWallets"`

	TokenPriceUSD        float64        `json:"tokenPriceUSD"`
	PriceSource          string         `json:"priceSource"`
	PriceDiscoveryFailed bool           `json:"priceDiscoveryFailed"`
	PriceTrace           []PriceAttempt `json:"priceTrace,omitempty"`

	Holders            []ClassifiedHolder `json:"holders"`
	LiquidityPools     []ClassifiedHolder `json:"liquidityPools"`
	PotentialDevWallet *DevWalletGuess    `json:"potentialDevWallet,omitempty"`
	Socials            Socials            `json:"socials"`
	DexStatus          DexStatus          `json:"dexStatus"`
	CreatorInfo        *CreatorInfo       `json:"creatorInfo,omitempty"`
	InsidersGraph      *ClusterGraph      `json:"insidersGraph,omitempty"`

	DistributionStats DistributionStats `json:"distributionStats"`
	CirculatingSupply SupplyFigure      `json:"circulatingSupply"`
	RiskFlags         []string          `json:"riskFlags"`
	HealthScore       HealthScore       `json:"healthScore"`

	SourceErrors    map[string]string `json:"sourceErrors,omitempty"`
	ExecutionTimeMs int64             `json:"executionTimeMs"`
}
