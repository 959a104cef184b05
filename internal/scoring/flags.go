package scoring

import "fmt"

// Risk flag thresholds.
const (
	flagTop5Percentage    = 25
	flagMinLPPercentage   = 15
	flagWhaleHolderCount  = 50
	flagDustPercentage    = 30
	flagBundledPercentage = 10
)

// FlagInput holds the figures risk flags are evaluated on.
type FlagInput struct {
	Top5Percentage    float64
	LPPercentage      float64
	LPCount           int
	WhaleCount        int
	TotalHolders      int
	DustPercentage    float64
	BundledPercentage float64
}

// RiskFlags evaluates every flag independently, in a fixed order.
func RiskFlags(in FlagInput) []string {
	flags := []string{}
	if in.Top5Percentage > flagTop5Percentage {
		flags = append(flags, fmt.Sprintf("Top 5 holders control %.2f%% of circulating supply", in.Top5Percentage))
	}
	if in.LPCount > 0 && in.LPPercentage < flagMinLPPercentage {
		flags = append(flags, fmt.Sprintf("Low liquidity: pools hold only %.2f%% of supply", in.LPPercentage))
	}
	if in.WhaleCount == 0 && in.TotalHolders > flagWhaleHolderCount {
		flags = append(flags, fmt.Sprintf("No whale holders among %d holders", in.TotalHolders))
	}
	if in.DustPercentage > flagDustPercentage {
		flags = append(flags, fmt.Sprintf("Dust wallets hold %.2f%% of supply", in.DustPercentage))
	}
	if in.BundledPercentage > flagBundledPercentage {
		flags = append(flags, fmt.Sprintf("Bundled wallets hold %.2f%% of supply", in.BundledPercentage))
	}
	return flags
}
