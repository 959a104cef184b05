// Package reporting renders holder reports for terminals and spreadsheets.
package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"solana-holder-lab/internal/domain"
)

// DefaultTopHolders is how many holders RenderMarkdown lists.
const DefaultTopHolders = 20

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *domain.Report, topHolders int) string {
	if topHolders <= 0 {
		topHolders = DefaultTopHolders
	}
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Holder Report: %s\n\n", r.TokenMint))
	sb.WriteString(fmt.Sprintf("Generated: %s | Report: %s | %d ms\n\n",
		time.UnixMilli(r.GeneratedAt).UTC().Format(time.RFC3339), r.ReportID, r.ExecutionTimeMs))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Health | %d (%s) |\n", r.HealthScore.Score, r.HealthScore.Grade))
	sb.WriteString(fmt.Sprintf("| Price (USD) | %s (%s) |\n", formatPrice(r.TokenPriceUSD), r.PriceSource))
	sb.WriteString(fmt.Sprintf("| Total Holders | %d |\n", r.TotalHolders))
	sb.WriteString(fmt.Sprintf("| Non-LP Holders | %d |\n", r.NonLPHolders))
	sb.WriteString(fmt.Sprintf("| Real Wallets ($49-$200) | %d |\n", r.RealWallets))
	sb.WriteString(fmt.Sprintf("| Liquidity Pools | %d (%.2f%% of supply) |\n", r.LiquidityPoolsDetected, r.LPPercentageOfSupply))
	sb.WriteString(fmt.Sprintf("| Circulating Supply | %.2f (%.2f%%, $%.2f) |\n",
		r.CirculatingSupply.Tokens, r.CirculatingSupply.Percentage, r.CirculatingSupply.USD))
	sb.WriteString(fmt.Sprintf("| Top 5 / 10 / 20 | %.2f%% / %.2f%% / %.2f%% |\n",
		r.DistributionStats.Top5Percentage, r.DistributionStats.Top10Percentage, r.DistributionStats.Top20Percentage))
	sb.WriteString(fmt.Sprintf("| Dust Share | %.2f%% |\n", r.DistributionStats.DustPercentage))
	sb.WriteString(fmt.Sprintf("| Bundled Share | %.2f%% |\n", r.DistributionStats.BundledPercentage))
	sb.WriteString("\n")

	// Risk flags
	sb.WriteString("## Risk Flags\n\n")
	if len(r.RiskFlags) == 0 {
		sb.WriteString("None.\n\n")
	} else {
		for _, f := range r.RiskFlags {
			sb.WriteString(fmt.Sprintf("- %s\n", f))
		}
		sb.WriteString("\n")
	}

	// Tiers
	sb.WriteString("## Tiers\n\n")
	sb.WriteString("| Tier | Holders |\n")
	sb.WriteString("|------|---------|\n")
	for _, t := range domain.AllTiers {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", t, r.Tiers[t]))
	}
	sb.WriteString("\n")

	// Liquidity pools
	if len(r.LiquidityPools) > 0 {
		sb.WriteString("## Liquidity Pools\n\n")
		sb.WriteString("| Owner | Balance | % Supply | Reason | Confidence |\n")
		sb.WriteString("|-------|---------|----------|--------|------------|\n")
		for _, h := range r.LiquidityPools {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f%% | %s | %s |\n",
				h.OwnerAddress, h.BalanceUI, h.PercentageOfSupply, h.Classification.ReasonCode, h.Classification.Confidence))
		}
		sb.WriteString("\n")
	}

	// Top holders
	sb.WriteString("## Top Holders\n\n")
	sb.WriteString("| # | Owner | Balance | USD | % Supply | Tier | Notes |\n")
	sb.WriteString("|---|-------|---------|-----|----------|------|-------|\n")
	n := 0
	for _, h := range r.Holders {
		if h.Classification.IsLP {
			continue
		}
		if n == topHolders {
			break
		}
		n++
		sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f%% | %s | %s |\n",
			h.Rank, h.OwnerAddress, h.BalanceUI, h.USDValue, h.PercentageOfSupply, h.Tier, notes(h)))
	}
	sb.WriteString("\n")

	if r.PotentialDevWallet != nil {
		d := r.PotentialDevWallet
		sb.WriteString("## Potential Dev Wallet\n\n")
		sb.WriteString(fmt.Sprintf("%s holds %.2f%% (confidence %d): %s\n\n", d.Address, d.Percentage, d.Confidence, d.Reason))
	}

	if len(r.SourceErrors) > 0 {
		sb.WriteString("## Degraded Sources\n\n")
		keys := make([]string, 0, len(r.SourceErrors))
		for k := range r.SourceErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", k, r.SourceErrors[k]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func notes(h domain.ClassifiedHolder) string {
	var parts []string
	if h.IsCreator {
		parts = append(parts, "creator")
	}
	if h.IsBundled {
		parts = append(parts, "bundled")
	}
	return strings.Join(parts, ", ")
}

func formatPrice(p float64) string {
	if p == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.10g", p)
}
