package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"solana-holder-lab/internal/domain"
)

var csvHeader = []string{
	"rank", "owner", "token_account", "balance", "usd_value", "percentage_of_supply",
	"tier", "simple_tier", "is_lp", "reason", "confidence", "is_bundled", "is_creator",
}

// RenderHoldersCSV renders every holder, LP accounts included, as CSV string.
func RenderHoldersCSV(holders []domain.ClassifiedHolder) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, h := range holders {
		row := []string{
			strconv.Itoa(h.Rank),
			h.OwnerAddress,
			h.TokenAccountAddress,
			formatFloat(h.BalanceUI),
			formatFloat(h.USDValue),
			formatFloat(h.PercentageOfSupply),
			string(h.Tier),
			string(h.SimpleTier),
			strconv.FormatBool(h.Classification.IsLP),
			h.Classification.ReasonCode,
			string(h.Classification.Confidence),
			strconv.FormatBool(h.IsBundled),
			strconv.FormatBool(h.IsCreator),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
