package scoring

import (
	"math"

	"solana-holder-lab/internal/domain"
)

// Annotate fills USDValue and PercentageOfSupply on every holder and returns the
// total balance. Percentages are relative to the sum of all balances, pools included.
func Annotate(holders []domain.HolderAccount, price float64) float64 {
	price = finite(price)
	var total float64
	for _, h := range holders {
		total += finite(h.BalanceUI)
	}
	for i := range holders {
		bal := finite(holders[i].BalanceUI)
		holders[i].USDValue = bal * price
		holders[i].PercentageOfSupply = percent(bal, total)
	}
	return total
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return finite(part / whole * 100)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
