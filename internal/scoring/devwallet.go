package scoring

import (
	"fmt"

	"solana-holder-lab/internal/domain"
)

const creatorConfidence = 90

// GuessDevWallet picks the likely developer wallet among ranked non-LP holders.
// The launchpad creator wins when it still holds; otherwise the largest holder
// is returned with a confidence that grows with its share.
func GuessDevWallet(nonLP []domain.ClassifiedHolder, creator string) *domain.DevWalletGuess {
	if creator != "" {
		for _, h := range nonLP {
			if h.OwnerAddress == creator {
				return &domain.DevWalletGuess{
					Address:    h.OwnerAddress,
					Percentage: h.PercentageOfSupply,
					Confidence: creatorConfidence,
					Reason: fmt.Sprintf("Launchpad creator wallet still holds %.2f%% of supply (rank %d)",
						h.PercentageOfSupply, h.Rank),
				}
			}
		}
	}

	if len(nonLP) == 0 {
		return nil
	}
	top := nonLP[0]
	reason := fmt.Sprintf("Largest non-LP holder with %.2f%% of supply", top.PercentageOfSupply)
	if creator != "" {
		reason = fmt.Sprintf("Creator wallet %s no longer holds; largest non-LP holder has %.2f%% of supply",
			creator, top.PercentageOfSupply)
	}
	return &domain.DevWalletGuess{
		Address:    top.OwnerAddress,
		Percentage: top.PercentageOfSupply,
		Confidence: shareConfidence(top.PercentageOfSupply),
		Reason:     reason,
	}
}

// shareConfidence maps a supply share to a confidence between 10 and 70.
func shareConfidence(pct float64) int {
	c := 10 + int(pct*2)
	if c > 70 {
		c = 70
	}
	if c < 10 {
		c = 10
	}
	return c
}
