package domain

// HolderAccount is one token account holding the analyzed mint.
// Built once per ledger account and not mutated after the report assembler
// fills in USDValue and PercentageOfSupply.
type HolderAccount struct {
	OwnerAddress        string  `json:"owner"`
	TokenAccountAddress string  `json:"tokenAccount"`
	AccountOwnerProgram string  `json:"accountOwnerProgram,omitempty"` // program owning the owner address, if resolved
	TokenProgram        string  `json:"tokenProgram"`                  // legacy token program or Token-2022
	BalanceRaw          string  `json:"balanceRaw"`                    // base units as reported by the ledger
	BalanceUI           float64 `json:"balance"`                       // decimal-adjusted amount
	Decimals            int     `json:"decimals"`
	USDValue            float64 `json:"usdValue"`
	PercentageOfSupply  float64 `json:"percentageOfSupply"` // relative to the summed balance of all accounts
}

// Addresses returns the owner and token account addresses.
func (h HolderAccount) Addresses() [2]string {
	return [2]string{h.OwnerAddress, h.TokenAccountAddress}
}

// ClassifiedHolder is a holder with its LP classification and tier flags.
type ClassifiedHolder struct {
	HolderAccount
	Rank           int              `json:"rank"`
	Classification LPClassification `json:"classification"`
	Tier           Tier             `json:"tier,omitempty"`       // empty for LP accounts
	SimpleTier     SimpleTier       `json:"simpleTier,omitempty"` // empty for LP accounts
	IsBundled      bool             `json:"isBundled,omitempty"`
	IsCreator      bool             `json:"isCreator,omitempty"`
}
