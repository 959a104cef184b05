package domain

// Launchpad platforms.
const (
	PlatformPumpFun  = "pump.fun"
	PlatformLetsBonk = "letsbonk"
	PlatformMoonshot = "moonshot"
	PlatformUnknown  = "unknown"
)

// CreatorInfo is launchpad metadata about who minted the token.
type CreatorInfo struct {
	Platform        string  `json:"platform"`
	DetectionMethod string  `json:"detectionMethod"`
	CreatorWallet   string  `json:"creatorWallet,omitempty"`
	Name            string  `json:"name,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	CreatedAt       int64   `json:"createdAt,omitempty"` // unix ms
	Graduated       bool    `json:"graduated"`
	MarketCapUSD    float64 `json:"marketCapUsd,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// DevWalletGuess is the best guess at the developer wallet.
type DevWalletGuess struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
	Confidence int     `json:"confidence"` // 0-100
	Reason     string  `json:"reason"`
}

// Socials are project links reported by the pairs API or creator metadata.
type Socials struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Discord  string `json:"discord,omitempty"`
}

// DexStatus describes promotional state on the pairs API.
type DexStatus struct {
	Paid    bool `json:"paid"`
	CTO     bool `json:"cto"`
	Boosted bool `json:"boosted"`
	Ad      bool `json:"ad"`
}
