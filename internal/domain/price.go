package domain

// Price sources.
const (
	PriceSourceManual    = "manual"
	PriceSourcePairs     = "dexscreener"
	PriceSourceJupiter   = "jupiter"
	PriceSourceCoinGecko = "coingecko"
	PriceSourceNone      = "none"
)

// PriceAttempt is one step of price discovery.
type PriceAttempt struct {
	Source string  `json:"source"`
	Price  float64 `json:"price,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// PriceQuote is the resolved USD price with provenance.
type PriceQuote struct {
	PriceUSD             float64        `json:"priceUsd"`
	Source               string         `json:"source"`
	PriceDiscoveryFailed bool           `json:"priceDiscoveryFailed"`
	Trace                []PriceAttempt `json:"trace"`
}
