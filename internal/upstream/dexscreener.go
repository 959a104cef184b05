package upstream

import (
	"context"
	"net/url"
	"strings"
)

// DexToken is a token side of a pair.
type DexToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DexLink is a website or social entry of pair info.
type DexLink struct {
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
	URL   string `json:"url"`
}

// DexPairInfo is the optional profile block of a pair.
type DexPairInfo struct {
	ImageURL string    `json:"imageUrl"`
	Websites []DexLink `json:"websites"`
	Socials  []DexLink `json:"socials"`
}

// DexPair is one pair from the pairs API.
type DexPair struct {
	ChainID     string   `json:"chainId"`
	DexID       string   `json:"dexId"`
	URL         string   `json:"url"`
	PairAddress string   `json:"pairAddress"`
	Labels      []string `json:"labels"`
	BaseToken   DexToken `json:"baseToken"`
	QuoteToken  DexToken `json:"quoteToken"`
	PriceUsd    string   `json:"priceUsd"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	FDV           float64      `json:"fdv"`
	MarketCap     float64      `json:"marketCap"`
	PairCreatedAt int64        `json:"pairCreatedAt"`
	Info          *DexPairInfo `json:"info"`
	Boosts        *struct {
		Active int `json:"active"`
	} `json:"boosts"`
}

// PriceUSD parses the quoted USD price; a missing quote is 0.
func (p DexPair) PriceUSD() float64 {
	price, err := parseAmount(p.PriceUsd)
	if err != nil {
		return 0
	}
	return price
}

// Boosted reports whether the pair has active boosts.
func (p DexPair) Boosted() bool {
	return p.Boosts != nil && p.Boosts.Active > 0
}

// DexOrder is a paid order on the pairs API.
type DexOrder struct {
	Type             string `json:"type"`
	Status           string `json:"status"`
	PaymentTimestamp int64  `json:"paymentTimestamp"`
}

// Approved reports whether the order went through.
func (o DexOrder) Approved() bool {
	return strings.EqualFold(o.Status, "approved")
}

// PairsClient talks to the public pairs/orders API.
type PairsClient struct {
	*Client
}

// NewPairsClient creates a pairs API client.
func NewPairsClient(baseURL string, opts ...Option) *PairsClient {
	if baseURL == "" {
		baseURL = DefaultPairsURL
	}
	return &PairsClient{Client: NewClient(ServicePairs, baseURL, PairsTimeout, opts...)}
}

// TokenPairs returns the Solana pairs trading mint.
func (c *PairsClient) TokenPairs(ctx context.Context, mint string) ([]DexPair, error) {
	var resp struct {
		Pairs []DexPair `json:"pairs"`
	}
	if err := c.getJSON(ctx, "pairs", "/latest/dex/tokens/"+url.PathEscape(mint), nil, &resp); err != nil {
		return nil, err
	}
	pairs := resp.Pairs[:0]
	for _, p := range resp.Pairs {
		if p.ChainID == "" || p.ChainID == "solana" {
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

// Orders returns the paid orders placed for mint.
func (c *PairsClient) Orders(ctx context.Context, mint string) ([]DexOrder, error) {
	var orders []DexOrder
	if err := c.getJSON(ctx, "orders", "/orders/v1/solana/"+url.PathEscape(mint), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
