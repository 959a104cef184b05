package upstream

import (
	"context"
	"net/url"
)

// MarketPair is one trading pair reported by the markets API.
type MarketPair struct {
	PairAddress     string  `json:"pairAddress"`
	PairLabel       string  `json:"pairLabel"`
	ExchangeName    string  `json:"exchangeName"`
	ExchangeAddress string  `json:"exchangeAddress"`
	LiquidityUSD    float64 `json:"liquidityUsd"`
	UsdPrice        float64 `json:"usdPrice"`
}

// MarketHolder is one entry of the markets API top-holders list.
type MarketHolder struct {
	OwnerAddress      string  `json:"ownerAddress"`
	OwnerProgram      string  `json:"ownerProgram"`
	OwnerAddressLabel string  `json:"ownerAddressLabel"`
	Entity            string  `json:"entity"`
	BalanceFormatted  string  `json:"balanceFormatted"`
	PercentageOfTotal float64 `json:"percentageRelativeToTotalSupply"`
	IsContract        bool    `json:"isContract"`
}

// Labels returns the free-text label fields of the holder.
func (h MarketHolder) Labels() []string {
	return []string{h.OwnerAddressLabel, h.Entity}
}

// MarketsClient talks to the keyed markets/holders API.
type MarketsClient struct {
	*Client
	apiKey string
}

// NewMarketsClient creates a markets API client. The key is sent as X-API-Key.
func NewMarketsClient(baseURL, apiKey string, opts ...Option) *MarketsClient {
	if baseURL == "" {
		baseURL = DefaultMarketsURL
	}
	opts = append([]Option{WithHeader("X-API-Key", apiKey)}, opts...)
	return &MarketsClient{
		Client: NewClient(ServiceMarkets, baseURL, MarketsTimeout, opts...),
		apiKey: apiKey,
	}
}

// Pairs returns the pairs listed for mint.
func (c *MarketsClient) Pairs(ctx context.Context, mint string) ([]MarketPair, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	var resp struct {
		Pairs []MarketPair `json:"pairs"`
	}
	if err := c.getJSON(ctx, "pairs", "/token/mainnet/"+url.PathEscape(mint)+"/pairs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

// TopHolders returns the largest holders of mint as labelled by the markets API.
func (c *MarketsClient) TopHolders(ctx context.Context, mint string) ([]MarketHolder, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	var resp struct {
		Result []MarketHolder `json:"result"`
	}
	query := url.Values{"limit": {"100"}}
	if err := c.getJSON(ctx, "top-holders", "/token/mainnet/"+url.PathEscape(mint)+"/top-holders", query, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}
