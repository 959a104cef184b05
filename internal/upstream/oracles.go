package upstream

import (
	"context"
	"fmt"
	"net/url"
)

// JupiterClient queries the Jupiter price API.
type JupiterClient struct {
	*Client
}

// NewJupiterClient creates a Jupiter price client.
func NewJupiterClient(baseURL string, opts ...Option) *JupiterClient {
	if baseURL == "" {
		baseURL = DefaultJupiterURL
	}
	return &JupiterClient{Client: NewClient(ServiceJupiter, baseURL, OracleTimeout, opts...)}
}

// Price returns the USD price of mint.
func (c *JupiterClient) Price(ctx context.Context, mint string) (float64, error) {
	var resp map[string]struct {
		UsdPrice float64 `json:"usdPrice"`
	}
	if err := c.getJSON(ctx, "price", "", url.Values{"ids": {mint}}, &resp); err != nil {
		return 0, err
	}
	entry, ok := resp[mint]
	if !ok {
		return 0, ErrNoData
	}
	return entry.UsdPrice, nil
}

// CoinGeckoClient queries the CoinGecko on-chain token price endpoint.
type CoinGeckoClient struct {
	*Client
}

// NewCoinGeckoClient creates a CoinGecko client. apiKey may be empty.
func NewCoinGeckoClient(baseURL, apiKey string, opts ...Option) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	opts = append([]Option{WithHeader("x-cg-demo-api-key", apiKey)}, opts...)
	return &CoinGeckoClient{Client: NewClient(ServiceCoinGecko, baseURL, OracleTimeout, opts...)}
}

// Price returns the USD price of mint.
func (c *CoinGeckoClient) Price(ctx context.Context, mint string) (float64, error) {
	var resp struct {
		Data struct {
			Attributes struct {
				TokenPrices map[string]string `json:"token_prices"`
			} `json:"attributes"`
		} `json:"data"`
	}
	path := "/onchain/simple/networks/solana/token_price/" + url.PathEscape(mint)
	if err := c.getJSON(ctx, "token-price", path, nil, &resp); err != nil {
		return 0, err
	}
	raw, ok := resp.Data.Attributes.TokenPrices[mint]
	if !ok || raw == "" {
		return 0, ErrNoData
	}
	price, err := parseAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return price, nil
}
