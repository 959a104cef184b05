package upstream

import (
	"context"
	"net/url"
)

// PumpFunCoin is the pump.fun frontend view of a coin.
type PumpFunCoin struct {
	Mint             string  `json:"mint"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Creator          string  `json:"creator"`
	CreatedTimestamp int64   `json:"created_timestamp"`
	Complete         bool    `json:"complete"`
	USDMarketCap     float64 `json:"usd_market_cap"`
	BondingCurve     string  `json:"bonding_curve"`
	Website          string  `json:"website"`
	Twitter          string  `json:"twitter"`
	Telegram         string  `json:"telegram"`
}

// PumpFunClient queries the pump.fun frontend API.
type PumpFunClient struct {
	*Client
}

// NewPumpFunClient creates a pump.fun client.
func NewPumpFunClient(baseURL string, opts ...Option) *PumpFunClient {
	if baseURL == "" {
		baseURL = DefaultPumpFunURL
	}
	return &PumpFunClient{Client: NewClient(ServicePumpFun, baseURL, CreatorTimeout, opts...)}
}

// Coin returns coin metadata for mint.
func (c *PumpFunClient) Coin(ctx context.Context, mint string) (*PumpFunCoin, error) {
	var coin PumpFunCoin
	if err := c.getJSON(ctx, "coin", "/coins/"+url.PathEscape(mint), nil, &coin); err != nil {
		return nil, err
	}
	if coin.Mint == "" && coin.Creator == "" {
		return nil, ErrNoData
	}
	return &coin, nil
}

// LaunchLabMint is the Raydium LaunchLab view of a mint.
type LaunchLabMint struct {
	Mint       string  `json:"mint"`
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Creator    string  `json:"creator"`
	CreateAt   int64   `json:"createAt"`
	Finishing  float64 `json:"finishingRate"`
	MarketCap  float64 `json:"marketCap"`
	PlatformID string  `json:"platformId"`
	Website    string  `json:"website"`
	Twitter    string  `json:"twitter"`
	Telegram   string  `json:"telegram"`
}

// Graduated reports whether the bonding curve has completed.
func (m LaunchLabMint) Graduated() bool {
	return m.Finishing >= 100
}

// LaunchLabClient queries the Raydium LaunchLab mint API.
type LaunchLabClient struct {
	*Client
}

// NewLaunchLabClient creates a LaunchLab client.
func NewLaunchLabClient(baseURL string, opts ...Option) *LaunchLabClient {
	if baseURL == "" {
		baseURL = DefaultLaunchLabURL
	}
	return &LaunchLabClient{Client: NewClient(ServiceLaunchLab, baseURL, CreatorTimeout, opts...)}
}

// Mint returns LaunchLab metadata for mint.
func (c *LaunchLabClient) Mint(ctx context.Context, mint string) (*LaunchLabMint, error) {
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Rows []LaunchLabMint `json:"rows"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "mint", "/get/by/mints", url.Values{"ids": {mint}}, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Data.Rows {
		if resp.Data.Rows[i].Mint == mint || len(resp.Data.Rows) == 1 {
			return &resp.Data.Rows[i], nil
		}
	}
	return nil, ErrNoData
}
