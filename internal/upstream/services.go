package upstream

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Service names used in telemetry.
const (
	ServiceMarkets   = "markets"
	ServicePairs     = "dexscreener"
	ServiceInsiders  = "insiders"
	ServiceJupiter   = "jupiter"
	ServiceCoinGecko = "coingecko"
	ServicePumpFun   = "pumpfun"
	ServiceLaunchLab = "launchlab"
)

// Default base URLs.
const (
	DefaultMarketsURL   = "https://solana-gateway.moralis.io"
	DefaultPairsURL     = "https://api.dexscreener.com"
	DefaultInsidersURL  = "https://trench.bot/api/bundle/bundle_advanced"
	DefaultJupiterURL   = "https://lite-api.jup.ag/price/v3"
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultPumpFunURL   = "https://frontend-api-v3.pump.fun"
	DefaultLaunchLabURL = "https://launch-mint-v1.raydium.io"
)

// Per-call timeouts.
const (
	MarketsTimeout  = 8 * time.Second
	PairsTimeout    = 8 * time.Second
	InsidersTimeout = 10 * time.Second
	OracleTimeout   = 5 * time.Second
	CreatorTimeout  = 8 * time.Second
)

var (
	// ErrNotConfigured is returned when a client lacks a required credential.
	ErrNotConfigured = errors.New("upstream not configured")
	// ErrNoData is returned when a well-formed response carries nothing for the mint.
	ErrNoData = errors.New("no data for mint")
)

// parseAmount parses a decimal string, returning 0 for blanks.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
