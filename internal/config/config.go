// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"solana-holder-lab/internal/ledger"
	"solana-holder-lab/internal/upstream"
)

// Defaults.
const (
	DefaultHTTPAddr  = ":8080"
	DefaultCacheTTL  = 60 * time.Second
	DefaultPublicRPC = "https://api.mainnet-beta.solana.com"
	heliusRPCFormat  = "https://mainnet.helius-rpc.com/?api-key=%s"
	creditsPrefix    = "MARKETS_CREDITS_"
)

// Config is the full runtime configuration.
type Config struct {
	RPCEndpoints []ledger.EndpointConfig

	MarketsAPIURL   string
	MarketsAPIKey   string
	MarketsCredits  map[string]int // logical endpoint -> credits per call
	PairsAPIURL     string
	InsidersAPIURL  string
	JupiterPriceURL string
	CoinGeckoAPIURL string
	CoinGeckoAPIKey string
	PumpFunAPIURL   string
	LaunchLabAPIURL string

	CatalogFile            string
	HeuristicMinPercentage float64

	RedisURL string
	CacheTTL time.Duration

	PostgresDSN   string
	ClickhouseDSN string

	LogLevel  string
	LogPretty bool

	HTTPAddr       string
	TracingEnabled bool
	OTLPEndpoint   string
}

// Load reads optional .env files (".env" when none are given) and then the
// process environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnviron(os.Environ())
}

// FromEnviron builds a Config from KEY=value pairs.
func FromEnviron(environ []string) (*Config, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}
	get := func(key, def string) string {
		if v := strings.TrimSpace(env[key]); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		MarketsAPIURL:   get("MARKETS_API_URL", upstream.DefaultMarketsURL),
		MarketsAPIKey:   get("MARKETS_API_KEY", ""),
		MarketsCredits:  map[string]int{"pairs": 50, "top-holders": 50},
		PairsAPIURL:     get("PAIRS_API_URL", upstream.DefaultPairsURL),
		InsidersAPIURL:  get("INSIDERS_API_URL", upstream.DefaultInsidersURL),
		JupiterPriceURL: get("JUPITER_PRICE_URL", upstream.DefaultJupiterURL),
		CoinGeckoAPIURL: get("COINGECKO_API_URL", upstream.DefaultCoinGeckoURL),
		CoinGeckoAPIKey: get("COINGECKO_API_KEY", ""),
		PumpFunAPIURL:   get("PUMPFUN_API_URL", upstream.DefaultPumpFunURL),
		LaunchLabAPIURL: get("LAUNCHLAB_API_URL", upstream.DefaultLaunchLabURL),
		CatalogFile:     get("CATALOG_FILE", ""),
		RedisURL:        get("REDIS_URL", ""),
		PostgresDSN:     get("POSTGRES_DSN", ""),
		ClickhouseDSN:   get("CLICKHOUSE_DSN", ""),
		LogLevel:        get("LOG_LEVEL", "info"),
		HTTPAddr:        get("HTTP_ADDR", DefaultHTTPAddr),
		OTLPEndpoint:    get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	endpoints, err := parseEndpoints(get("RPC_ENDPOINTS", ""))
	if err != nil {
		return nil, err
	}
	if key := get("HELIUS_API_KEY", ""); key != "" {
		keyed := ledger.EndpointConfig{Name: "helius", URL: fmt.Sprintf(heliusRPCFormat, key)}
		endpoints = append([]ledger.EndpointConfig{keyed}, endpoints...)
	}
	if len(endpoints) == 0 {
		endpoints = []ledger.EndpointConfig{{Name: "public", URL: DefaultPublicRPC}}
	}
	cfg.RPCEndpoints = endpoints

	for k, v := range env {
		if !strings.HasPrefix(k, creditsPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid credit count %q", k, v)
		}
		endpoint := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, creditsPrefix)), "_", "-")
		cfg.MarketsCredits[endpoint] = n
	}

	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", get("CACHE_TTL", ""), DefaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = parseBool("LOG_PRETTY", get("LOG_PRETTY", "")); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = parseBool("TRACING_ENABLED", get("TRACING_ENABLED", "")); err != nil {
		return nil, err
	}
	if v := get("HEURISTIC_MIN_PERCENTAGE", ""); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil || pct <= 0 || pct > 100 {
			return nil, fmt.Errorf("HEURISTIC_MIN_PERCENTAGE: invalid percentage %q", v)
		}
		cfg.HeuristicMinPercentage = pct
	}

	return cfg, nil
}

// parseEndpoints parses "name=url" pairs separated by commas. A bare URL is
// named by its position.
func parseEndpoints(s string) ([]ledger.EndpointConfig, error) {
	var out []ledger.EndpointConfig
	seen := make(map[string]bool)
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		if !ok || strings.Contains(name, "://") {
			name, url = fmt.Sprintf("rpc-%d", i+1), part
		}
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return nil, fmt.Errorf("RPC_ENDPOINTS: endpoint %q: url must be http(s)", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("RPC_ENDPOINTS: duplicate endpoint name %q", name)
		}
		seen[name] = true
		out = append(out, ledger.EndpointConfig{Name: name, URL: url})
	}
	return out, nil
}

func parseDuration(key, v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func parseBool(key, v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid bool %q", key, v)
	}
	return b, nil
}
