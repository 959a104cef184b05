// Package app wires configuration into a ready report assembler and its sinks.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"solana-holder-lab/internal/cache"
	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/classify"
	"solana-holder-lab/internal/config"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/insiders"
	"solana-holder-lab/internal/launchpad"
	"solana-holder-lab/internal/ledger"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/pools"
	"solana-holder-lab/internal/pricing"
	"solana-holder-lab/internal/report"
	"solana-holder-lab/internal/storage"
	chstore "solana-holder-lab/internal/storage/clickhouse"
	"solana-holder-lab/internal/storage/memory"
	"solana-holder-lab/internal/storage/migrations"
	pgstore "solana-holder-lab/internal/storage/postgres"
	"solana-holder-lab/internal/telemetry"
	"solana-holder-lab/internal/tracing"
	"solana-holder-lab/internal/upstream"
)

// Version is reported in logs and traces.
var Version = "dev"

// App holds the wired components of one process.
type App struct {
	Assembler *report.Assembler
	Catalog   *catalog.Catalog
	// Usage is the store queried for usage summaries. It is the clickhouse
	// store when configured, else postgres, else in-memory.
	Usage    storage.UsageEventStore
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Tracer   trace.Tracer
	Log      zerolog.Logger

	closers []func()
}

// New connects every configured backend and builds the assembler.
// Postgres and clickhouse migrations run before the stores are used.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Log: log, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = observability.NewMetrics("holder_lab", a.Registry)

	if err := a.init(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, cfg *config.Config) error {
	tp, tracer, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
		Version:  Version,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.Tracer = tracer
	a.closers = append(a.closers, func() { _ = tp.Shutdown(context.Background()) })

	recorders := telemetry.Multi{
		telemetry.NewMetricsRecorder(a.Metrics),
		telemetry.NewLogRecorder(a.Log),
	}
	stores, err := a.openStores(ctx, cfg)
	if err != nil {
		return err
	}
	for _, s := range stores {
		recorders = append(recorders, telemetry.NewStoreRecorder(s, a.Log))
	}
	a.Usage = stores[0]

	a.Catalog = catalog.Default()
	if cfg.CatalogFile != "" {
		if a.Catalog, err = catalog.Load(cfg.CatalogFile); err != nil {
			return err
		}
		a.Log.Info().Str("version", a.Catalog.Version()).Msg("catalog loaded")
	}

	common := []upstream.Option{
		upstream.WithRecorder(recorders),
		upstream.WithTracer(a.Tracer),
		upstream.WithLogger(a.Log),
	}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		common = append(common, upstream.WithCache(cache.NewRedisCache(client, ""), cfg.CacheTTL))
	}
	with := func(extra ...upstream.Option) []upstream.Option {
		return append(append([]upstream.Option{}, common...), extra...)
	}

	var markets pools.MarketsSource
	if cfg.MarketsAPIKey != "" {
		markets = upstream.NewMarketsClient(cfg.MarketsAPIURL, cfg.MarketsAPIKey, with(upstream.WithCredits(cfg.MarketsCredits))...)
	} else {
		a.Log.Warn().Msg("MARKETS_API_KEY not set, markets pool source disabled")
	}
	pairs := upstream.NewPairsClient(cfg.PairsAPIURL, with()...)
	jupiter := upstream.NewJupiterClient(cfg.JupiterPriceURL, with()...)
	coingecko := upstream.NewCoinGeckoClient(cfg.CoinGeckoAPIURL, cfg.CoinGeckoAPIKey, with()...)

	fetcher := ledger.NewFetcher(
		ledger.DialEndpoints(cfg.RPCEndpoints, recorders),
		ledger.WithLogger(a.Log),
	)

	a.Assembler = report.New(report.Options{
		Fetcher: fetcher,
		Pairs:   pairs,
		Orders:  pairs,
		Pools:   pools.NewAggregator(markets, pairs, a.Catalog, a.Log),
		Prices: pricing.NewResolver(pairs, []pricing.Source{
			pricing.Oracle(domain.PriceSourceJupiter, jupiter),
			pricing.Oracle(domain.PriceSourceCoinGecko, coingecko),
		}, a.Log),
		Insiders: insiders.NewAnalyzer(upstream.NewInsidersClient(cfg.InsidersAPIURL, with()...), a.Log),
		Launchpad: launchpad.NewResolver(
			upstream.NewPumpFunClient(cfg.PumpFunAPIURL, with()...),
			upstream.NewLaunchLabClient(cfg.LaunchLabAPIURL, with()...),
			a.Log,
		),
		Classifier: classify.New(a.Catalog, classify.Options{HeuristicMinPercentage: cfg.HeuristicMinPercentage}),
		Metrics:    a.Metrics,
		Tracer:     a.Tracer,
		Logger:     a.Log,
	})

	a.Log.Info().
		Strs("rpc", fetcher.Endpoints()).
		Bool("cache", cfg.RedisURL != "").
		Bool("tracing", cfg.TracingEnabled).
		Msg("report engine ready")
	return nil
}

// openStores returns the configured usage stores, preferred query store first.
func (a *App) openStores(ctx context.Context, cfg *config.Config) ([]storage.UsageEventStore, error) {
	var stores []storage.UsageEventStore

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		stores = append(stores, chstore.NewUsageEventStore(conn, a.Metrics))
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		stores = append(stores, pgstore.NewUsageEventStore(pool, a.Metrics))
	}

	if len(stores) == 0 {
		stores = append(stores, memory.NewUsageEventStore(memory.WithMaxEvents(memory.DefaultMaxEvents)))
	}
	return stores, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
