// Package report assembles a holder-distribution report for one mint.
// Only the ledger leg can fail a report; every other source degrades.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"solana-holder-lab/internal/classify"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/insiders"
	"solana-holder-lab/internal/launchpad"
	"solana-holder-lab/internal/ledger"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/pools"
	"solana-holder-lab/internal/pricing"
	"solana-holder-lab/internal/scoring"
	"solana-holder-lab/internal/solana"
	"solana-holder-lab/internal/telemetry"
	"solana-holder-lab/internal/upstream"
)

// ErrInvalidMint is returned for a token mint that is not a base58 public key.
var ErrInvalidMint = errors.New("invalid token mint")

// DefaultOwnerProgramLimit is how many of the largest holders get their owner
// program resolved.
const DefaultOwnerProgramLimit = 200

// Source keys in Report.SourceErrors beyond those of the pools package.
const (
	SourceOrders        = "orders"
	SourceInsiders      = "insiders"
	SourceCreator       = "creator"
	SourceOwnerPrograms = "owner-programs"
)

// Request asks for a report on one mint.
type Request struct {
	TokenMint   string   `json:"tokenMint"`
	ManualPrice *float64 `json:"manualPrice,omitempty"`
}

// OrdersSource returns paid orders for a mint.
type OrdersSource interface {
	Orders(ctx context.Context, mint string) ([]upstream.DexOrder, error)
}

// Options for creating Assembler.
type Options struct {
	// Required
	Fetcher *ledger.Fetcher

	// Optional sources; nil components degrade to empty results
	Pairs      upstream.PairsSource
	Orders     OrdersSource
	Pools      *pools.Aggregator
	Prices     *pricing.Resolver
	Insiders   *insiders.Analyzer
	Launchpad  *launchpad.Resolver
	Classifier *classify.Classifier

	OwnerProgramLimit int

	Metrics *observability.Metrics
	Tracer  trace.Tracer
	Logger  zerolog.Logger
}

// Assembler orchestrates the sources, classifier and scorer. It keeps no
// state between invocations and is safe for concurrent use.
type Assembler struct {
	fetcher    *ledger.Fetcher
	pairs      upstream.PairsSource
	orders     OrdersSource
	pools      *pools.Aggregator
	prices     *pricing.Resolver
	insiders   *insiders.Analyzer
	launchpad  *launchpad.Resolver
	classifier *classify.Classifier

	ownerProgramLimit int

	metrics *observability.Metrics
	tracer  trace.Tracer
	log     zerolog.Logger
}

// New creates a new Assembler.
func New(opts Options) *Assembler {
	a := &Assembler{
		fetcher:           opts.Fetcher,
		pairs:             opts.Pairs,
		orders:            opts.Orders,
		pools:             opts.Pools,
		prices:            opts.Prices,
		insiders:          opts.Insiders,
		launchpad:         opts.Launchpad,
		classifier:        opts.Classifier,
		ownerProgramLimit: opts.OwnerProgramLimit,
		metrics:           opts.Metrics,
		tracer:            opts.Tracer,
		log:               opts.Logger,
	}
	if a.pools == nil {
		a.pools = pools.NewAggregator(nil, nil, nil, a.log)
	}
	if a.prices == nil {
		a.prices = pricing.NewResolver(nil, nil, a.log)
	}
	if a.insiders == nil {
		a.insiders = insiders.NewAnalyzer(nil, a.log)
	}
	if a.launchpad == nil {
		a.launchpad = launchpad.NewResolver(nil, nil, a.log)
	}
	if a.classifier == nil {
		a.classifier = classify.New(nil, classify.DefaultOptions())
	}
	if a.ownerProgramLimit <= 0 {
		a.ownerProgramLimit = DefaultOwnerProgramLimit
	}
	if a.tracer == nil {
		a.tracer = noop.NewTracerProvider().Tracer("")
	}
	return a
}

// sources holds the settled outputs of the concurrent legs.
type sources struct {
	ledger  *ledger.Result
	pools   *pools.Result
	creator launchpad.Result
	price   domain.PriceQuote
	graph   *domain.ClusterGraph
	orders  []upstream.DexOrder
	errs    map[string]string
}

// Build produces the report for req.TokenMint.
func (a *Assembler) Build(ctx context.Context, req Request) (*domain.Report, error) {
	start := time.Now()
	mint := strings.TrimSpace(req.TokenMint)
	if err := solana.ValidateAddress(mint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if a.fetcher == nil {
		return nil, ledger.ErrNoEndpoints
	}

	reportID := uuid.NewString()
	ctx = telemetry.WithInvocation(ctx, reportID, mint)
	ctx, span := a.tracer.Start(ctx, "report.build", trace.WithAttributes(
		attribute.String("report.id", reportID),
		attribute.String("token.mint", mint),
	))
	defer span.End()

	log := a.log.With().Str("report_id", reportID).Str("mint", mint).Logger()

	src, err := a.gather(ctx, mint, req.ManualPrice)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.metrics.RecordReport("failed", time.Since(start), 0, "")
		log.Error().Err(err).Msg("report failed")
		return nil, err
	}

	rep := a.assemble(ctx, mint, src)
	rep.ReportID = reportID
	rep.GeneratedAt = time.Now().UnixMilli()
	rep.ExecutionTimeMs = time.Since(start).Milliseconds()

	for source := range rep.SourceErrors {
		a.metrics.RecordSourceDegraded(source)
	}
	a.metrics.RecordReport("success", time.Since(start), rep.TotalHolders, rep.HealthScore.Grade)
	span.SetAttributes(
		attribute.Int("report.holders", rep.TotalHolders),
		attribute.Int("report.lp", rep.LiquidityPoolsDetected),
	)

	log.Info().
		Int("holders", rep.TotalHolders).
		Int("lp", rep.LiquidityPoolsDetected).
		Str("grade", rep.HealthScore.Grade).
		Int("degraded", len(rep.SourceErrors)).
		Int64("ms", rep.ExecutionTimeMs).
		Msg("report generated")

	return rep, nil
}

// gather runs every network leg concurrently. A ledger failure cancels the rest.
func (a *Assembler) gather(ctx context.Context, mint string, manual *float64) (*sources, error) {
	var pairs upstream.PairsSource
	if a.pairs != nil {
		pairs = upstream.NewPairsMemo(a.pairs)
	}

	src := &sources{errs: make(map[string]string)}
	var ordersErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := a.fetcher.Fetch(gctx, mint)
		if err != nil {
			return err
		}
		src.ledger = res
		return nil
	})

	g.Go(func() error {
		src.pools = a.pools.Aggregate(gctx, mint, pairs)
		det := launchpad.Detect(mint, src.pools.Pairs, src.pools.MarketPairs)
		src.creator = a.launchpad.Resolve(gctx, mint, det)
		return nil
	})

	g.Go(func() error {
		src.price = a.prices.Resolve(gctx, mint, manual, pairs)
		return nil
	})

	g.Go(func() error {
		src.graph = a.insiders.Analyze(gctx, mint)
		return nil
	})

	if a.orders != nil {
		g.Go(func() error {
			src.orders, ordersErr = a.orders.Orders(gctx, mint)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for k, v := range src.pools.SourceErrors {
		src.errs[k] = v
	}
	if ordersErr != nil {
		src.errs[SourceOrders] = ordersErr.Error()
	}
	if src.graph.SoftError != "" {
		src.errs[SourceInsiders] = src.graph.SoftError
	}
	if src.creator.Info != nil && src.creator.Info.Error != "" {
		src.errs[SourceCreator] = src.creator.Info.Error
	}
	return src, nil
}

// assemble runs the sequential part: owner programs, activity, classification, scoring.
func (a *Assembler) assemble(ctx context.Context, mint string, src *sources) *domain.Report {
	holders := src.ledger.Holders
	scoring.Annotate(holders, src.price.PriceUSD)

	a.resolveOwnerPrograms(ctx, src, holders)

	registry := src.pools.Registry
	candidates := a.classifier.HeuristicCandidates(holders, registry)
	var activity classify.Activity
	if len(candidates) > 0 {
		activity = a.fetcher.ActivitySignals(ctx, src.ledger.Endpoint, candidates)
	}
	classes := a.classifier.ClassifyAll(holders, registry, activity)

	creatorWallet := ""
	if src.creator.Info != nil {
		creatorWallet = src.creator.Info.CreatorWallet
	}
	assessment := scoring.Assess(scoring.Input{
		Holders:       holders,
		Classes:       classes,
		PriceUSD:      src.price.PriceUSD,
		Graph:         src.graph,
		CreatorWallet: creatorWallet,
	})

	rep := &domain.Report{
		TokenMint:              mint,
		TotalHolders:           len(assessment.Holders),
		LiquidityPoolsDetected: len(assessment.LiquidityPools),
		LPBalance:              assessment.LPBalance,
		LPPercentageOfSupply:   assessment.LPPercentage,
		NonLPHolders:           assessment.NonLPHolders,
		TotalBalance:           assessment.TotalBalance,
		Tiers:                  assessment.Tiers,
		SimpleTiers:            assessment.SimpleTiers,
		RealWallets:            assessment.RealWallets,
		TokenPriceUSD:          src.price.PriceUSD,
		PriceSource:            src.price.Source,
		PriceDiscoveryFailed:   src.price.PriceDiscoveryFailed,
		PriceTrace:             src.price.Trace,
		Holders:                assessment.Holders,
		LiquidityPools:         assessment.LiquidityPools,
		PotentialDevWallet:     assessment.DevWallet,
		Socials:                launchpad.Socials(src.pools.Pairs, src.creator.Socials),
		DexStatus:              launchpad.Status(src.orders, src.pools.Pairs),
		CreatorInfo:            src.creator.Info,
		DistributionStats:      assessment.Stats,
		CirculatingSupply:      assessment.Circulating,
		RiskFlags:              assessment.RiskFlags,
		HealthScore:            assessment.Health,
	}
	if !src.graph.IsEmpty() {
		rep.InsidersGraph = src.graph
	}
	if len(src.errs) > 0 {
		rep.SourceErrors = src.errs
	}
	return rep
}

// resolveOwnerPrograms fills AccountOwnerProgram for the largest holders.
func (a *Assembler) resolveOwnerPrograms(ctx context.Context, src *sources, holders []domain.HolderAccount) {
	idx := make([]int, len(holders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return holders[idx[i]].BalanceUI > holders[idx[j]].BalanceUI
	})
	if len(idx) > a.ownerProgramLimit {
		idx = idx[:a.ownerProgramLimit]
	}

	owners := make([]string, 0, len(idx))
	for _, i := range idx {
		owners = append(owners, holders[i].OwnerAddress)
	}
	if len(owners) == 0 {
		return
	}

	programs, err := a.fetcher.ResolveOwnerPrograms(ctx, src.ledger.Endpoint, owners)
	if err != nil {
		src.errs[SourceOwnerPrograms] = err.Error()
		a.log.Warn().Err(err).Msg("owner program resolution degraded")
	}
	for _, i := range idx {
		if program, ok := programs[holders[i].OwnerAddress]; ok {
			holders[i].AccountOwnerProgram = program
		}
	}
}
