// Package pools builds the liquidity-pool address registry of a mint from the
// markets API, the pairs API and the known-address catalog.
package pools

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// Source keys used in Result.SourceErrors.
const (
	SourceMarketsPairs      = "markets-pairs"
	SourceMarketsTopHolders = "markets-top-holders"
	SourcePairs             = "pairs"
	SourceBondingCurve      = "bonding-curve"
)

// MarketsSource is the keyed markets API.
type MarketsSource interface {
	Pairs(ctx context.Context, mint string) ([]upstream.MarketPair, error)
	TopHolders(ctx context.Context, mint string) ([]upstream.MarketHolder, error)
}

// Result is the settled pool registry of a mint.
type Result struct {
	Registry     *domain.PoolRegistry
	MarketPairs  []upstream.MarketPair
	Pairs        []upstream.DexPair
	SourceErrors map[string]string
}

// Aggregator unions pool candidates from every source.
type Aggregator struct {
	markets MarketsSource
	pairs   upstream.PairsSource
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewAggregator creates an aggregator. markets or pairs may be nil.
func NewAggregator(markets MarketsSource, pairs upstream.PairsSource, cat *catalog.Catalog, log zerolog.Logger) *Aggregator {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Aggregator{markets: markets, pairs: pairs, catalog: cat, log: log}
}

// Aggregate never fails: each source degrades to contributing nothing.
// pairs overrides the aggregator's pairs source for this call when non-nil.
func (a *Aggregator) Aggregate(ctx context.Context, mint string, pairs upstream.PairsSource) *Result {
	if pairs == nil {
		pairs = a.pairs
	}

	var (
		marketPairs []upstream.MarketPair
		marketsErr  error
		dexPairs    []upstream.DexPair
		pairsErr    error
	)

	var g errgroup.Group
	if a.markets != nil {
		g.Go(func() error {
			marketPairs, marketsErr = a.markets.Pairs(ctx, mint)
			return nil
		})
	}
	if pairs != nil {
		g.Go(func() error {
			dexPairs, pairsErr = pairs.TokenPairs(ctx, mint)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{
		Registry:     domain.NewPoolRegistry(),
		MarketPairs:  marketPairs,
		Pairs:        dexPairs,
		SourceErrors: make(map[string]string),
	}
	a.degrade(res, SourceMarketsPairs, mint, marketsErr)
	a.degrade(res, SourcePairs, mint, pairsErr)

	// Union order is fixed so origins do not depend on goroutine timing.
	for _, p := range marketPairs {
		res.Registry.Add(p.PairAddress, domain.PoolOriginMarketsAPI)
	}
	for _, p := range dexPairs {
		res.Registry.Add(p.PairAddress, domain.PoolOriginPairsAPI)
	}
	for _, addr := range a.catalog.LPWallets() {
		res.Registry.Add(addr, domain.PoolOriginProgramConstant)
	}
	for _, addr := range a.catalog.BurnAddresses() {
		res.Registry.Add(addr, domain.PoolOriginBurnConstant)
	}
	if curve, err := a.catalog.BondingCurveAddress(mint); err == nil {
		res.Registry.Add(curve, domain.PoolOriginProgramConstant)
	} else {
		a.degrade(res, SourceBondingCurve, mint, err)
	}

	if a.markets != nil && marketsErr == nil {
		a.verifyPrimaryLP(ctx, mint, res)
	}

	return res
}

func (a *Aggregator) verifyPrimaryLP(ctx context.Context, mint string, res *Result) {
	holders, err := a.markets.TopHolders(ctx, mint)
	if err != nil {
		a.degrade(res, SourceMarketsTopHolders, mint, err)
		return
	}
	if primary, ok := PrimaryLP(holders, res.Registry, a.catalog); ok {
		res.Registry.SetPrimaryLP(primary)
		a.log.Debug().Str("mint", mint).Str("primary_lp", primary).Msg("primary lp verified")
	}
}

func (a *Aggregator) degrade(res *Result, source, mint string, err error) {
	if err == nil {
		return
	}
	res.SourceErrors[source] = err.Error()
	a.log.Warn().Err(err).Str("source", source).Str("mint", mint).Msg("pool source degraded")
}

// PrimaryLP returns the first top holder that is a known pool address, is owned
// by a DEX or bonding-curve program, or carries liquidity-pool labels.
func PrimaryLP(holders []upstream.MarketHolder, registry *domain.PoolRegistry, cat *catalog.Catalog) (string, bool) {
	for _, h := range holders {
		if h.OwnerAddress == "" {
			continue
		}
		if registry.Contains(h.OwnerAddress) {
			return h.OwnerAddress, true
		}
		if _, ok := cat.ProgramLabel(h.OwnerProgram); ok {
			return h.OwnerAddress, true
		}
		for _, label := range h.Labels() {
			if IsPoolLabel(label) {
				return h.OwnerAddress, true
			}
		}
	}
	return "", false
}

// IsPoolLabel reports whether a free-text label uses liquidity-pool vocabulary.
func IsPoolLabel(label string) bool {
	l := strings.ToLower(label)
	switch {
	case l == "":
		return false
	case strings.Contains(l, "liquidity pool"), strings.Contains(l, "amm pool"):
		return true
	default:
		return strings.Contains(l, "pool") && strings.Contains(l, "lp")
	}
}
