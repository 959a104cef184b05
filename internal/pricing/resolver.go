// Package pricing resolves one USD price for a mint from an ordered list of
// sources, stopping at the first that yields a positive quote.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// ErrNoQuote is recorded for a source that answered without a usable price.
var ErrNoQuote = errors.New("no positive price")

// Source quotes a USD price for a mint.
type Source interface {
	Name() string
	Price(ctx context.Context, mint string) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context, mint string) (float64, error)
}

// Name implements Source.
func (s SourceFunc) Name() string { return s.Label }

// Price implements Source.
func (s SourceFunc) Price(ctx context.Context, mint string) (float64, error) {
	return s.Fn(ctx, mint)
}

// FirstSuccess queries sources in order and returns the first positive price.
// The trace holds one attempt per source consulted.
func FirstSuccess(ctx context.Context, mint string, sources []Source) (float64, string, []domain.PriceAttempt) {
	trace := make([]domain.PriceAttempt, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		price, err := src.Price(ctx, mint)
		if err == nil && !usable(price) {
			err = ErrNoQuote
		}
		if err != nil {
			trace = append(trace, domain.PriceAttempt{Source: src.Name(), Error: err.Error()})
			continue
		}
		trace = append(trace, domain.PriceAttempt{Source: src.Name(), Price: price})
		return price, src.Name(), trace
	}
	return 0, domain.PriceSourceNone, trace
}

func usable(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

// Resolver applies the manual override, the pairs API quote and the oracles.
type Resolver struct {
	pairs   upstream.PairsSource
	oracles []Source
	log     zerolog.Logger
}

// NewResolver creates a resolver. oracles are consulted in order after the pairs quote.
func NewResolver(pairs upstream.PairsSource, oracles []Source, log zerolog.Logger) *Resolver {
	return &Resolver{pairs: pairs, oracles: oracles, log: log}
}

// Resolve returns the USD price of mint. It never fails: when nothing quotes a
// price the result is zero with PriceDiscoveryFailed set. A positive manual
// price wins without any network call. pairs overrides the resolver's pairs
// source for this call when non-nil.
func (r *Resolver) Resolve(ctx context.Context, mint string, manual *float64, pairs upstream.PairsSource) domain.PriceQuote {
	if manual != nil && usable(*manual) {
		return domain.PriceQuote{
			PriceUSD: *manual,
			Source:   domain.PriceSourceManual,
			Trace:    []domain.PriceAttempt{{Source: domain.PriceSourceManual, Price: *manual}},
		}
	}

	if pairs == nil {
		pairs = r.pairs
	}
	sources := make([]Source, 0, len(r.oracles)+1)
	if pairs != nil {
		sources = append(sources, PairsQuote(pairs))
	}
	sources = append(sources, r.oracles...)

	price, source, trace := FirstSuccess(ctx, mint, sources)
	quote := domain.PriceQuote{PriceUSD: price, Source: source, Trace: trace}
	if price == 0 {
		quote.PriceDiscoveryFailed = true
		r.log.Warn().Str("mint", mint).Int("sources", len(trace)).Msg("price discovery failed")
	}
	return quote
}

// PairsQuote quotes the price of the highest-liquidity pair.
func PairsQuote(pairs upstream.PairsSource) Source {
	return SourceFunc{
		Label: domain.PriceSourcePairs,
		Fn: func(ctx context.Context, mint string) (float64, error) {
			list, err := pairs.TokenPairs(ctx, mint)
			if err != nil {
				return 0, err
			}
			best := BestPair(list, mint)
			if best == nil {
				return 0, fmt.Errorf("%w: no pairs", ErrNoQuote)
			}
			return best.PriceUSD(), nil
		},
	}
}

// BestPair returns the priced pair with the deepest USD liquidity where mint
// is the base token, or nil.
func BestPair(pairs []upstream.DexPair, mint string) *upstream.DexPair {
	var best *upstream.DexPair
	for i := range pairs {
		p := &pairs[i]
		if p.BaseToken.Address != "" && p.BaseToken.Address != mint {
			continue
		}
		if p.PriceUSD() <= 0 {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return best
}

// Oracle adapts an upstream price client.
func Oracle(name string, client interface {
	Price(ctx context.Context, mint string) (float64, error)
}) Source {
	return SourceFunc{Label: name, Fn: client.Price}
}
