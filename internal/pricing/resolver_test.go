package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

const mint = "MintA"

type fixedSource struct {
	name  string
	price float64
	err   error
	calls int
}

func (s *fixedSource) Name() string { return s.name }

func (s *fixedSource) Price(context.Context, string) (float64, error) {
	s.calls++
	return s.price, s.err
}

type fakePairs struct {
	pairs []upstream.DexPair
	err   error
	calls int
}

func (f *fakePairs) TokenPairs(context.Context, string) ([]upstream.DexPair, error) {
	f.calls++
	return f.pairs, f.err
}

func pair(addr, price string, liquidity float64) upstream.DexPair {
	p := upstream.DexPair{PairAddress: addr, PriceUsd: price}
	p.BaseToken.Address = mint
	p.Liquidity.USD = liquidity
	return p
}

func TestFirstSuccess(t *testing.T) {
	a := &fixedSource{name: "a", err: errors.New("down")}
	b := &fixedSource{name: "b", price: -1}
	c := &fixedSource{name: "c", price: 0.5}
	d := &fixedSource{name: "d", price: 9}

	price, source, trace := FirstSuccess(context.Background(), mint, []Source{a, b, c, d})
	assert.Equal(t, 0.5, price)
	assert.Equal(t, "c", source)
	require.Len(t, trace, 3)
	assert.Equal(t, "down", trace[0].Error)
	assert.Equal(t, ErrNoQuote.Error(), trace[1].Error)
	assert.Equal(t, 0.5, trace[2].Price)
	assert.Equal(t, 0, d.calls, "later sources are not consulted")
}

func TestFirstSuccess_NoSources(t *testing.T) {
	price, source, trace := FirstSuccess(context.Background(), mint, nil)
	assert.Zero(t, price)
	assert.Equal(t, domain.PriceSourceNone, source)
	assert.Empty(t, trace)
}

func TestResolve_ManualWins(t *testing.T) {
	pairs := &fakePairs{pairs: []upstream.DexPair{pair("P", "2", 10)}}
	oracle := &fixedSource{name: "jupiter", price: 3}
	manual := 1.25

	q := NewResolver(pairs, []Source{oracle}, zerolog.Nop()).Resolve(context.Background(), mint, &manual, nil)
	assert.Equal(t, 1.25, q.PriceUSD)
	assert.Equal(t, domain.PriceSourceManual, q.Source)
	assert.False(t, q.PriceDiscoveryFailed)
	assert.Zero(t, pairs.calls)
	assert.Zero(t, oracle.calls)
}

func TestResolve_NonPositiveManualIgnored(t *testing.T) {
	pairs := &fakePairs{pairs: []upstream.DexPair{pair("P", "2", 10)}}
	manual := 0.0

	q := NewResolver(pairs, nil, zerolog.Nop()).Resolve(context.Background(), mint, &manual, nil)
	assert.Equal(t, 2.0, q.PriceUSD)
	assert.Equal(t, domain.PriceSourcePairs, q.Source)
}

func TestResolve_PairsBeforeOracles(t *testing.T) {
	pairs := &fakePairs{pairs: []upstream.DexPair{
		pair("Shallow", "1.0", 100),
		pair("Deep", "1.1", 5000),
		pair("Unpriced", "", 99999),
	}}
	oracle := &fixedSource{name: domain.PriceSourceJupiter, price: 3}

	q := NewResolver(pairs, []Source{oracle}, zerolog.Nop()).Resolve(context.Background(), mint, nil, nil)
	assert.Equal(t, 1.1, q.PriceUSD)
	assert.Equal(t, domain.PriceSourcePairs, q.Source)
	assert.Zero(t, oracle.calls)
}

func TestResolve_FallsThroughToOracles(t *testing.T) {
	pairs := &fakePairs{err: errors.New("timeout")}
	jup := &fixedSource{name: domain.PriceSourceJupiter, err: upstream.ErrNoData}
	cg := &fixedSource{name: domain.PriceSourceCoinGecko, price: 0.01}

	q := NewResolver(pairs, []Source{jup, cg}, zerolog.Nop()).Resolve(context.Background(), mint, nil, nil)
	assert.Equal(t, 0.01, q.PriceUSD)
	assert.Equal(t, domain.PriceSourceCoinGecko, q.Source)
	assert.False(t, q.PriceDiscoveryFailed)
	require.Len(t, q.Trace, 3)
	assert.Equal(t, domain.PriceSourcePairs, q.Trace[0].Source)
}

func TestResolve_AllFail(t *testing.T) {
	pairs := &fakePairs{}
	jup := &fixedSource{name: domain.PriceSourceJupiter, err: errors.New("down")}
	cg := &fixedSource{name: domain.PriceSourceCoinGecko, price: 0}

	q := NewResolver(pairs, []Source{jup, cg}, zerolog.Nop()).Resolve(context.Background(), mint, nil, nil)
	assert.Zero(t, q.PriceUSD)
	assert.Equal(t, domain.PriceSourceNone, q.Source)
	assert.True(t, q.PriceDiscoveryFailed)
	assert.Len(t, q.Trace, 3)
}

func TestResolve_OverridePairs(t *testing.T) {
	base := &fakePairs{pairs: []upstream.DexPair{pair("P", "5", 10)}}
	override := &fakePairs{pairs: []upstream.DexPair{pair("Q", "7", 10)}}

	q := NewResolver(base, nil, zerolog.Nop()).Resolve(context.Background(), mint, nil, override)
	assert.Equal(t, 7.0, q.PriceUSD)
	assert.Zero(t, base.calls)
}

func TestBestPair_SkipsQuoteSide(t *testing.T) {
	other := pair("Other", "100", 1e9)
	other.BaseToken.Address = "SOL"
	mine := pair("Mine", "0.2", 10)

	best := BestPair([]upstream.DexPair{other, mine}, mint)
	require.NotNil(t, best)
	assert.Equal(t, "Mine", best.PairAddress)
	assert.Nil(t, BestPair(nil, mint))
}

func TestOracle(t *testing.T) {
	src := Oracle("x", &fixedSource{price: 4})
	assert.Equal(t, "x", src.Name())
	p, err := src.Price(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, 4.0, p)
}
