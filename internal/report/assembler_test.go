package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/insiders"
	"solana-holder-lab/internal/ledger"
	"solana-holder-lab/internal/observability"
	"solana-holder-lab/internal/pricing"
	"solana-holder-lab/internal/solana"
	"solana-holder-lab/internal/solana/stub"
	"solana-holder-lab/internal/upstream"
)

const mint = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"

func holder(address, owner, ui string) solana.TokenAccount {
	return solana.TokenAccount{
		Address:        address,
		Owner:          owner,
		Mint:           mint,
		ProgramID:      solana.TokenProgramID,
		Amount:         "0",
		Decimals:       6,
		UIAmountString: ui,
	}
}

// threeHolderRPC serves one DEX-owned pool account and two wallets.
func threeHolderRPC() *stub.RPCClient {
	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(holder("TA-pool", "PoolOwner", "900"))
	rpc.AddTokenAccount(holder("TA-a", "WalletA", "60"))
	rpc.AddTokenAccount(holder("TA-b", "WalletB", "40"))
	rpc.AddAccount("PoolOwner", &solana.AccountInfo{Owner: catalog.RaydiumAMMV4})
	rpc.AddAccount("WalletA", &solana.AccountInfo{Owner: solana.SystemProgramID})
	rpc.AddAccount("WalletB", &solana.AccountInfo{Owner: solana.SystemProgramID})
	return rpc
}

func price(v float64) *float64 { return &v }

func byOwner(t *testing.T, holders []domain.ClassifiedHolder, owner string) domain.ClassifiedHolder {
	t.Helper()
	for _, h := range holders {
		if h.OwnerAddress == owner {
			return h
		}
	}
	t.Fatalf("holder %s not in report", owner)
	return domain.ClassifiedHolder{}
}

func TestBuild_ThreeHolders(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	a := New(Options{
		Fetcher: ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: threeHolderRPC()}}),
		Metrics: metrics,
		Logger:  zerolog.Nop(),
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ReportID)
	assert.Equal(t, mint, rep.TokenMint)
	assert.Equal(t, domain.PriceSourceManual, rep.PriceSource)
	assert.False(t, rep.PriceDiscoveryFailed)

	assert.Equal(t, 1, rep.LiquidityPoolsDetected)
	assert.InDelta(t, 900.0, rep.LPBalance, 1e-9)
	assert.Equal(t, 2, rep.NonLPHolders)
	assert.InDelta(t, 100.0, rep.CirculatingSupply.Tokens, 1e-9)
	assert.InDelta(t, 100.0, rep.DistributionStats.Top5Percentage, 1e-9)

	pool := byOwner(t, rep.Holders, "PoolOwner")
	assert.True(t, pool.Classification.IsLP)
	assert.Equal(t, domain.ReasonDEXProgram, pool.Classification.ReasonCode)
	assert.Equal(t, catalog.RaydiumAMMV4, pool.AccountOwnerProgram)

	walletA := byOwner(t, rep.Holders, "WalletA")
	assert.Equal(t, domain.TierLarge, walletA.Tier)
	assert.Equal(t, domain.SimpleTierRetail, walletA.SimpleTier)
	walletB := byOwner(t, rep.Holders, "WalletB")
	assert.Equal(t, domain.TierLarge, walletB.Tier)

	var pct float64
	for _, h := range rep.Holders {
		pct += h.PercentageOfSupply
	}
	assert.InDelta(t, 100.0, pct, 1e-6)

	assert.Nil(t, rep.InsidersGraph)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsTotal.WithLabelValues("success")))
}

func TestBuild_InsidersNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	a := New(Options{
		Fetcher:  ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: threeHolderRPC()}}),
		Insiders: insiders.NewAnalyzer(upstream.NewInsidersClient(server.URL), zerolog.Nop()),
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)

	assert.Nil(t, rep.InsidersGraph)
	assert.NotContains(t, rep.SourceErrors, SourceInsiders)
	for _, flag := range rep.RiskFlags {
		assert.NotContains(t, flag, "Bundled")
	}
}

func TestBuild_InsidersFailureIsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	a := New(Options{
		Fetcher:  ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: threeHolderRPC()}}),
		Insiders: insiders.NewAnalyzer(upstream.NewInsidersClient(server.URL), zerolog.Nop()),
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)
	assert.Nil(t, rep.InsidersGraph)
	assert.Contains(t, rep.SourceErrors, SourceInsiders)
}

func TestBuild_NonFiniteInsiderPercentagesEncode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"insiders":[
			{"address":"WalletA","type":"bundler","percentage":"NaN"},
			{"address":"WalletB","type":"bundler","percentage":-50}
		],"clusters":[{"id":"c1","members":["WalletA","WalletB"],"totalPercentage":"Inf"}]}`))
	}))
	defer server.Close()

	a := New(Options{
		Fetcher:  ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: threeHolderRPC()}}),
		Insiders: insiders.NewAnalyzer(upstream.NewInsidersClient(server.URL), zerolog.Nop()),
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)
	require.NotNil(t, rep.InsidersGraph)
	assert.Equal(t, 0.0, rep.InsidersGraph.BundledPercentage)
	require.Len(t, rep.InsidersGraph.Clusters, 1)
	assert.Equal(t, 0.0, rep.InsidersGraph.Clusters[0].TotalPercentage)

	_, err = json.Marshal(rep)
	require.NoError(t, err)
}

func TestBuild_PriceDiscoveryFailed(t *testing.T) {
	failing := pricing.SourceFunc{Label: domain.PriceSourceJupiter, Fn: func(context.Context, string) (float64, error) {
		return 0, errors.New("unavailable")
	}}

	a := New(Options{
		Fetcher: ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: threeHolderRPC()}}),
		Prices:  pricing.NewResolver(nil, []pricing.Source{failing}, zerolog.Nop()),
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint})
	require.NoError(t, err)

	assert.Zero(t, rep.TokenPriceUSD)
	assert.True(t, rep.PriceDiscoveryFailed)
	assert.Equal(t, domain.PriceSourceNone, rep.PriceSource)
	assert.Equal(t, 2, rep.Tiers[domain.TierDust])
	assert.Equal(t, 2, rep.SimpleTiers[domain.SimpleTierDust])
	for _, h := range rep.Holders {
		if !h.Classification.IsLP {
			assert.Equal(t, domain.TierDust, h.Tier)
		}
	}
}

func TestBuild_NoHoldersIsFatal(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	a := New(Options{
		Fetcher: ledger.NewFetcher([]ledger.Endpoint{
			{Name: "a", Client: stub.NewRPCClient()},
			{Name: "b", Client: stub.NewRPCClient()},
		}),
		Metrics: metrics,
	})

	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.Error(t, err)
	assert.Nil(t, rep)

	var exhausted *ledger.ExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsTotal.WithLabelValues("failed")))
}

func TestBuild_InvalidMint(t *testing.T) {
	rpc := stub.NewRPCClient()
	a := New(Options{Fetcher: ledger.NewFetcher([]ledger.Endpoint{{Name: "a", Client: rpc}})})

	_, err := a.Build(context.Background(), Request{TokenMint: "not-a-mint"})
	assert.ErrorIs(t, err, ErrInvalidMint)
	assert.Empty(t, rpc.Calls())
}

func TestBuild_LargeInactiveHolder(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(holder("TA-vault", "Vault", "500"))
	rpc.AddTokenAccount(holder("TA-a", "WalletA", "450"))
	rpc.AddTokenAccount(holder("TA-b", "WalletB", "50"))
	rpc.AddSignatures("WalletA", []solana.SignatureInfo{{Signature: "sig"}})

	a := New(Options{Fetcher: ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: rpc}})})
	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)

	vault := byOwner(t, rep.Holders, "Vault")
	assert.True(t, vault.Classification.IsLP)
	assert.Equal(t, domain.ReasonLargeInactiveHolder, vault.Classification.ReasonCode)
	assert.False(t, byOwner(t, rep.Holders, "WalletA").Classification.IsLP)
	assert.Contains(t, rpc.Calls(), "getSignaturesForAddress:WalletA")
	assert.NotContains(t, rpc.Calls(), "getSignaturesForAddress:WalletB")
}

func TestBuild_OwnerProgramFailureIsSoft(t *testing.T) {
	rpc := threeHolderRPC()
	rpc.Failing["WalletA"] = true

	a := New(Options{Fetcher: ledger.NewFetcher([]ledger.Endpoint{{Name: "primary", Client: rpc}})})
	rep, err := a.Build(context.Background(), Request{TokenMint: mint, ManualPrice: price(1)})
	require.NoError(t, err)
	assert.Contains(t, rep.SourceErrors, SourceOwnerPrograms)
}
