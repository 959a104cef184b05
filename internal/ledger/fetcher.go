// Package ledger enumerates token holder accounts over Solana RPC with
// endpoint failover across the legacy and Token-2022 programs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/solana"
)

// DefaultQueryTimeout bounds every single RPC query.
const DefaultQueryTimeout = 15 * time.Second

// ErrNoEndpoints is returned when the fetcher has no RPC endpoints.
var ErrNoEndpoints = errors.New("no rpc endpoints configured")

// Endpoint is a named RPC endpoint.
type Endpoint struct {
	Name   string
	Client solana.RPCClient
}

// Attempt records one getProgramAccounts query.
type Attempt struct {
	Endpoint  string
	ProgramID string
	Accounts  int
	Err       error
}

func (a Attempt) String() string {
	outcome := "empty"
	switch {
	case a.Err != nil:
		outcome = a.Err.Error()
	case a.Accounts > 0:
		outcome = fmt.Sprintf("%d accounts", a.Accounts)
	}
	return fmt.Sprintf("%s/%s: %s", a.Endpoint, programName(a.ProgramID), outcome)
}

// ExhaustedError is returned when no endpoint produced any holder.
type ExhaustedError struct {
	Mint     string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("no holders found for %s after %d queries: %s",
		e.Mint, len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap returns the errors of failed attempts.
func (e *ExhaustedError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Result is the holder set of a mint and where it came from.
type Result struct {
	Endpoint  string
	ProgramID string
	Holders   []domain.HolderAccount
	Attempts  []Attempt
}

type programVariant struct {
	id      string
	filters func(mint string) []solana.AccountFilter
}

var variants = []programVariant{
	{
		id: solana.TokenProgramID,
		filters: func(mint string) []solana.AccountFilter {
			return []solana.AccountFilter{
				solana.DataSizeFilter(solana.TokenAccountSize),
				solana.MemcmpAt(0, mint),
			}
		},
	},
	{
		// Token-2022 accounts carry extensions, so their size varies.
		id: solana.Token2022ProgramID,
		filters: func(mint string) []solana.AccountFilter {
			return []solana.AccountFilter{solana.MemcmpAt(0, mint)}
		},
	},
}

func programName(id string) string {
	switch id {
	case solana.TokenProgramID:
		return "token"
	case solana.Token2022ProgramID:
		return "token-2022"
	default:
		return id
	}
}

// Fetcher loads holder accounts from an ordered list of endpoints.
type Fetcher struct {
	endpoints    []Endpoint
	queryTimeout time.Duration
	log          zerolog.Logger
}

// Option configures Fetcher.
type Option func(*Fetcher)

// WithQueryTimeout overrides the per-query timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.queryTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.log = log
	}
}

// NewFetcher creates a fetcher trying endpoints in order.
func NewFetcher(endpoints []Endpoint, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoints:    endpoints,
		queryTimeout: DefaultQueryTimeout,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Endpoints returns the endpoint names in priority order.
func (f *Fetcher) Endpoints() []string {
	names := make([]string, len(f.endpoints))
	for i, ep := range f.endpoints {
		names[i] = ep.Name
	}
	return names
}

// Fetch returns every non-zero holder account of mint.
// The first endpoint yielding accounts wins. On an endpoint error the
// remaining variants of that endpoint are skipped.
func (f *Fetcher) Fetch(ctx context.Context, mint string) (*Result, error) {
	if len(f.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var attempts []Attempt
	for _, ep := range f.endpoints {
		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			holders, err := f.query(ctx, ep, v, mint)
			attempts = append(attempts, Attempt{
				Endpoint:  ep.Name,
				ProgramID: v.id,
				Accounts:  len(holders),
				Err:       err,
			})

			if err != nil {
				f.log.Warn().Err(err).
					Str("endpoint", ep.Name).
					Str("program", programName(v.id)).
					Str("mint", mint).
					Msg("holder query failed")
				break
			}
			if len(holders) > 0 {
				f.log.Debug().
					Str("endpoint", ep.Name).
					Str("program", programName(v.id)).
					Int("holders", len(holders)).
					Msg("holders fetched")
				return &Result{
					Endpoint:  ep.Name,
					ProgramID: v.id,
					Holders:   holders,
					Attempts:  attempts,
				}, nil
			}
		}
	}

	return nil, &ExhaustedError{Mint: mint, Attempts: attempts}
}

func (f *Fetcher) query(ctx context.Context, ep Endpoint, v programVariant, mint string) ([]domain.HolderAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, f.queryTimeout)
	defer cancel()

	accounts, err := ep.Client.GetProgramAccounts(ctx, v.id, v.filters(mint))
	if err != nil {
		return nil, err
	}

	holders := make([]domain.HolderAccount, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Mint != "" && acct.Mint != mint {
			continue
		}
		holder, ok := toHolder(acct, v.id)
		if !ok {
			continue
		}
		holders = append(holders, holder)
	}
	return holders, nil
}

// toHolder converts a token account, dropping zero or unreadable balances.
func toHolder(acct solana.TokenAccount, programID string) (domain.HolderAccount, bool) {
	balance, err := uiBalance(acct)
	if err != nil || !balance.IsPositive() {
		return domain.HolderAccount{}, false
	}
	if acct.ProgramID != "" {
		programID = acct.ProgramID
	}
	ui, _ := balance.Float64()
	return domain.HolderAccount{
		OwnerAddress:        acct.Owner,
		TokenAccountAddress: acct.Address,
		TokenProgram:        programID,
		BalanceRaw:          acct.Amount,
		BalanceUI:           ui,
		Decimals:            acct.Decimals,
	}, true
}

func uiBalance(acct solana.TokenAccount) (decimal.Decimal, error) {
	if acct.UIAmountString != "" {
		return decimal.NewFromString(acct.UIAmountString)
	}
	if acct.Amount == "" {
		return decimal.Zero, nil
	}
	raw, err := decimal.NewFromString(acct.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Shift(-int32(acct.Decimals)), nil
}
