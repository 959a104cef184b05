package stub

import (
	"context"
	"errors"
	"sync"

	"solana-holder-lab/internal/solana"
)

// ErrUnavailable is returned for programs or addresses configured to fail.
var ErrUnavailable = errors.New("stub: unavailable")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu sync.Mutex

	// ProgramAccounts maps program id to the accounts it returns.
	ProgramAccounts map[string][]solana.TokenAccount
	// Accounts maps an address to its account info.
	Accounts map[string]*solana.AccountInfo
	// Signatures maps an address to its signature history.
	Signatures map[string][]solana.SignatureInfo
	// Failing programs and addresses return ErrUnavailable.
	Failing map[string]bool

	calls []string
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		ProgramAccounts: make(map[string][]solana.TokenAccount),
		Accounts:        make(map[string]*solana.AccountInfo),
		Signatures:      make(map[string][]solana.SignatureInfo),
		Failing:         make(map[string]bool),
	}
}

// GetProgramAccounts returns accounts registered for programID whose mint matches a memcmp filter.
func (c *RPCClient) GetProgramAccounts(ctx context.Context, programID string, filters []solana.AccountFilter) ([]solana.TokenAccount, error) {
	c.record("getProgramAccounts:" + programID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Failing[programID] {
		return nil, ErrUnavailable
	}

	mint := ""
	for _, f := range filters {
		if f.Memcmp != nil && f.Memcmp.Offset == 0 {
			mint = f.Memcmp.Bytes
		}
	}

	var out []solana.TokenAccount
	for _, acct := range c.ProgramAccounts[programID] {
		if mint != "" && acct.Mint != mint {
			continue
		}
		out = append(out, acct)
	}
	return out, nil
}

// GetMultipleAccounts returns registered account infos, nil for unknown addresses.
func (c *RPCClient) GetMultipleAccounts(ctx context.Context, addresses []string) ([]*solana.AccountInfo, error) {
	c.record("getMultipleAccounts")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := make([]*solana.AccountInfo, len(addresses))
	for i, addr := range addresses {
		if c.Failing[addr] {
			return nil, ErrUnavailable
		}
		infos[i] = c.Accounts[addr]
	}
	return infos, nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.record("getSignaturesForAddress:" + address)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Failing[address] {
		return nil, ErrUnavailable
	}

	sigs, ok := c.Signatures[address]
	if !ok {
		return nil, nil
	}

	// Apply limit if specified
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}

	return sigs, nil
}

// AddTokenAccount registers a token account under its program.
func (c *RPCClient) AddTokenAccount(acct solana.TokenAccount) {
	c.ProgramAccounts[acct.ProgramID] = append(c.ProgramAccounts[acct.ProgramID], acct)
}

// AddAccount registers account info for an address.
func (c *RPCClient) AddAccount(address string, info *solana.AccountInfo) {
	c.Accounts[address] = info
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.Signatures[address] = sigs
}

// Calls returns the recorded call log.
func (c *RPCClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *RPCClient) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

var _ solana.RPCClient = (*RPCClient)(nil)
