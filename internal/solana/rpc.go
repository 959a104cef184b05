package solana

import "context"

// Well-known program identifiers.
const (
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	SystemProgramID    = "11111111111111111111111111111111"
)

// TokenAccountSize is the byte size of a legacy SPL token account.
const TokenAccountSize = 165

// RPCClient defines the Solana RPC HTTP interface used by the holder engine.
type RPCClient interface {
	// GetProgramAccounts returns jsonParsed token accounts owned by programID matching filters.
	GetProgramAccounts(ctx context.Context, programID string, filters []AccountFilter) ([]TokenAccount, error)

	// GetMultipleAccounts returns account info for each address, nil for missing accounts.
	GetMultipleAccounts(ctx context.Context, addresses []string) ([]*AccountInfo, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
