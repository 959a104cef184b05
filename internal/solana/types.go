package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// AccountFilter is a getProgramAccounts filter.
// Exactly one of DataSize or Memcmp should be set.
type AccountFilter struct {
	DataSize uint64
	Memcmp   *MemcmpFilter
}

// MemcmpFilter matches base58 bytes at an offset of account data.
type MemcmpFilter struct {
	Offset uint64
	Bytes  string
}

// DataSizeFilter returns a filter on exact account data length.
func DataSizeFilter(size uint64) AccountFilter {
	return AccountFilter{DataSize: size}
}

// MemcmpAt returns a memcmp filter.
func MemcmpAt(offset uint64, bytes string) AccountFilter {
	return AccountFilter{Memcmp: &MemcmpFilter{Offset: offset, Bytes: bytes}}
}

func (f AccountFilter) toParam() map[string]interface{} {
	if f.Memcmp != nil {
		return map[string]interface{}{
			"memcmp": map[string]interface{}{
				"offset": f.Memcmp.Offset,
				"bytes":  f.Memcmp.Bytes,
			},
		}
	}
	return map[string]interface{}{"dataSize": f.DataSize}
}

// TokenAccount is a parsed SPL token account.
type TokenAccount struct {
	Address        string // token account address
	Owner          string // wallet owning the token account
	Mint           string
	ProgramID      string // token program that owns the account
	Amount         string // raw base units
	Decimals       int
	UIAmountString string
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
