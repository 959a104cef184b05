package domain

// PoolOrigin identifies where a pool registry address came from.
type PoolOrigin string

const (
	PoolOriginMarketsAPI      PoolOrigin = "markets-api"
	PoolOriginPairsAPI        PoolOrigin = "pairs-api"
	PoolOriginProgramConstant PoolOrigin = "program-constant"
	PoolOriginBurnConstant    PoolOrigin = "burn-constant"
)

// String returns the string representation of PoolOrigin.
func (o PoolOrigin) String() string {
	return string(o)
}

// PoolRegistryEntry is a liquidity/pool address candidate with its origin.
type PoolRegistryEntry struct {
	Address string     `json:"address"`
	Origin  PoolOrigin `json:"origin"`
}

// PoolRegistry is a deduplicated set of pool addresses.
// Entries are only ever added; the first origin recorded for an address wins.
type PoolRegistry struct {
	entries   map[string]PoolOrigin
	order     []string
	primaryLP string
}

// NewPoolRegistry creates an empty registry.
func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{entries: make(map[string]PoolOrigin)}
}

// Add inserts an address unless it is empty or already present.
// Returns true if the address was new.
func (r *PoolRegistry) Add(address string, origin PoolOrigin) bool {
	if address == "" {
		return false
	}
	if _, exists := r.entries[address]; exists {
		return false
	}
	r.entries[address] = origin
	r.order = append(r.order, address)
	return true
}

// Union adds every entry of other into r.
func (r *PoolRegistry) Union(other *PoolRegistry) {
	if other == nil {
		return
	}
	for _, addr := range other.order {
		r.Add(addr, other.entries[addr])
	}
	if r.primaryLP == "" {
		r.primaryLP = other.primaryLP
	}
}

// Lookup returns the origin of an address.
func (r *PoolRegistry) Lookup(address string) (PoolOrigin, bool) {
	if r == nil || address == "" {
		return "", false
	}
	origin, ok := r.entries[address]
	return origin, ok
}

// Contains reports whether address is in the registry.
func (r *PoolRegistry) Contains(address string) bool {
	_, ok := r.Lookup(address)
	return ok
}

// Len returns the number of addresses.
func (r *PoolRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Entries returns entries in insertion order.
func (r *PoolRegistry) Entries() []PoolRegistryEntry {
	if r == nil {
		return nil
	}
	out := make([]PoolRegistryEntry, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, PoolRegistryEntry{Address: addr, Origin: r.entries[addr]})
	}
	return out
}

// SetPrimaryLP records the verified primary LP account. Only the first call has effect.
func (r *PoolRegistry) SetPrimaryLP(address string) {
	if r.primaryLP == "" {
		r.primaryLP = address
	}
}

// PrimaryLP returns the verified primary LP account, or "" if none was verified.
func (r *PoolRegistry) PrimaryLP() string {
	if r == nil {
		return ""
	}
	return r.primaryLP
}
