// Package catalog holds the known-address tables used to recognise liquidity
// pools, bonding curves and burn sinks. A Catalog is immutable once built.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"solana-holder-lab/internal/solana"
)

// Program identifiers referenced outside the catalog.
const (
	RaydiumAMMV4      = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	RaydiumCPMM       = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"
	RaydiumCLMM       = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
	RaydiumLaunchLab  = "LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj"
	OrcaWhirlpool     = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	MeteoraDLMM       = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	MeteoraPools      = "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"
	PumpFun           = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	PumpSwap          = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"
	Moonshot          = "MoonCVVNZFSYkqNXP6bxHLPL6QQJiMagDL3qcqUQTrG"
	RaydiumAuthority  = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
	RaydiumCPMMAuth   = "GpMZbSM2GgvTKHJirzeGfMFoaZ8UR2X7F4v8vHTvxFbL"
	IncineratorWallet = "1nc1nerator11111111111111111111111111111111"
)

// DefaultVersion identifies the built-in tables.
const DefaultVersion = "builtin-1"

// Catalog is a versioned, read-only set of known addresses.
type Catalog struct {
	version   string
	programs  map[string]string // program id -> platform label
	lpWallets map[string]string // authority wallet -> platform label
	burns     map[string]struct{}
}

// Builder accumulates entries for a Catalog.
type Builder struct {
	c *Catalog
}

// NewBuilder starts an empty catalog with the given version.
func NewBuilder(version string) *Builder {
	return &Builder{c: &Catalog{
		version:   version,
		programs:  make(map[string]string),
		lpWallets: make(map[string]string),
		burns:     make(map[string]struct{}),
	}}
}

// Program adds a DEX or bonding-curve program.
func (b *Builder) Program(id, label string) *Builder {
	if id != "" {
		b.c.programs[id] = label
	}
	return b
}

// LPWallet adds a known pool authority wallet.
func (b *Builder) LPWallet(address, label string) *Builder {
	if address != "" {
		b.c.lpWallets[address] = label
	}
	return b
}

// Burn adds a burn address.
func (b *Builder) Burn(address string) *Builder {
	if address != "" {
		b.c.burns[address] = struct{}{}
	}
	return b
}

// Build returns the catalog. The builder must not be used afterwards.
func (b *Builder) Build() *Catalog {
	c := b.c
	b.c = nil
	return c
}

// Default returns the built-in tables.
func Default() *Catalog {
	return defaultBuilder().Build()
}

func defaultBuilder() *Builder {
	return NewBuilder(DefaultVersion).
		Program(RaydiumAMMV4, "Raydium AMM").
		Program(RaydiumCPMM, "Raydium CPMM").
		Program(RaydiumCLMM, "Raydium CLMM").
		Program(RaydiumLaunchLab, "Raydium LaunchLab").
		Program(OrcaWhirlpool, "Orca Whirlpool").
		Program(MeteoraDLMM, "Meteora DLMM").
		Program(MeteoraPools, "Meteora Pools").
		Program(PumpFun, "pump.fun bonding curve").
		Program(PumpSwap, "PumpSwap").
		Program(Moonshot, "Moonshot bonding curve").
		LPWallet(RaydiumAuthority, "Raydium AMM").
		LPWallet(RaydiumCPMMAuth, "Raydium CPMM").
		Burn(IncineratorWallet).
		Burn(solana.SystemProgramID)
}

// Version returns the catalog version.
func (c *Catalog) Version() string {
	return c.version
}

// ProgramLabel returns the platform label for a DEX or bonding-curve program.
func (c *Catalog) ProgramLabel(programID string) (string, bool) {
	label, ok := c.programs[programID]
	return label, ok
}

// LPWalletLabel returns the platform label for a known pool authority wallet.
func (c *Catalog) LPWalletLabel(address string) (string, bool) {
	label, ok := c.lpWallets[address]
	return label, ok
}

// IsBurnAddress reports whether address is a burn sink.
func (c *Catalog) IsBurnAddress(address string) bool {
	_, ok := c.burns[address]
	return ok
}

// LPWallets returns known pool authority wallets, sorted.
func (c *Catalog) LPWallets() []string {
	return sortedKeys(c.lpWallets)
}

// BurnAddresses returns burn addresses, sorted.
func (c *Catalog) BurnAddresses() []string {
	out := make([]string, 0, len(c.burns))
	for addr := range c.burns {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Programs returns DEX and bonding-curve program ids, sorted.
func (c *Catalog) Programs() []string {
	return sortedKeys(c.programs)
}

// BondingCurveAddress derives the pump.fun bonding-curve account for mint.
func (c *Catalog) BondingCurveAddress(mint string) (string, error) {
	mintBytes, err := solana.DecodeAddress(mint)
	if err != nil {
		return "", fmt.Errorf("bonding curve for %s: %w", mint, err)
	}
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("bonding-curve"), mintBytes}, PumpFun)
	if err != nil {
		return "", fmt.Errorf("bonding curve for %s: %w", mint, err)
	}
	return addr, nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fileFormat is the YAML override layout.
type fileFormat struct {
	Version  string `yaml:"version"`
	Replace  bool   `yaml:"replace"` // drop built-in entries
	Programs []struct {
		ID    string `yaml:"id"`
		Label string `yaml:"label"`
	} `yaml:"programs"`
	LPWallets []struct {
		Address string `yaml:"address"`
		Label   string `yaml:"label"`
	} `yaml:"lpWallets"`
	BurnAddresses []string `yaml:"burnAddresses"`
}

// Load reads a YAML override and merges it onto the built-in tables,
// or replaces them when the file sets replace: true.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML override document.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if f.Version == "" {
		return nil, fmt.Errorf("parse catalog: version is required")
	}

	var b *Builder
	if f.Replace {
		b = NewBuilder(f.Version)
	} else {
		b = defaultBuilder()
		b.c.version = DefaultVersion + "+" + f.Version
	}

	for _, p := range f.Programs {
		if err := solana.ValidateAddress(p.ID); err != nil {
			return nil, fmt.Errorf("parse catalog: program %q: %w", p.ID, err)
		}
		b.Program(p.ID, p.Label)
	}
	for _, w := range f.LPWallets {
		if err := solana.ValidateAddress(w.Address); err != nil {
			return nil, fmt.Errorf("parse catalog: lp wallet %q: %w", w.Address, err)
		}
		b.LPWallet(w.Address, w.Label)
	}
	for _, addr := range f.BurnAddresses {
		if err := solana.ValidateAddress(addr); err != nil {
			return nil, fmt.Errorf("parse catalog: burn address %q: %w", addr, err)
		}
		b.Burn(addr)
	}

	return b.Build(), nil
}
