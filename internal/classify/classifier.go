// Package classify decides liquidity-pool membership for holder accounts.
//
// Address-level evidence always wins over program and percentage heuristics:
//
//  1. verified primary LP account
//  2. pool registry membership
//  3. owner program in the DEX/bonding-curve table
//  4. burn address
//  5. large holder with no outgoing activity (heuristic)
package classify

import (
	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/domain"
)

// DefaultHeuristicMinPercentage is the share of supply from which an inactive
// holder is treated as a pool.
const DefaultHeuristicMinPercentage = 10.0

// Options tunes the heuristic rule.
type Options struct {
	HeuristicMinPercentage float64
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{HeuristicMinPercentage: DefaultHeuristicMinPercentage}
}

// Activity maps an owner address to whether it shows outgoing activity.
// Owners absent from the map are treated as active.
type Activity map[string]bool

func (a Activity) inactive(owner string) bool {
	active, ok := a[owner]
	return ok && !active
}

// Classifier applies the precedence rules against an injected catalog.
type Classifier struct {
	catalog *catalog.Catalog
	opts    Options
}

// New creates a classifier.
func New(cat *catalog.Catalog, opts Options) *Classifier {
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.HeuristicMinPercentage <= 0 {
		opts.HeuristicMinPercentage = DefaultHeuristicMinPercentage
	}
	return &Classifier{catalog: cat, opts: opts}
}

// Classify returns the LP classification of h. It is a pure function of its inputs.
func (c *Classifier) Classify(h domain.HolderAccount, registry *domain.PoolRegistry, activity Activity) domain.LPClassification {
	addrs := h.Addresses()

	if primary := registry.PrimaryLP(); primary != "" {
		for _, addr := range addrs {
			if addr == primary {
				return domain.LPClassification{
					IsLP:          true,
					Confidence:    domain.ConfidenceVerified,
					ReasonCode:    domain.ReasonVerifiedPrimaryLP,
					PlatformLabel: c.walletLabel(addr),
					OriginSource:  originOf(registry, addr),
				}
			}
		}
	}

	for _, addr := range addrs {
		origin, ok := registry.Lookup(addr)
		if !ok {
			continue
		}
		reason := domain.ReasonPoolRegistry
		if origin == domain.PoolOriginBurnConstant {
			reason = domain.ReasonBurned
		}
		return domain.LPClassification{
			IsLP:          true,
			Confidence:    domain.ConfidenceVerified,
			ReasonCode:    reason,
			PlatformLabel: c.walletLabel(addr),
			OriginSource:  origin,
		}
	}

	if label, ok := c.catalog.ProgramLabel(h.AccountOwnerProgram); ok {
		return domain.LPClassification{
			IsLP:          true,
			Confidence:    domain.ConfidenceVerified,
			ReasonCode:    domain.ReasonDEXProgram,
			PlatformLabel: label,
			OriginSource:  domain.PoolOriginProgramConstant,
		}
	}

	if c.catalog.IsBurnAddress(h.OwnerAddress) {
		return domain.LPClassification{
			IsLP:         true,
			Confidence:   domain.ConfidenceVerified,
			ReasonCode:   domain.ReasonBurned,
			OriginSource: domain.PoolOriginBurnConstant,
		}
	}

	if c.heuristicCandidate(h) && activity.inactive(h.OwnerAddress) {
		return domain.LPClassification{
			IsLP:       true,
			Confidence: domain.ConfidenceHeuristic,
			ReasonCode: domain.ReasonLargeInactiveHolder,
		}
	}

	return domain.LPClassification{ReasonCode: domain.ReasonHolder}
}

// ClassifyAll classifies every holder; the result is index-aligned with holders.
func (c *Classifier) ClassifyAll(holders []domain.HolderAccount, registry *domain.PoolRegistry, activity Activity) []domain.LPClassification {
	out := make([]domain.LPClassification, len(holders))
	for i, h := range holders {
		out[i] = c.Classify(h, registry, activity)
	}
	return out
}

// HeuristicCandidates returns the owners that only the heuristic rule could
// classify, so activity needs to be probed for them alone.
func (c *Classifier) HeuristicCandidates(holders []domain.HolderAccount, registry *domain.PoolRegistry) []string {
	var owners []string
	for _, h := range holders {
		if !c.heuristicCandidate(h) {
			continue
		}
		if c.Classify(h, registry, nil).IsLP {
			continue
		}
		owners = append(owners, h.OwnerAddress)
	}
	return owners
}

func (c *Classifier) heuristicCandidate(h domain.HolderAccount) bool {
	return h.OwnerAddress != "" && h.PercentageOfSupply >= c.opts.HeuristicMinPercentage
}

func (c *Classifier) walletLabel(addr string) string {
	label, _ := c.catalog.LPWalletLabel(addr)
	return label
}

// originOf returns the registry origin of the primary LP. A primary LP found
// only through top-holder labels came from the markets API.
func originOf(registry *domain.PoolRegistry, addr string) domain.PoolOrigin {
	if origin, ok := registry.Lookup(addr); ok {
		return origin
	}
	return domain.PoolOriginMarketsAPI
}
