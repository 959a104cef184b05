package ledger

import (
	"context"
	"fmt"

	"solana-holder-lab/internal/solana"
)

// MaxAccountsPerRequest is the getMultipleAccounts batch limit.
const MaxAccountsPerRequest = 100

func (f *Fetcher) endpoint(name string) (Endpoint, bool) {
	for _, ep := range f.endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	if len(f.endpoints) > 0 {
		return f.endpoints[0], true
	}
	return Endpoint{}, false
}

// ResolveOwnerPrograms maps each owner wallet to the program owning its account.
// Missing accounts are absent from the result. On a batch failure the owners
// resolved so far are returned together with the error.
func (f *Fetcher) ResolveOwnerPrograms(ctx context.Context, endpointName string, owners []string) (map[string]string, error) {
	programs := make(map[string]string, len(owners))
	ep, ok := f.endpoint(endpointName)
	if !ok {
		return programs, ErrNoEndpoints
	}

	owners = unique(owners)
	for start := 0; start < len(owners); start += MaxAccountsPerRequest {
		end := start + MaxAccountsPerRequest
		if end > len(owners) {
			end = len(owners)
		}
		batch := owners[start:end]

		qctx, cancel := context.WithTimeout(ctx, f.queryTimeout)
		infos, err := ep.Client.GetMultipleAccounts(qctx, batch)
		cancel()
		if err != nil {
			return programs, fmt.Errorf("resolve owner programs on %s: %w", ep.Name, err)
		}

		for i, info := range infos {
			if i >= len(batch) || info == nil {
				continue
			}
			programs[batch[i]] = info.Owner
		}
	}
	return programs, nil
}

// ActivitySignals reports, per owner, whether the address shows outgoing
// activity. Off-curve owners (program derived addresses) cannot sign and are
// reported inactive without a query. A failed probe counts as active.
func (f *Fetcher) ActivitySignals(ctx context.Context, endpointName string, owners []string) map[string]bool {
	active := make(map[string]bool, len(owners))
	ep, ok := f.endpoint(endpointName)

	for _, owner := range unique(owners) {
		if solana.IsOffCurve(owner) {
			active[owner] = false
			continue
		}
		if !ok {
			active[owner] = true
			continue
		}

		qctx, cancel := context.WithTimeout(ctx, f.queryTimeout)
		sigs, err := ep.Client.GetSignaturesForAddress(qctx, owner, &solana.SignaturesOpts{Limit: 1})
		cancel()
		if err != nil {
			f.log.Warn().Err(err).Str("owner", owner).Msg("activity probe failed")
			active[owner] = true
			continue
		}
		active[owner] = len(sigs) > 0
	}
	return active
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
