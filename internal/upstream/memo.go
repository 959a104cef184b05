package upstream

import (
	"context"
	"sync"
)

// PairsSource returns the pairs trading a mint.
type PairsSource interface {
	TokenPairs(ctx context.Context, mint string) ([]DexPair, error)
}

// PairsMemo shares one pairs fetch between the consumers of a single report.
// It must not outlive the invocation it was created for.
type PairsMemo struct {
	src PairsSource

	mu      sync.Mutex
	results map[string]*pairsEntry
}

type pairsEntry struct {
	once  sync.Once
	pairs []DexPair
	err   error
}

// NewPairsMemo wraps src.
func NewPairsMemo(src PairsSource) *PairsMemo {
	return &PairsMemo{src: src, results: make(map[string]*pairsEntry)}
}

// TokenPairs implements PairsSource. Concurrent callers for the same mint wait
// for the first fetch and share its outcome.
func (m *PairsMemo) TokenPairs(ctx context.Context, mint string) ([]DexPair, error) {
	m.mu.Lock()
	entry, ok := m.results[mint]
	if !ok {
		entry = &pairsEntry{}
		m.results[mint] = entry
	}
	m.mu.Unlock()

	entry.once.Do(func() {
		entry.pairs, entry.err = m.src.TokenPairs(ctx, mint)
	})
	return entry.pairs, entry.err
}

var (
	_ PairsSource = (*PairsClient)(nil)
	_ PairsSource = (*PairsMemo)(nil)
)
