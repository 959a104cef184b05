// Package insiders normalizes wallet-relationship payloads from the insiders
// API into a cluster model and derives the bundled share of supply.
package insiders

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// Source returns the raw insiders payload for a mint.
type Source interface {
	Fetch(ctx context.Context, mint string) (json.RawMessage, error)
}

// Analyzer builds a ClusterGraph per mint.
type Analyzer struct {
	src Source
	log zerolog.Logger
}

// NewAnalyzer creates an analyzer. A nil src always yields an empty graph.
func NewAnalyzer(src Source, log zerolog.Logger) *Analyzer {
	return &Analyzer{src: src, log: log}
}

// Analyze never fails. A 404 means the mint has no insiders; any other failure
// leaves an empty graph with SoftError set.
func (a *Analyzer) Analyze(ctx context.Context, mint string) *domain.ClusterGraph {
	if a.src == nil {
		return emptyGraph(domain.ShapeNone, "")
	}

	raw, err := a.src.Fetch(ctx, mint)
	if err != nil {
		if upstream.IsNotFound(err) {
			return emptyGraph(domain.ShapeNone, "")
		}
		a.log.Warn().Err(err).Str("mint", mint).Msg("insiders unavailable")
		return emptyGraph(domain.ShapeNone, err.Error())
	}

	g := Normalize(raw)
	if g.SoftError != "" {
		a.log.Warn().Str("mint", mint).Str("shape", string(g.Shape)).Msg(g.SoftError)
	}
	return g
}
