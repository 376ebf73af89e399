// Package source maps heterogeneous feeds and search providers onto model.Document.
// No source-specific shape survives past an adapter.
package source

import (
	"context"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
)

// DefaultTier applies to sources declared without a priority.
const DefaultTier = 5

// Adapter fetches documents for one configured source.
type Adapter interface {
	Name() string
	Type() model.SourceType
	// Tier orders sources; 1 is fetched and reported first.
	Tier() int
	Fetch(ctx context.Context, q query.Query, limit int) ([]model.Document, error)
}

func tierOrDefault(p int) int {
	if p <= 0 {
		return DefaultTier
	}
	return p
}
