// Package harvest wires frequency loading, retrieval, caching, aggregation
// and export into a single run.
package harvest

import (
	"context"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// Lookuper fetches and parses one word for a language pair.
// Implemented by wordreference.Provider.
type Lookuper interface {
	Lookup(ctx context.Context, item domain.FrequencyItem, from, to string) (domain.LookupResult, error)
}

// ResultCache stores raw lookup results between runs.
// Implemented by lookupresult.Repo.
type ResultCache interface {
	SaveResults(ctx context.Context, from, to string, results []domain.LookupResult) (int, error)
	LoadResults(ctx context.Context, from, to string, words []string) ([]domain.LookupResult, error)
	KnownWords(ctx context.Context, from, to string) (map[string]bool, error)
}
