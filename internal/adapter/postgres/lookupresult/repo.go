// Package lookupresult caches raw lookup results in PostgreSQL so that
// interrupted harvests can resume without refetching.
package lookupresult

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/wrdict/internal/adapter/postgres"
	"github.com/heartmarshall/wrdict/internal/domain"
)

const (
	table            = "lookup_results"
	entity           = "lookup_result"
	defaultBatchSize = 200
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// TxRunner runs fn inside a transaction. *postgres.TxManager satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo stores one row per (word, source_lang, target_lang).
type Repo struct {
	q         postgres.Querier
	tx        TxRunner
	batchSize int
	now       func() time.Time
}

// New creates a repository. tx may be nil, in which case batches are written
// without a surrounding transaction. batchSize <= 0 uses the default.
func New(q postgres.Querier, tx TxRunner, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Repo{q: q, tx: tx, batchSize: batchSize, now: time.Now}
}

type payloadRow struct {
	Word    string `db:"word"`
	Payload []byte `db:"payload"`
}

// SaveResults upserts results for a language pair and returns the number of
// rows written. Later duplicates of a word within one call win.
func (r *Repo) SaveResults(ctx context.Context, from, to string, results []domain.LookupResult) (int, error) {
	rows := dedupeByWord(results)
	if len(rows) == 0 {
		return 0, nil
	}

	write := func(ctx context.Context) error {
		for start := 0; start < len(rows); start += r.batchSize {
			end := min(start+r.batchSize, len(rows))
			if err := r.insertBatch(ctx, from, to, rows[start:end]); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if r.tx != nil {
		err = r.tx.RunInTx(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *Repo) insertBatch(ctx context.Context, from, to string, batch []domain.LookupResult) error {
	now := r.now().UTC()
	insert := builder.
		Insert(table).
		Columns("id", "word", "source_lang", "target_lang", "frequency", "payload", "fetched_at")

	for _, res := range batch {
		payload, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("%s %s: encode payload: %w", entity, res.Word, err)
		}
		insert = insert.Values(uuid.New(), res.Word, from, to, res.Frequency, string(payload), now)
	}

	insert = insert.Suffix(
		"ON CONFLICT (word, source_lang, target_lang) DO UPDATE SET " +
			"frequency = EXCLUDED.frequency, payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at",
	)

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%s: build insert: %w", entity, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.q)
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, entity, pairKey(from, to))
	}
	return nil
}

// LoadResults returns the cached results for words, in the order of words.
// Words without a cached row are skipped.
func (r *Repo) LoadResults(ctx context.Context, from, to string, words []string) ([]domain.LookupResult, error) {
	if len(words) == 0 {
		return []domain.LookupResult{}, nil
	}

	query := builder.
		Select("word", "payload").
		From(table).
		Where(squirrel.Eq{"source_lang": from, "target_lang": to, "word": words})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build select: %w", entity, err)
	}

	var rows []payloadRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.q), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, pairKey(from, to))
	}

	byWord := make(map[string]domain.LookupResult, len(rows))
	for _, row := range rows {
		var res domain.LookupResult
		if err := json.Unmarshal(row.Payload, &res); err != nil {
			return nil, fmt.Errorf("%s %s: decode payload: %w", entity, row.Word, err)
		}
		byWord[row.Word] = res
	}

	out := make([]domain.LookupResult, 0, len(byWord))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if res, ok := byWord[w]; ok && !seen[w] {
			seen[w] = true
			out = append(out, res)
		}
	}
	return out, nil
}

// KnownWords returns the set of words cached for a language pair.
func (r *Repo) KnownWords(ctx context.Context, from, to string) (map[string]bool, error) {
	query := builder.
		Select("word").
		From(table).
		Where(squirrel.Eq{"source_lang": from, "target_lang": to})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build select: %w", entity, err)
	}

	var words []string
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.q), &words, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, pairKey(from, to))
	}

	known := make(map[string]bool, len(words))
	for _, w := range words {
		known[w] = true
	}
	return known, nil
}

// dedupeByWord keeps the last result per word, in first-occurrence order.
// Results without a word are dropped.
func dedupeByWord(results []domain.LookupResult) []domain.LookupResult {
	index := make(map[string]int, len(results))
	out := make([]domain.LookupResult, 0, len(results))
	for _, res := range results {
		if res.Word == "" {
			continue
		}
		if i, ok := index[res.Word]; ok {
			out[i] = res
			continue
		}
		index[res.Word] = len(out)
		out = append(out, res)
	}
	return out
}

func pairKey(from, to string) string {
	return "(" + from + "-" + to + ")"
}
