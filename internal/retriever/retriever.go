// Package retriever runs lookups over a word list in synchronous chunks,
// requeueing challenged words and collecting failures.
package retriever

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// Lookuper performs one lookup for a word. Failures are *domain.LookupError.
type Lookuper interface {
	Lookup(ctx context.Context, item domain.FrequencyItem) (domain.LookupResult, error)
}

// LookupFunc adapts a function to Lookuper.
type LookupFunc func(ctx context.Context, item domain.FrequencyItem) (domain.LookupResult, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, item domain.FrequencyItem) (domain.LookupResult, error) {
	return f(ctx, item)
}

// Progress is reported after every chunk.
type Progress struct {
	Settled  int
	Total    int
	Requeued int
	Elapsed  time.Duration
}

// Options configures a Retriever.
type Options struct {
	ChunkSize int
	// MaxChallengeRetries caps how often one word may be requeued after a
	// challenge. Zero or negative means no cap.
	MaxChallengeRetries int
	// RequeueDelay is waited before dispatching a requeued chunk.
	RequeueDelay time.Duration
	Progress     func(Progress)
}

// Outcome is the result of a Retrieve call. Results hold exactly one entry
// per input word: a parsed result or a placeholder for a failed word.
type Outcome struct {
	Results  []domain.LookupResult
	Errors   []*domain.LookupError
	Requeued int
}

// Retriever dispatches lookups chunk by chunk.
type Retriever struct {
	lookup Lookuper
	opts   Options
	log    *slog.Logger
}

// New creates a Retriever. ChunkSize below 1 is treated as 1.
func New(lookup Lookuper, logger *slog.Logger, opts Options) *Retriever {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1
	}
	return &Retriever{
		lookup: lookup,
		opts:   opts,
		log:    logger.With("component", "retriever"),
	}
}

type chunk struct {
	items    []domain.FrequencyItem
	requeued bool
}

// run is the state of one Retrieve call. It is only touched by the
// goroutine that called Retrieve, between chunks.
type run struct {
	queue    []chunk
	attempts map[string]int
	settled  int
	total    int
	start    time.Time
	out      Outcome
}

type slot struct {
	result domain.LookupResult
	err    error
}

// Retrieve looks up every item. Per-word failures never fail the call; only
// context cancellation does, checked between chunks.
func (r *Retriever) Retrieve(ctx context.Context, items []domain.FrequencyItem) (Outcome, error) {
	st := &run{
		attempts: make(map[string]int),
		total:    len(items),
		start:    time.Now(),
		out: Outcome{
			Results: make([]domain.LookupResult, 0, len(items)),
			Errors:  []*domain.LookupError{},
		},
	}
	for i := 0; i < len(items); i += r.opts.ChunkSize {
		end := min(i+r.opts.ChunkSize, len(items))
		st.queue = append(st.queue, chunk{items: items[i:end]})
	}

	r.log.InfoContext(ctx, "retrieval started",
		slog.Int("words", st.total),
		slog.Int("chunks", len(st.queue)),
		slog.Int("chunk_size", r.opts.ChunkSize),
	)

	for len(st.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return st.out, err
		}

		c := st.queue[0]
		st.queue = st.queue[1:]

		if c.requeued && r.opts.RequeueDelay > 0 {
			if err := sleep(ctx, r.opts.RequeueDelay); err != nil {
				return st.out, err
			}
		}

		slots := r.dispatch(ctx, c.items)
		r.gather(ctx, st, c.items, slots)
		r.report(st)
	}

	r.log.InfoContext(ctx, "retrieval finished",
		slog.Int("results", len(st.out.Results)),
		slog.Int("errors", len(st.out.Errors)),
		slog.Int("requeued", st.out.Requeued),
		slog.Duration("elapsed", time.Since(st.start)),
	)

	return st.out, nil
}

// dispatch runs every lookup of a chunk concurrently. Each goroutine writes
// only its own slot, so the gather that follows is ordered.
func (r *Retriever) dispatch(ctx context.Context, items []domain.FrequencyItem) []slot {
	slots := make([]slot, len(items))
	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			res, err := r.lookup.Lookup(ctx, item)
			slots[i] = slot{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return slots
}

func (r *Retriever) gather(ctx context.Context, st *run, items []domain.FrequencyItem, slots []slot) {
	var challenged []domain.FrequencyItem

	for i, s := range slots {
		item := items[i]
		if s.err == nil {
			st.out.Results = append(st.out.Results, s.result)
			st.settled++
			continue
		}

		le := asLookupError(item.Word, s.err)
		if le.Kind.Retryable() {
			st.attempts[item.Word]++
			if r.opts.MaxChallengeRetries <= 0 || st.attempts[item.Word] <= r.opts.MaxChallengeRetries {
				challenged = append(challenged, item)
				continue
			}
			le = domain.NewLookupError(item.Word, domain.FailureExhaustedRetries, s.err)
			r.log.WarnContext(ctx, "challenge retries exhausted",
				slog.String("word", item.Word),
				slog.Int("attempts", st.attempts[item.Word]),
			)
		}

		st.out.Errors = append(st.out.Errors, le)
		st.out.Results = append(st.out.Results, domain.PlaceholderResult(item))
		st.settled++
	}

	if len(challenged) > 0 {
		st.queue = append(st.queue, chunk{items: challenged, requeued: true})
		st.out.Requeued += len(challenged)
		r.log.DebugContext(ctx, "chunk requeued", slog.Int("words", len(challenged)))
	}
}

func (r *Retriever) report(st *run) {
	if r.opts.Progress == nil {
		return
	}
	r.opts.Progress(Progress{
		Settled:  st.settled,
		Total:    st.total,
		Requeued: st.out.Requeued,
		Elapsed:  time.Since(st.start),
	})
}

// asLookupError classifies a lookup error; unclassified errors are transport failures.
func asLookupError(word string, err error) *domain.LookupError {
	var le *domain.LookupError
	if errors.As(err, &le) {
		return le
	}
	return domain.NewLookupError(word, domain.FailureTransport, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
