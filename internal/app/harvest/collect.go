package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/heartmarshall/wrdict/internal/domain"
	"github.com/heartmarshall/wrdict/internal/exporter"
	"github.com/heartmarshall/wrdict/internal/frequency"
	"github.com/heartmarshall/wrdict/internal/retriever"
)

func (p *Pipeline) collect(ctx context.Context, opts Options, rep *Report) ([]domain.LookupResult, error) {
	var loaded []domain.LookupResult
	if opts.DataPath != "" {
		var err error
		loaded, err = exporter.LoadResults(opts.DataPath)
		if err != nil {
			return nil, err
		}
		rep.Loaded = len(loaded)
		p.logger(ctx).InfoContext(ctx, "results loaded",
			slog.String("path", opts.DataPath),
			slog.Int("results", len(loaded)),
		)
		if !opts.Append {
			rep.Words = len(loaded)
			return loaded, nil
		}
	}

	items, err := p.frequencyItems(ctx, opts)
	if err != nil {
		return nil, err
	}
	items = withoutLoaded(items, loaded)
	rep.Words = len(items) + len(loaded)

	results, err := p.retrieve(ctx, opts, items, rep)
	return append(results, loaded...), err
}

// withoutLoaded drops the items whose word already has a loaded result.
func withoutLoaded(items []domain.FrequencyItem, loaded []domain.LookupResult) []domain.FrequencyItem {
	if len(loaded) == 0 {
		return items
	}
	have := make(map[string]bool, len(loaded))
	for _, res := range loaded {
		have[res.Word] = true
	}
	return slices.DeleteFunc(slices.Clone(items), func(it domain.FrequencyItem) bool {
		return have[it.Word]
	})
}

// frequencyItems returns the window of the word list selected by opts.
func (p *Pipeline) frequencyItems(ctx context.Context, opts Options) ([]domain.FrequencyItem, error) {
	var all []domain.FrequencyItem
	if len(opts.Words) > 0 {
		all = frequency.FromWords(opts.Words)
	} else {
		var err error
		all, err = frequency.Load(ctx, p.client, opts.From, opts.Source)
		if err != nil {
			return nil, err
		}
	}

	items := frequency.Slice(all, opts.Offset, opts.N)
	if opts.Append && opts.DataPath == "" {
		items = appendMissing(items, frequency.Slice(all, 0, opts.N))
	}

	p.logger(ctx).InfoContext(ctx, "word list ready",
		slog.Int("list_size", len(all)),
		slog.Int("selected", len(items)),
	)
	return items, nil
}

// retrieve serves what it can from the cache and looks up the rest. When the
// lookups are interrupted, the results settled so far are returned with the
// error.
func (p *Pipeline) retrieve(ctx context.Context, opts Options, items []domain.FrequencyItem, rep *Report) ([]domain.LookupResult, error) {
	cached := p.cachedResults(ctx, opts, items)
	rep.Cached = len(cached)

	pending := make([]domain.FrequencyItem, 0, len(items))
	hits := make([]domain.LookupResult, 0, len(cached))
	for _, item := range items {
		res, ok := cached[item.Word]
		if !ok {
			pending = append(pending, item)
			continue
		}
		freq := item.Frequency
		res.Frequency = &freq
		hits = append(hits, res)
	}
	rep.Retrieved = len(pending)

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = p.cfg.Retrieve.ChunkSize
	}
	log := p.logger(ctx)
	r := retriever.New(
		retriever.LookupFunc(func(ctx context.Context, item domain.FrequencyItem) (domain.LookupResult, error) {
			return p.lookup.Lookup(ctx, item, opts.From, opts.To)
		}),
		log,
		retriever.Options{
			ChunkSize:           chunkSize,
			MaxChallengeRetries: p.cfg.Retrieve.MaxChallengeRetries,
			RequeueDelay:        p.cfg.Retrieve.RequeueDelay,
			Progress: func(pr retriever.Progress) {
				log.InfoContext(ctx, "retrieval progress",
					slog.Int("settled", pr.Settled),
					slog.Int("total", pr.Total),
					slog.Int("requeued", pr.Requeued),
					slog.Duration("elapsed", pr.Elapsed),
				)
			},
		},
	)

	out, err := r.Retrieve(ctx, pending)
	rep.Requeued = out.Requeued
	rep.Errors = append(rep.Errors, out.Errors...)

	// Words settled before a cancellation are still worth caching.
	p.storeResults(context.WithoutCancel(ctx), opts, out)

	results := append(hits, out.Results...)
	if err != nil {
		return results, fmt.Errorf("retrieve: %w", err)
	}
	return results, nil
}

// cachedResults loads cached results for items. Cache failures are logged
// and treated as misses.
func (p *Pipeline) cachedResults(ctx context.Context, opts Options, items []domain.FrequencyItem) map[string]domain.LookupResult {
	cached := make(map[string]domain.LookupResult)
	if p.cache == nil || len(items) == 0 {
		return cached
	}
	log := p.logger(ctx)

	known, err := p.cache.KnownWords(ctx, opts.From, opts.To)
	if err != nil {
		log.WarnContext(ctx, "cache lookup failed", slog.String("error", err.Error()))
		return cached
	}

	var words []string
	for _, item := range items {
		if known[item.Word] {
			words = append(words, item.Word)
		}
	}
	if len(words) == 0 {
		return cached
	}

	results, err := p.cache.LoadResults(ctx, opts.From, opts.To, words)
	if err != nil {
		log.WarnContext(ctx, "cache load failed", slog.String("error", err.Error()))
		return cached
	}
	for _, res := range results {
		cached[res.Word] = res
	}
	log.InfoContext(ctx, "cache hits", slog.Int("words", len(cached)))
	return cached
}

// storeResults writes fresh results to the cache, skipping placeholders of
// failed words. Write failures are logged only.
func (p *Pipeline) storeResults(ctx context.Context, opts Options, out retriever.Outcome) {
	if p.cache == nil {
		return
	}

	failed := make(map[string]bool, len(out.Errors))
	for _, e := range out.Errors {
		failed[e.Word] = true
	}
	fresh := make([]domain.LookupResult, 0, len(out.Results))
	for _, res := range out.Results {
		if !failed[res.Word] {
			fresh = append(fresh, res)
		}
	}
	if len(fresh) == 0 {
		return
	}

	n, err := p.cache.SaveResults(ctx, opts.From, opts.To, fresh)
	if err != nil {
		p.logger(ctx).WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
		return
	}
	p.logger(ctx).DebugContext(ctx, "cache updated", slog.Int("rows", n))
}

// appendMissing appends the items of extra whose word is not yet in items.
func appendMissing(items, extra []domain.FrequencyItem) []domain.FrequencyItem {
	items = slices.Clip(items)
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it.Word] = true
	}
	for _, it := range extra {
		if !seen[it.Word] {
			seen[it.Word] = true
			items = append(items, it)
		}
	}
	return items
}
