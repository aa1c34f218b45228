package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/wrdict/internal/aggregator"
	"github.com/heartmarshall/wrdict/internal/config"
	"github.com/heartmarshall/wrdict/internal/domain"
	"github.com/heartmarshall/wrdict/internal/exporter"
	"github.com/heartmarshall/wrdict/pkg/ctxutil"
)

// Phase names, in execution order.
const (
	PhaseCollect   = "collect"
	PhaseSave      = "save"
	PhaseAggregate = "aggregate"
	PhaseExport    = "export"
)

// Options describes one run. Zero values fall back to the configuration.
type Options struct {
	From string
	To   string

	// Words, when set, replaces the frequency list; ranks are assigned by position.
	Words []string
	// Source is a frequency list path or URL. Empty selects the default list for From.
	Source string
	Offset int
	N      int

	// DataPath loads previously saved results instead of retrieving.
	DataPath string
	// Append retrieves in addition to DataPath, or appends the head of the
	// list to the offset window when there is no DataPath.
	Append   bool
	SavePath string

	Output          string
	ChunkSize       int
	ExcludeExamples bool
}

func (o Options) validate() error {
	var errs []domain.FieldError
	if o.From == "" {
		errs = append(errs, domain.FieldError{Field: "from", Message: "required"})
	}
	if o.To == "" {
		errs = append(errs, domain.FieldError{Field: "to", Message: "required"})
	}
	if o.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Report summarizes a finished run.
type Report struct {
	RunID     uuid.UUID
	Words     int
	Cached    int
	Retrieved int
	Requeued  int
	Loaded    int
	Entries   int
	Errors    []*domain.LookupError
	Archive   string
	Phases    map[string]time.Duration
	Duration  time.Duration
}

// Pipeline runs harvests against one provider and an optional cache.
type Pipeline struct {
	log    *slog.Logger
	lookup Lookuper
	cache  ResultCache
	cfg    config.Config
	client *http.Client
}

// NewPipeline creates a Pipeline. cache may be nil.
func NewPipeline(log *slog.Logger, lookup Lookuper, cache ResultCache, cfg config.Config) *Pipeline {
	return &Pipeline{
		log:    log.With("component", "harvest"),
		lookup: lookup,
		cache:  cache,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Fetch.Timeout},
	}
}

// LookupWord looks up a single word without touching the cache or the export.
func (p *Pipeline) LookupWord(ctx context.Context, word, from, to string) (domain.LookupResult, error) {
	if word == "" {
		return domain.LookupResult{}, domain.NewValidationError("word", "required")
	}
	return p.lookup.Lookup(ctx, domain.FrequencyItem{Word: word}, from, to)
}

// Run executes every phase in order. Per-word failures end up in
// Report.Errors; only I/O, configuration and cancellation fail the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	rep := &Report{
		RunID:  uuid.New(),
		Errors: []*domain.LookupError{},
		Phases: make(map[string]time.Duration),
	}
	ctx = ctxutil.WithRunID(ctx, rep.RunID)

	p.logger(ctx).InfoContext(ctx, "harvest started",
		slog.String("from", opts.From),
		slog.String("to", opts.To),
	)

	var (
		results []domain.LookupResult
		dict    domain.Dictionary
	)

	err := p.phase(ctx, rep, PhaseCollect, func(ctx context.Context) error {
		var err error
		results, err = p.collect(ctx, opts, rep)
		return err
	})
	if err != nil {
		p.savePartial(ctx, opts, results)
		return rep, err
	}

	if opts.SavePath != "" {
		err = p.phase(ctx, rep, PhaseSave, func(ctx context.Context) error {
			if err := exporter.SaveResults(opts.SavePath, results); err != nil {
				return err
			}
			p.logger(ctx).InfoContext(ctx, "results saved",
				slog.String("path", opts.SavePath),
				slog.Int("results", len(results)),
			)
			return nil
		})
		if err != nil {
			return rep, err
		}
	}

	_ = p.phase(ctx, rep, PhaseAggregate, func(ctx context.Context) error {
		dict = aggregator.Aggregate(results, aggregator.Options{
			Header:                      p.cfg.Export.HeaderLine(),
			IncludeExamplesInDefinition: !(p.cfg.Export.ExcludeExamples || opts.ExcludeExamples),
		})
		rep.Entries = len(dict.Entries)
		return nil
	})

	err = p.phase(ctx, rep, PhaseExport, func(ctx context.Context) error {
		output := opts.Output
		if output == "" {
			output = p.cfg.Export.Output
		}
		path, err := exporter.WriteArchive(output, dict)
		if err != nil {
			return err
		}
		rep.Archive = path
		return nil
	})
	if err != nil {
		return rep, err
	}

	rep.Duration = time.Since(start)
	p.logger(ctx).InfoContext(ctx, "harvest completed",
		slog.Int("words", rep.Words),
		slog.Int("entries", rep.Entries),
		slog.Int("errors", len(rep.Errors)),
		slog.String("archive", rep.Archive),
		slog.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// phase runs fn with the phase name in ctx and records its duration.
func (p *Pipeline) phase(ctx context.Context, rep *Report, name string, fn func(ctx context.Context) error) error {
	ctx = ctxutil.WithPhase(ctx, name)
	log := p.logger(ctx)
	start := time.Now()
	log.DebugContext(ctx, "starting phase")

	err := fn(ctx)
	rep.Phases[name] = time.Since(start)
	if err != nil {
		log.ErrorContext(ctx, "phase failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", rep.Phases[name]),
		)
		return fmt.Errorf("%s: %w", name, err)
	}

	log.InfoContext(ctx, "phase completed", slog.Duration("duration", rep.Phases[name]))
	return nil
}

// savePartial writes whatever collect settled before failing, so an
// interrupted run can be resumed with the data path.
func (p *Pipeline) savePartial(ctx context.Context, opts Options, results []domain.LookupResult) {
	if opts.SavePath == "" || len(results) == 0 {
		return
	}
	log := p.logger(ctx)
	if err := exporter.SaveResults(opts.SavePath, results); err != nil {
		log.ErrorContext(ctx, "saving collected results before exit failed", slog.String("error", err.Error()))
		return
	}
	log.InfoContext(ctx, "collected results saved before exit",
		slog.String("path", opts.SavePath),
		slog.Int("results", len(results)),
	)
}

// logger decorates the pipeline logger with the run ID and phase found in ctx.
func (p *Pipeline) logger(ctx context.Context) *slog.Logger {
	log := p.log
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		log = log.With(slog.String("run_id", id.String()))
	}
	if phase := ctxutil.PhaseFromCtx(ctx); phase != "" {
		log = log.With(slog.String("phase", phase))
	}
	return log
}
