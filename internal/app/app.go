package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wrdict/internal/adapter/postgres"
	"github.com/heartmarshall/wrdict/internal/adapter/postgres/lookupresult"
	"github.com/heartmarshall/wrdict/internal/adapter/provider/wordreference"
	"github.com/heartmarshall/wrdict/internal/app/harvest"
	"github.com/heartmarshall/wrdict/internal/config"
)

// Compile-time interface assertions.
var (
	_ harvest.Lookuper    = (*wordreference.Provider)(nil)
	_ harvest.ResultCache = (*lookupresult.Repo)(nil)
)

// Build wires the harvest pipeline from configuration. When a database is
// configured, migrations are applied and the result cache is attached.
// The returned close function releases the database pool, if any.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*harvest.Pipeline, func(), error) {
	logger.Info("starting wrdict",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	provider, err := wordreference.NewProvider(cfg.Fetch, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}

	closeFn := func() {}
	var cache harvest.ResultCache
	if cfg.Database.Enabled() {
		applied, err := postgres.Migrate(ctx, cfg.Database.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("migrations up to date", slog.Int("applied", applied))

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		cache = lookupresult.New(pool, postgres.NewTxManager(pool), cfg.Database.BatchSize)
		closeFn = pool.Close
		logger.Info("result cache enabled")
	}

	return harvest.NewPipeline(logger, provider, cache, *cfg), closeFn, nil
}
