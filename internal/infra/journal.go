package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"campaignops/internal/journal"
)

type pooledJournal struct {
	*journal.PostgresStore
	pool *pgxpool.Pool
}

func (p pooledJournal) Close() error {
	p.pool.Close()
	return nil
}

// OpenJournal opens the resolution journal selected by cfg.JournalDriver.
// Closing the returned store releases its database.
func OpenJournal(ctx context.Context, cfg *Config, logger zerolog.Logger) (journal.Store, error) {
	switch cfg.JournalDriver {
	case JournalMemory:
		return journal.NewMemoryStore(), nil
	case JournalSQLite:
		store, err := journal.OpenSQLite(cfg.JournalSQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case JournalPostgres:
		pool, err := NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		runner := NewSQLRunner(pool, logger)
		runner.ExecTimeout = cfg.SQLExecTimeout
		store := journal.NewPostgresStore(runner)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pooledJournal{PostgresStore: store, pool: pool}, nil
	default:
		return nil, fmt.Errorf("unsupported JOURNAL_DRIVER %q", cfg.JournalDriver)
	}
}
