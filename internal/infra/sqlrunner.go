package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"campaignops/internal/journal"
)

// Querier is the part of *pgxpool.Pool the runner drives.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var (
	markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	ErrMissingMarker = errors.New("sql marker missing or invalid")
)

// SQLRunner executes the journal's marker-tagged queries and logs each one
// by marker. Queries without a valid marker never reach the database.
type SQLRunner struct {
	DB     Querier
	Logger zerolog.Logger
	// ExecTimeout bounds each Exec. Zero leaves the caller's deadline alone.
	ExecTimeout time.Duration
}

func NewSQLRunner(db Querier, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{DB: db, Logger: logger.With().Str("component", "journal_sql").Logger()}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	if r.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.ExecTimeout)
		defer cancel()
	}
	start := time.Now()
	tag, err := r.DB.Exec(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", marker).Dur("took", time.Since(start)).Msg("journal exec failed")
		return tag, err
	}
	r.Logger.Debug().Str("sql", marker).Int64("rows", tag.RowsAffected()).Dur("took", time.Since(start)).Msg("journal exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	r.Logger.Debug().Str("sql", marker).Msg("journal query_row")
	return scanLogger{row: r.DB.QueryRow(ctx, body, args...), logger: r.Logger, marker: marker}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", marker).Msg("journal query failed")
		return nil, err
	}
	r.Logger.Debug().Str("sql", marker).Msg("journal query")
	return closeLogger{Rows: rows, logger: r.Logger, marker: marker}, nil
}

// scanLogger reports scan failures other than a missing row, which the
// journal treats as "not yet applied".
type scanLogger struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
}

func (s scanLogger) Scan(dest ...any) error {
	err := s.row.Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().Err(err).Str("sql", s.marker).Msg("journal scan failed")
	}
	return err
}

type closeLogger struct {
	pgx.Rows
	logger zerolog.Logger
	marker string
}

func (c closeLogger) Close() {
	c.Rows.Close()
	if err := c.Rows.Err(); err != nil {
		c.logger.Error().Err(err).Str("sql", c.marker).Msg("journal rows failed")
	}
}

type errorRow struct{ err error }

func (e errorRow) Scan(...any) error { return e.err }

// extractMarker splits the leading "--sql <uuid>" line from query and
// returns the marker and the remaining statement.
func extractMarker(query string) (string, string, error) {
	first, rest, _ := strings.Cut(strings.TrimSpace(query), "\n")
	first = strings.TrimSpace(first)
	if !markerRegexp.MatchString(first) {
		return "", "", ErrMissingMarker
	}
	return strings.TrimPrefix(first, "--sql "), rest, nil
}

var _ journal.Executor = (*SQLRunner)(nil)
