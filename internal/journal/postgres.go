package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campaignops/internal/sqlinline"
)

// Executor runs marker-tagged SQL. infra.SQLRunner satisfies it.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps the journal in the service database.
type PostgresStore struct {
	sql Executor
}

// NewPostgresStore returns a store over sql. Call EnsureSchema once at
// startup.
func NewPostgresStore(sql Executor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

// EnsureSchema creates the journal table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QEnsureJournalTable); err != nil {
		return fmt.Errorf("journal: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	events, err := json.Marshal(e.Events)
	if err != nil {
		return fmt.Errorf("journal: encode events: %w", err)
	}
	var seq int64
	err = s.sql.QueryRow(ctx, sqlinline.QInsertJournalEntry,
		e.ID, e.CampaignRef, e.Goal.String(), e.Amount.String(), events, e.CreatedAt,
	).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("journal: insert entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, campaignRef string) (Entry, error) {
	e, err := scanPostgresEntry(s.sql.QueryRow(ctx, sqlinline.QFindJournalEntry, campaignRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListJournalEntries)
	if err != nil {
		return nil, fmt.Errorf("journal: list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanPostgresEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

func scanPostgresEntry(row pgx.Row) (Entry, error) {
	var (
		e            Entry
		goal, amount string
		events       []byte
		createdAt    time.Time
	)
	if err := row.Scan(&e.ID, &e.CampaignRef, &goal, &amount, &events, &createdAt); err != nil {
		return Entry{}, err
	}
	e, err := decodeEntry(e, goal, amount, events, "")
	if err != nil {
		return Entry{}, err
	}
	e.CreatedAt = createdAt.UTC()
	return e, nil
}

var _ Store = (*PostgresStore)(nil)
