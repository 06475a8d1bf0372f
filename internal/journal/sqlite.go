package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore keeps the journal in a local SQLite file. It is the default for
// operator workstations running the CLI.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the journal database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: connect sqlite: %w", err)
	}
	// single writer avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	events, err := json.Marshal(e.Events)
	if err != nil {
		return fmt.Errorf("journal: encode events: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolution_journal (id, campaign_ref, goal, amount, events, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CampaignRef, e.Goal.String(), e.Amount.String(), string(events), e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("journal: insert entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Find(ctx context.Context, campaignRef string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, campaign_ref, goal, amount, events, created_at FROM resolution_journal WHERE campaign_ref = ?`,
		campaignRef,
	)
	e, err := scanSQLiteEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, campaign_ref, goal, amount, events, created_at FROM resolution_journal ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanSQLiteEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanSQLiteEntry(scan func(dest ...any) error) (Entry, error) {
	var (
		e                          Entry
		goal, amount, events, when string
	)
	if err := scan(&e.ID, &e.CampaignRef, &goal, &amount, &events, &when); err != nil {
		return Entry{}, err
	}
	return decodeEntry(e, goal, amount, []byte(events), when)
}

func decodeEntry(e Entry, goal, amount string, events []byte, when string) (Entry, error) {
	var err error
	if e.Goal, err = decimal.NewFromString(goal); err != nil {
		return Entry{}, fmt.Errorf("journal: decode goal: %w", err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return Entry{}, fmt.Errorf("journal: decode amount: %w", err)
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &e.Events); err != nil {
			return Entry{}, fmt.Errorf("journal: decode events: %w", err)
		}
	}
	if when != "" {
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, when); err != nil {
			return Entry{}, fmt.Errorf("journal: decode created_at: %w", err)
		}
	}
	return e, nil
}

var _ Store = (*SQLiteStore)(nil)
