// Package journal persists applied debt resolutions so a ledger rebuilt from
// the transaction log can be brought back to its depleted state.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campaignops/internal/ledger"
)

var (
	ErrNotFound  = errors.New("journal: entry not found")
	ErrDuplicate = errors.New("journal: campaign already applied")
)

// Entry is one applied resolution, keyed by the campaign it was applied for.
type Entry struct {
	ID          string
	CampaignRef string
	Goal        decimal.Decimal
	Amount      decimal.Decimal
	Events      []ledger.ResolutionEvent
	CreatedAt   time.Time
}

// Store is an append-only log of entries with at most one entry per campaign.
type Store interface {
	// Record appends e. It returns ErrDuplicate when the campaign already
	// has an entry.
	Record(ctx context.Context, e Entry) error
	// Find returns the entry for campaignRef or ErrNotFound.
	Find(ctx context.Context, campaignRef string) (Entry, error)
	// List returns every entry in the order it was recorded.
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// NewEntry stamps a fresh entry with an id and the current time.
func NewEntry(campaignRef string, goal, amount decimal.Decimal, events []ledger.ResolutionEvent) Entry {
	return Entry{
		ID:          uuid.NewString(),
		CampaignRef: campaignRef,
		Goal:        goal,
		Amount:      amount,
		Events:      events,
		CreatedAt:   time.Now().UTC(),
	}
}

// Replay re-applies every recorded amount to l in journal order and returns
// the number of entries applied. FIFO resolution is deterministic, so the
// resulting ledger state matches the one the entries were recorded against.
func Replay(ctx context.Context, s Store, l *ledger.Ledger) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("journal: replay: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		l.Resolve(e.Amount)
	}
	return len(entries), nil
}
