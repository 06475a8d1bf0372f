// Package campaigns stores campaign records consolidated from the fundraising
// platforms.
package campaigns

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("campaigns: not found")

const (
	PlatformChuffed   = "chuffed"
	PlatformWhydonate = "whydonate"
)

// Campaign is a platform campaign in the unified schema. Raised is in the
// base currency.
type Campaign struct {
	ID          string          `json:"id"`
	Platform    string          `json:"platform"`
	Title       string          `json:"title"`
	DisplayName string          `json:"display_name"`
	FirstName   string          `json:"first_name,omitempty"`
	Goal        string          `json:"goal,omitempty"`
	Raised      decimal.Decimal `json:"raised"`
	Currency    string          `json:"currency_original"`
	URL         string          `json:"url,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// Store is the campaign-data collaborator of the split service.
type Store interface {
	Get(ctx context.Context, id string) (Campaign, error)
	Put(ctx context.Context, c Campaign) error
	// List returns every campaign ordered by ID.
	List(ctx context.Context) ([]Campaign, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Campaign
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]Campaign{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byID[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) Put(_ context.Context, c Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = c
	return nil
}

func (m *MemoryStore) List(context.Context) ([]Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Campaign, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
