package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	byRef   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRef: make(map[string]int)}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRef[e.CampaignRef]; ok {
		return ErrDuplicate
	}
	m.byRef[e.CampaignRef] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryStore) Find(_ context.Context, campaignRef string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byRef[campaignRef]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return m.entries[i], nil
}

func (m *MemoryStore) List(context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
