package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dwikikusuma/resto-pos/internal/catalog/domain"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNotLoaded          = errors.New("catalog not loaded")
	ErrItemNotFound       = errors.New("item not found")
)

// Snapshot is the session's read-mostly copy of the catalog. Load replaces it
// wholesale; the only other writer is the checkout success path, which deducts
// stock optimistically and marks the snapshot stale so the next Load acts as
// the resync with the backend's authoritative counts.
//
// Safe for concurrent use: the checkout commit lands while display handlers
// may be reading, so every accessor takes the snapshot's own lock.
type Snapshot struct {
	api CatalogAPI

	mu     sync.RWMutex
	items  map[string]domain.Item
	loaded bool
	stale  bool
}

func NewSnapshot(api CatalogAPI) *Snapshot {
	return &Snapshot{api: api}
}

// Load fetches all sellable items. All-or-nothing: on failure the previous
// snapshot (if any) is kept untouched and the error reports
// ErrCatalogUnavailable. Items the backend marks unavailable are dropped here
// so nothing downstream has to re-check the flag.
func (s *Snapshot) Load(ctx context.Context) error {
	fetched, err := s.api.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	items := make(map[string]domain.Item, len(fetched))
	for _, it := range fetched {
		if !it.Available {
			continue
		}
		items[it.ID] = it
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.stale = false
	s.mu.Unlock()
	return nil
}

func (s *Snapshot) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Stale reports whether a checkout has deducted stock locally since the last
// Load. The caller decides when to trigger the resync.
func (s *Snapshot) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func (s *Snapshot) Item(id string) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return domain.Item{}, ErrNotLoaded
	}
	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return it, nil
}

// Items returns a display copy sorted by category then name.
func (s *Snapshot) Items() []domain.Item {
	s.mu.RLock()
	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DeductStock lowers the local stock mirror after a confirmed order and marks
// the snapshot stale. Clamps at zero: the backend already accepted the order,
// so a short local count means the mirror was behind, not that the sale failed.
func (s *Snapshot) DeductStock(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return
	}
	it.Stock -= qty
	if it.Stock < 0 {
		it.Stock = 0
	}
	s.items[id] = it
	s.stale = true
}
