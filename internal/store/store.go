package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

// CartState is a value snapshot of the current items plus their derived
// summary.
type CartState struct {
	Items   []domain.LineItem `json:"items"`
	Summary domain.Summary    `json:"summary"`
}

// CartStore holds the authoritative in-process line items between syncs and
// mirrors every mutation to durable storage. Storage failures are logged and
// tolerated; the in-memory state wins for the session.
type CartStore struct {
	mu       sync.Mutex
	storage  Storage
	items    []domain.LineItem
	lastSync *time.Time

	subMu   sync.Mutex
	subs    map[int]func(CartState)
	nextSub int
}

func New(storage Storage) *CartStore {
	return &CartStore{
		storage: storage,
		subs:    make(map[int]func(CartState)),
	}
}

// Hydrate loads the persisted snapshot, if any. An absent snapshot leaves the
// store empty and is not an error.
func (s *CartStore) Hydrate(ctx context.Context) error {
	snap, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.items = append([]domain.LineItem(nil), snap.Items...)
	s.lastSync = snap.LastSync
	s.mu.Unlock()
	s.notify()
	return nil
}

// Add merges into an existing line item when the (product, color, handle,
// label) tuple matches, otherwise appends a new item with a fresh id.
// Returns the affected item and whether it merged into an existing one.
func (s *CartStore) Add(ctx context.Context, p domain.ProductSnapshot, qty int, color, handle, label string) (domain.LineItem, bool) {
	if qty < 1 {
		qty = 1
	}

	key := domain.VariantKey{ProductID: p.ProductID, Color: color, Handle: handle, CustomLabel: label}

	s.mu.Lock()
	var out domain.LineItem
	merged := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += qty
			out = s.items[i]
			merged = true
			break
		}
	}
	if !merged {
		out = domain.LineItem{
			ID:          uuid.NewString(),
			Product:     p,
			Quantity:    qty,
			Color:       color,
			Handle:      handle,
			CustomLabel: label,
		}
		s.items = append(s.items, out)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return out, merged
}

// Has reports whether an item with the given id exists.
func (s *CartStore) Has(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			return true
		}
	}
	return false
}

// Remove deletes the matching item; no-op if absent. Reports whether an item
// was removed.
func (s *CartStore) Remove(ctx context.Context, itemID string) bool {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

// UpdateQuantity replaces the quantity of the matching item. A quantity of
// zero or less removes the item. Returns the resulting item and whether a
// match existed (ok is false after a removal too).
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, qty int) (domain.LineItem, bool) {
	if qty <= 0 {
		s.Remove(ctx, itemID)
		return domain.LineItem{}, false
	}

	s.mu.Lock()
	var out domain.LineItem
	found := false
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = qty
			out = s.items[i]
			found = true
			break
		}
	}
	if found {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if found {
		s.notify()
	}
	return out, found
}

// Clear empties the item list.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Upsert applies a remote-originated item: inserted if absent by identity,
// otherwise its quantity and customization overwrite the local copy.
func (s *CartStore) Upsert(ctx context.Context, it domain.LineItem) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == it.ID {
			s.items[i].Quantity = it.Quantity
			s.items[i].Color = it.Color
			s.items[i].Handle = it.Handle
			s.items[i].CustomLabel = it.CustomLabel
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, it)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Overwrite replaces the item list verbatim with the canonical remote set.
func (s *CartStore) Overwrite(ctx context.Context, items []domain.LineItem, lastSync time.Time) {
	s.mu.Lock()
	s.items = append([]domain.LineItem(nil), items...)
	s.lastSync = &lastSync
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// SetLastSync stamps the snapshot without touching the items.
func (s *CartStore) SetLastSync(ctx context.Context, t time.Time) {
	s.mu.Lock()
	s.lastSync = &t
	s.persistLocked(ctx)
	s.mu.Unlock()
}

func (s *CartStore) LastSync() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// State returns a defensive copy of the current items with their summary.
func (s *CartStore) State() CartState {
	s.mu.Lock()
	items := append([]domain.LineItem(nil), s.items...)
	s.mu.Unlock()
	return CartState{Items: items, Summary: domain.Summarize(items)}
}

// OnChange registers a subscriber invoked with a state snapshot after every
// mutation. The returned func unsubscribes.
func (s *CartStore) OnChange(fn func(CartState)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *CartStore) notify() {
	state := s.State()
	s.subMu.Lock()
	fns := make([]func(CartState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

// persistLocked writes the snapshot; callers hold s.mu. Failures are logged
// and swallowed, in-memory state stays authoritative for the session.
func (s *CartStore) persistLocked(ctx context.Context) {
	snap := &Snapshot{
		Items:    append([]domain.LineItem(nil), s.items...),
		LastSync: s.lastSync,
	}
	if err := s.storage.Save(ctx, snap); err != nil {
		log.Printf("cart storage save error: %v", err)
	}
}
