// Package store provides a generic client-side state container for one
// resource kind. A store instance belongs to one view of the data; it is
// created with its service callbacks injected and disposed with Close when
// the view goes away. It is explicitly not a process-wide singleton.
package store

import (
	"context"
	"sync"
)

// NotifyFunc receives transient user-facing notifications (toasts).
type NotifyFunc func(level, message string)

// Level values passed to the notification hook.
const (
	LevelError   = "error"
	LevelSuccess = "success"
)

// Callbacks wires a store to its backing service. FetchForOwner returns the
// full item list in server order; the mutation callbacks return the
// authoritative entity the server persisted.
type Callbacks[ID comparable, T any] struct {
	ID     func(T) ID
	Fetch  func(ctx context.Context, ownerID string) ([]T, error)
	Create func(ctx context.Context, req any) (T, error)
	Update func(ctx context.Context, id ID, req any) (T, error)
	Delete func(ctx context.Context, id ID) error
}

// Store holds the items of one resource kind plus the flags a list view
// renders from. All methods are safe for concurrent use.
type Store[ID comparable, T any] struct {
	mu sync.RWMutex

	cb     Callbacks[ID, T]
	notify NotifyFunc

	items    []T
	loading  bool
	mutating bool
	errMsg   string

	selected    ID
	hasSelected bool

	closed bool
}

func New[ID comparable, T any](cb Callbacks[ID, T], notify NotifyFunc) *Store[ID, T] {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Store[ID, T]{cb: cb, notify: notify}
}

// FetchForOwner loads the owner's items and replaces the list wholesale on
// success. On failure the previous items stay visible (stale but available)
// and the error is recorded and notified.
func (s *Store[ID, T]) FetchForOwner(ctx context.Context, ownerID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	items, err := s.cb.Fetch(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Response landed after disposal; apply nothing
		return
	}
	s.loading = false

	if err != nil {
		s.errMsg = err.Error()
		s.notify(LevelError, "Failed to load items")
		return
	}

	s.items = items
}

// Create sends the request and on success prepends the returned entity. No
// refetch happens; a concurrent in-flight fetch overwriting the prepend is an
// accepted last-write-wins trade-off. A failed create leaves items untouched.
func (s *Store[ID, T]) Create(ctx context.Context, req any) (T, bool) {
	var zero T

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, false
	}
	s.mutating = true
	s.mu.Unlock()

	item, err := s.cb.Create(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return zero, false
	}
	s.mutating = false

	if err != nil {
		s.errMsg = err.Error()
		s.notify(LevelError, "Failed to create item")
		return zero, false
	}

	s.items = append([]T{item}, s.items...)
	s.errMsg = ""
	s.notify(LevelSuccess, "Created")
	return item, true
}

// Update replaces the matching item in place with the server's version.
func (s *Store[ID, T]) Update(ctx context.Context, id ID, req any) (T, bool) {
	var zero T

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, false
	}
	s.mutating = true
	s.mu.Unlock()

	item, err := s.cb.Update(ctx, id, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return zero, false
	}
	s.mutating = false

	if err != nil {
		s.errMsg = err.Error()
		s.notify(LevelError, "Failed to update item")
		return zero, false
	}

	for i := range s.items {
		if s.cb.ID(s.items[i]) == id {
			s.items[i] = item
			break
		}
	}
	s.errMsg = ""
	s.notify(LevelSuccess, "Updated")
	return item, true
}

// Delete removes the item with the given id and clears the selection if it
// pointed at the removed item.
func (s *Store[ID, T]) Delete(ctx context.Context, id ID) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.mutating = true
	s.mu.Unlock()

	err := s.cb.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.mutating = false

	if err != nil {
		s.errMsg = err.Error()
		s.notify(LevelError, "Failed to delete item")
		return false
	}

	kept := s.items[:0:0]
	for _, item := range s.items {
		if s.cb.ID(item) != id {
			kept = append(kept, item)
		}
	}
	s.items = kept

	if s.hasSelected && s.selected == id {
		s.hasSelected = false
		var zeroID ID
		s.selected = zeroID
	}

	s.errMsg = ""
	s.notify(LevelSuccess, "Deleted")
	return true
}

// Select marks the item the detail view shows.
func (s *Store[ID, T]) Select(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.selected = id
	s.hasSelected = true
}

// Selected returns the currently selected item, if any.
func (s *Store[ID, T]) Selected() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if !s.hasSelected {
		return zero, false
	}
	for _, item := range s.items {
		if s.cb.ID(item) == s.selected {
			return item, true
		}
	}
	return zero, false
}

// Items returns a copy of the current item list in server order.
func (s *Store[ID, T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Err returns the last recorded error message, empty when the last operation
// succeeded.
func (s *Store[ID, T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Loading reports whether a fetch is in flight. Mutations use the separate
// mutating flag so the list stays readable while they run.
func (s *Store[ID, T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Mutating reports whether a create, update or delete is in flight.
func (s *Store[ID, T]) Mutating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutating
}

// Close disposes the store. In-flight responses that land afterwards are
// dropped without touching state.
func (s *Store[ID, T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	s.hasSelected = false
}
