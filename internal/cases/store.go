package cases

import "sync"

// Store holds the ordered, in-memory list of cases for one browsing session.
// Order is meaningful: newest additions come first. Nothing is persisted.
type Store struct {
	mu    sync.RWMutex
	items []Case
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// All returns a snapshot of the stored cases in store order. The snapshot
// shares no tag slices with the store.
func (s *Store) All() []Case {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Case, len(s.items))
	for i, c := range s.items {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of stored cases
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Replace swaps the whole content of the store
func (s *Store) Replace(items []Case) {
	next := make([]Case, len(items))
	for i, c := range items {
		next[i] = c.Clone()
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Prepend inserts c in front of every existing case
func (s *Store) Prepend(c Case) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Case, 0, len(s.items)+1)
	next = append(next, c.Clone())
	next = append(next, s.items...)
	s.items = next
}
