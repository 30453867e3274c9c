package appointments

import (
	"sort"
	"sync"
)

// SelectionSet is the set of appointment ids chosen for a batch action. It
// is UI-local bookkeeping, never persisted, and cleared after each batch
// action or explicit clear.
type SelectionSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSelectionSet creates an empty set.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[string]struct{})}
}

// Toggle adds the id when absent and removes it when present, returning
// whether the id is selected afterward.
func (s *SelectionSet) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAllVisible replaces the selection with the visible ids.
func (s *SelectionSet) SelectAllVisible(visible []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(visible))
	for _, id := range visible {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// Has reports whether the id is selected.
func (s *SelectionSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the selection size.
func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids in stable order.
func (s *SelectionSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
