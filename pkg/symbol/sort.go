package symbol

import "slices"

// Sort sorts symbols in ascending order.
func Sort(syms []Symbol) {
	slices.SortFunc(syms, Compare)
}

// Set is an insertion-ordered set of symbols keyed by their printed form.
type Set struct {
	index map[string]int
	items []Symbol
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add inserts s and reports whether it was not yet present.
func (s *Set) Add(sym Symbol) bool {
	key := sym.String()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, sym)
	return true
}

// Contains reports whether sym is in the set.
func (s *Set) Contains(sym Symbol) bool {
	_, ok := s.index[sym.String()]
	return ok
}

// Index returns the insertion index of sym, or -1.
func (s *Set) Index(sym Symbol) int {
	if i, ok := s.index[sym.String()]; ok {
		return i
	}
	return -1
}

// Len returns the number of symbols in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the symbols in insertion order. The slice must not be modified.
func (s *Set) Items() []Symbol {
	return s.items
}

// Sorted returns a sorted copy of the symbols.
func (s *Set) Sorted() []Symbol {
	out := slices.Clone(s.items)
	slices.SortFunc(out, Compare)
	return out
}
