package tree

import "sort"

// Selection is the set of node ids currently marked checked in a multi-select
// tree view, e.g. the menus assigned to a role. The zero value is not usable;
// construct with NewSelection.
type Selection map[string]struct{}

// NewSelection builds a selection containing the given ids.
func NewSelection(ids ...string) Selection {
	sel := make(Selection, len(ids))
	for _, id := range ids {
		sel[id] = struct{}{}
	}
	return sel
}

// Has reports whether id is checked. A nil Selection contains nothing.
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks id as checked.
func (s Selection) Add(id string) {
	s[id] = struct{}{}
}

// Toggle flips the checked state of exactly one id. It never cascades to
// ancestors or descendants: a child may be checked while its parent is not,
// matching how persisted role assignments are interpreted. Toggling the same
// id twice restores the original selection.
func (s Selection) Toggle(id string) {
	if _, ok := s[id]; ok {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// Retain removes every id not present in keep. Used when a fresh forest is
// loaded for a collection: ids from the previous snapshot must not survive.
// It reports how many ids were dropped.
func (s Selection) Retain(keep Selection) int {
	dropped := 0
	for id := range s {
		if !keep.Has(id) {
			delete(s, id)
			dropped++
		}
	}
	return dropped
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Len returns the number of checked ids.
func (s Selection) Len() int { return len(s) }

// IDs returns the checked ids in lexical order, for stable persistence and
// test assertions.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
