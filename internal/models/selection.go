package models

import "slices"

// Selection maps categories to the ids picked in them.
type Selection map[Category][]string

// IDs returns the ids for c, never nil.
func (s Selection) IDs(c Category) []string {
	if ids := s[c]; ids != nil {
		return ids
	}
	return []string{}
}

// Contains reports whether id is picked in c.
func (s Selection) Contains(c Category, id string) bool {
	return slices.Contains(s[c], id)
}

// Empty reports whether every category in cats is empty.
// With no categories given, every category in s is checked.
func (s Selection) Empty(cats ...Category) bool {
	if len(cats) == 0 {
		for _, ids := range s {
			if len(ids) > 0 {
				return false
			}
		}
		return true
	}
	for _, c := range cats {
		if len(s[c]) > 0 {
			return false
		}
	}
	return true
}

// GroupEmpty reports whether every category of g is empty.
func (s Selection) GroupEmpty(g GroupType) bool {
	return s.Empty(g.Categories()...)
}

// Clone deep copies s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for c, ids := range s {
		out[c] = slices.Clone(ids)
	}
	return out
}

// ForGroup copies the categories of g into a new selection with duplicates removed.
// Every category of g is present in the result, empty ones as an empty list.
func (s Selection) ForGroup(g GroupType) Selection {
	out := make(Selection)
	for _, c := range g.Categories() {
		out[c] = Dedup(s[c])
	}
	return out
}

// Counts returns the number of ids per non-empty category.
func (s Selection) Counts() map[Category]int {
	counts := make(map[Category]int)
	for c, ids := range s {
		if len(ids) > 0 {
			counts[c] = len(ids)
		}
	}
	return counts
}

// Total is the number of ids across every category.
func (s Selection) Total() int {
	n := 0
	for _, ids := range s {
		n += len(ids)
	}
	return n
}

// Dedup returns ids with duplicates removed, keeping first occurrence order. The result is never nil.
func Dedup(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
