package indexer

import "sort"

// Entry is one installed title in the catalog.
type Entry struct {
	ID   string // Steam app id
	Name string // Display name
}

// Index is the read-only id -> name snapshot of the filtered catalog.
// It is never modified after construction, so concurrent readers need no locking.
type Index struct {
	entries map[string]string
}

// NewIndex builds an index holding a copy of entries.
func NewIndex(entries map[string]string) *Index {
	idx := &Index{entries: make(map[string]string, len(entries))}
	for id, name := range entries {
		idx.entries[id] = name
	}
	return idx
}

// Name returns the display name for id.
func (idx *Index) Name(id string) (string, bool) {
	name, ok := idx.entries[id]
	return name, ok
}

// Each calls fn for every entry, in map iteration order.
func (idx *Index) Each(fn func(id, name string)) {
	for id, name := range idx.entries {
		fn(id, name)
	}
}

// Entries returns all entries sorted by name, then id.
func (idx *Index) Entries() []Entry {
	result := make([]Entry, 0, len(idx.entries))
	for id, name := range idx.entries {
		result = append(result, Entry{ID: id, Name: name})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Count returns the number of entries in the index
func (idx *Index) Count() int {
	return len(idx.entries)
}
