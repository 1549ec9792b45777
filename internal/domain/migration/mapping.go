package migration

import (
	"sort"
	"strings"
	"sync"
)

// IDMapping is a one-directional map from source numeric id to destination
// numeric id, built incrementally as entities are created. It is written only
// by its owning migrator; dependents read a snapshot. Entries are never
// invalidated, so re-running a migration against an existing mapping is safe.
type IDMapping struct {
	mu      sync.RWMutex
	entries map[int64]int64
}

// NewIDMapping creates an empty mapping
func NewIDMapping() *IDMapping {
	return &IDMapping{entries: make(map[int64]int64)}
}

// NewIDMappingFrom creates a mapping pre-populated with persisted entries
func NewIDMappingFrom(entries map[int64]int64) *IDMapping {
	m := NewIDMapping()
	for src, dst := range entries {
		m.entries[src] = dst
	}
	return m
}

// Put records a sourceID -> destinationID pair
func (m *IDMapping) Put(sourceID, destinationID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sourceID] = destinationID
}

// Get returns the destination id for a source id
func (m *IDMapping) Get(sourceID int64) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dst, ok := m.entries[sourceID]
	return dst, ok
}

// Len returns the number of mapped pairs
func (m *IDMapping) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot returns a copy of the mapping safe for concurrent readers
func (m *IDMapping) Snapshot() map[int64]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]int64, len(m.entries))
	for src, dst := range m.entries {
		out[src] = dst
	}
	return out
}

// SourceIDs returns the mapped source ids in ascending order
func (m *IDMapping) SourceIDs() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.entries))
	for src := range m.entries {
		ids = append(ids, src)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CategoryIndex is a read-only snapshot of category name -> destination id,
// passed into product transforms. It is built once after the category
// migration and never mutated, so concurrent migrators cannot race on it.
type CategoryIndex struct {
	byName map[string]int64
}

// NewCategoryIndex builds an index from category names to destination ids.
// Lookups are case-insensitive.
func NewCategoryIndex(names map[string]int64) *CategoryIndex {
	idx := &CategoryIndex{byName: make(map[string]int64, len(names))}
	for name, id := range names {
		idx.byName[normalizeCategoryName(name)] = id
	}
	return idx
}

// Lookup resolves a category name to its destination id
func (idx *CategoryIndex) Lookup(name string) (int64, bool) {
	if idx == nil {
		return 0, false
	}
	id, ok := idx.byName[normalizeCategoryName(name)]
	return id, ok
}

// Len returns the number of indexed categories
func (idx *CategoryIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byName)
}

func normalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
