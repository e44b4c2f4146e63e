// Package posmap implements a persistent map keyed by an ordered position plus
// an arbitrary key compared for equality.
//
// Every update returns a new Map and leaves the receiver untouched. Entries are
// grouped by position in a copy-on-write B-tree, so taking a new version costs
// a lazy clone and the nodes on one root-to-leaf path.
package posmap

import (
	"github.com/google/btree"
)

const degree = 8

type entry[K, V any] struct {
	key   K
	value V
}

type bucket[P, K, V any] struct {
	pos     P
	entries []entry[K, V]
}

// Map is a persistent map from (position, key) to value.
type Map[P, K, V any] struct {
	tree  *btree.BTreeG[bucket[P, K, V]]
	equal func(a, b K) bool
	size  int
}

// New returns an empty map. compare orders positions and equal decides whether
// two keys stored at the same position are the same key.
func New[P, K, V any](compare func(a, b P) int, equal func(a, b K) bool) *Map[P, K, V] {
	less := func(a, b bucket[P, K, V]) bool {
		return compare(a.pos, b.pos) < 0
	}
	return &Map[P, K, V]{
		tree:  btree.NewG(degree, less),
		equal: equal,
	}
}

// Len returns the number of entries in m.
func (m *Map[P, K, V]) Len() int {
	return m.size
}

// Positions returns the number of distinct positions that hold entries.
func (m *Map[P, K, V]) Positions() int {
	return m.tree.Len()
}

// Lookup returns the value stored for key at pos.
func (m *Map[P, K, V]) Lookup(pos P, key K) (V, bool) {
	var zero V
	b, ok := m.tree.Get(bucket[P, K, V]{pos: pos})
	if !ok {
		return zero, false
	}
	for _, e := range b.entries {
		if m.equal(e.key, key) {
			return e.value, true
		}
	}
	return zero, false
}

// Update returns a map that stores value for key at pos, replacing any entry
// with an equal key at that position.
func (m *Map[P, K, V]) Update(pos P, key K, value V) *Map[P, K, V] {
	tree := m.tree.Clone()
	old, _ := tree.Get(bucket[P, K, V]{pos: pos})

	entries := make([]entry[K, V], 0, len(old.entries)+1)
	size := m.size + 1
	for _, e := range old.entries {
		if m.equal(e.key, key) {
			size--
			continue
		}
		entries = append(entries, e)
	}
	entries = append(entries, entry[K, V]{key: key, value: value})
	tree.ReplaceOrInsert(bucket[P, K, V]{pos: pos, entries: entries})

	return &Map[P, K, V]{tree: tree, equal: m.equal, size: size}
}

// Prune returns a map without any entry at or after pos.
func (m *Map[P, K, V]) Prune(pos P) *Map[P, K, V] {
	var doomed []bucket[P, K, V]
	m.tree.AscendGreaterOrEqual(bucket[P, K, V]{pos: pos}, func(b bucket[P, K, V]) bool {
		doomed = append(doomed, b)
		return true
	})
	if len(doomed) == 0 {
		return m
	}

	tree := m.tree.Clone()
	size := m.size
	for _, b := range doomed {
		tree.Delete(b)
		size -= len(b.entries)
	}
	return &Map[P, K, V]{tree: tree, equal: m.equal, size: size}
}
