// Package scope provides a persistent, shadow-respecting map chain.
//
// Each Map holds the entries of one level and a pointer to its parent.
// Extend creates a new empty level over the receiver without copying or
// mutating it, so several children can share one parent independently.
package scope

import "iter"

type Map[K comparable, V any] struct {
	parent *Map[K, V]
	keys   []K
	values map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// Extend returns a new empty level whose parent is m.
func (m *Map[K, V]) Extend() *Map[K, V] {
	return &Map[K, V]{parent: m, values: make(map[K]V)}
}

func (m *Map[K, V]) Parent() *Map[K, V] {
	return m.parent
}

// TryEmplace inserts k at the current level. It fails if k already exists at
// this level; entries of parent levels may be shadowed.
func (m *Map[K, V]) TryEmplace(k K, v V) bool {
	if _, exists := m.values[k]; exists {
		return false
	}
	m.keys = append(m.keys, k)
	m.values[k] = v
	return true
}

// Replace overwrites an entry that already exists at the current level.
func (m *Map[K, V]) Replace(k K, v V) bool {
	if _, exists := m.values[k]; !exists {
		return false
	}
	m.values[k] = v
	return true
}

// Find looks k up in this level and then in each parent.
func (m *Map[K, V]) Find(k K) (V, bool) {
	for s := m; s != nil; s = s.parent {
		if v, ok := s.values[k]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// FindLocal looks k up in this level only.
func (m *Map[K, V]) FindLocal(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Contains reports whether k is visible from m.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.Find(k)
	return ok
}

// Keys returns the keys of the current level in insertion order.
func (m *Map[K, V]) Keys() []K {
	return m.keys
}

// Len returns the number of entries at the current level.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// All yields every visible entry, innermost level first and in insertion
// order within a level. Shadowed entries are skipped.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		seen := make(map[K]struct{})
		for s := m; s != nil; s = s.parent {
			for _, k := range s.keys {
				if _, shadowed := seen[k]; shadowed {
					continue
				}
				seen[k] = struct{}{}
				if !yield(k, s.values[k]) {
					return
				}
			}
		}
	}
}

// Ordered yields every visible entry, outermost level first. This is the
// order in which entries were declared.
func (m *Map[K, V]) Ordered() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var levels []*Map[K, V]
		for s := m; s != nil; s = s.parent {
			levels = append(levels, s)
		}
		for i := len(levels) - 1; i >= 0; i-- {
			s := levels[i]
			for _, k := range s.keys {
				if !sameLevel(m, s, k) {
					continue
				}
				if !yield(k, s.values[k]) {
					return
				}
			}
		}
	}
}

// sameLevel reports whether k as seen from m resolves at level s.
func sameLevel[K comparable, V any](m, s *Map[K, V], k K) bool {
	for l := m; l != nil; l = l.parent {
		if _, ok := l.values[k]; ok {
			return l == s
		}
	}
	return false
}
