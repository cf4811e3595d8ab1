// Package bmap implements a read-only map with []byte keys.
// Lexer uses it to look up reserved words directly in its token buffer.
package bmap

import "sort"

// BMap is built once from a fixed key set and never modified afterwards,
// so concurrent lookups are safe.
// Keys longer than the longest stored key and keys starting with a byte
// no stored key starts with are rejected without hashing.
type BMap[T any] struct {
	smap   map[string]T
	maxLen int
	first  [256]bool
}

// New creates a map holding given keys and values, keys and values must have the same length.
func New[T any](keys []string, values []T) *BMap[T] {
	if len(keys) != len(values) {
		panic("bmap: keys and values differ in length")
	}

	m := &BMap[T]{smap: make(map[string]T, len(keys))}
	for i, k := range keys {
		m.smap[k] = values[i]
		if len(k) > m.maxLen {
			m.maxLen = len(k)
		}
		if k != "" {
			m.first[k[0]] = true
		}
	}
	return m
}

// Get returns stored value by key and a flag telling whether this key is stored in the map.
// Returns zero value if the key is not present.
func (m *BMap[T]) Get(key []byte) (T, bool) {
	if len(key) > m.maxLen || (len(key) > 0 && !m.first[key[0]]) {
		var zero T
		return zero, false
	}

	// conversion in map index expression does not allocate
	result, has := m.smap[string(key)]
	return result, has
}

func (m *BMap[T]) Len() int {
	return len(m.smap)
}

// MaxKeyLen returns the length of the longest key.
func (m *BMap[T]) MaxKeyLen() int {
	return m.maxLen
}

// Keys returns stored keys in ascending order.
func (m *BMap[T]) Keys() []string {
	keys := make([]string, 0, len(m.smap))
	for k := range m.smap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
