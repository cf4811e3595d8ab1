// Package ints implements a set of small non-negative integers.
// Generator uses it for terminal sets (FIRST sets and lookaheads), so sets are dense
// and grow to the largest item added.
package ints

import "math/bits"

const chunkBits = bits.UintSize

type Set struct {
	chunks []uint
}

func NewSet(items ...int) *Set {
	s := &Set{}
	return s.Add(items...)
}

func (s *Set) grow(item int) {
	n := item/chunkBits + 1
	if n > len(s.chunks) {
		chunks := make([]uint, n)
		copy(chunks, s.chunks)
		s.chunks = chunks
	}
}

// Add adds items to s in place and returns s. Negative items panic.
func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		if item < 0 {
			panic("ints: negative set item")
		}
		s.grow(item)
		s.chunks[item/chunkBits] |= 1 << (item % chunkBits)
	}
	return s
}

// Remove removes items from s in place and returns s.
func (s *Set) Remove(items ...int) *Set {
	for _, item := range items {
		if item >= 0 && item/chunkBits < len(s.chunks) {
			s.chunks[item/chunkBits] &^= 1 << (item % chunkBits)
		}
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 || item/chunkBits >= len(s.chunks) {
		return false
	}
	return s.chunks[item/chunkBits]&(1<<(item%chunkBits)) != 0
}

// AddSet adds all items of t to s in place, returns true if s has changed.
func (s *Set) AddSet(t *Set) bool {
	if len(t.chunks) > len(s.chunks) {
		s.grow(len(t.chunks)*chunkBits - 1)
	}

	changed := false
	for i, chunk := range t.chunks {
		old := s.chunks[i]
		if old|chunk != old {
			s.chunks[i] = old | chunk
			changed = true
		}
	}
	return changed
}

func (s *Set) Copy() *Set {
	result := &Set{chunks: make([]uint, len(s.chunks))}
	copy(result.chunks, s.chunks)
	return result
}

func (s *Set) IsEmpty() bool {
	for _, chunk := range s.chunks {
		if chunk != 0 {
			return false
		}
	}
	return true
}

func (s *Set) Len() int {
	n := 0
	for _, chunk := range s.chunks {
		n += bits.OnesCount(chunk)
	}
	return n
}

// ToSlice returns items in ascending order.
func (s *Set) ToSlice() []int {
	result := make([]int, 0, s.Len())
	for i, chunk := range s.chunks {
		for chunk != 0 {
			b := bits.TrailingZeros(chunk)
			result = append(result, i*chunkBits+b)
			chunk &= chunk - 1
		}
	}
	return result
}

func (s *Set) IsEqual(t *Set) bool {
	short, long := s.chunks, t.chunks
	if len(short) > len(long) {
		short, long = long, short
	}
	for i, chunk := range short {
		if chunk != long[i] {
			return false
		}
	}
	for _, chunk := range long[len(short):] {
		if chunk != 0 {
			return false
		}
	}
	return true
}
