// Package sets provides a minimal generic hash set used by the path finder
// for label buckets and node-id layers.
package sets

import (
	"iter"
	"maps"
)

// HashSet is a hash table-based set over any comparable element type.
// All basic operations are O(1) average. Iteration order is undefined.
//
// The zero value is not ready to use; construct with New.
type HashSet[T comparable] map[T]struct{}

// New creates a hash set containing the given items.
func New[T comparable](items ...T) HashSet[T] {
	s := make(HashSet[T], len(items))
	s.Add(items...)
	return s
}

// WithCapacity creates an empty hash set sized for n elements.
func WithCapacity[T comparable](n int) HashSet[T] {
	return make(HashSet[T], n)
}

// Add inserts the given items, ignoring duplicates.
func (s HashSet[T]) Add(items ...T) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

// Contains reports whether x is in the set.
func (s HashSet[T]) Contains(x T) bool {
	_, ok := s[x]
	return ok
}

// Size returns the number of elements in the set.
func (s HashSet[T]) Size() int {
	return len(s)
}

// IsEmpty reports whether the set has no elements.
func (s HashSet[T]) IsEmpty() bool {
	return len(s) == 0
}

// Iter returns an iterator over the elements in undefined order.
func (s HashSet[T]) Iter() iter.Seq[T] {
	return maps.Keys(s)
}

// ToSlice returns the elements as a freshly allocated slice in undefined order.
func (s HashSet[T]) ToSlice() []T {
	out := make([]T, 0, len(s))
	for x := range s {
		out = append(out, x)
	}
	return out
}

// Union adds every element of other to s and returns s.
func (s HashSet[T]) Union(other HashSet[T]) HashSet[T] {
	for x := range other {
		s[x] = struct{}{}
	}
	return s
}
