// Package types holds small generic containers shared across packages.
package types

import (
	"maps"
	"slices"
)

// Set is a hash set of comparable values. It is mutable and not safe for
// concurrent writes.
type Set[T comparable] map[T]struct{}

// NewSet returns a Set holding data.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	set.Add(data...)
	return set
}

// Add inserts values into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// ToSlice collects the members in unspecified order.
func (s Set[T]) ToSlice() []T {
	return slices.Collect(maps.Keys(s))
}
