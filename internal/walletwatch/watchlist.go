package walletwatch

import (
	"maps"
	"slices"
)

// WatchList maps watched addresses to their display labels. It is never
// mutated after creation; reconfiguration builds a new one.
type WatchList struct {
	entries map[string]string
}

// NewWatchList copies entries into a WatchList.
func NewWatchList(entries map[string]string) WatchList {
	return WatchList{entries: maps.Clone(entries)}
}

// Lookup returns the label of address and whether it is watched.
func (w WatchList) Lookup(address string) (string, bool) {
	label, ok := w.entries[address]
	return label, ok
}

// Len returns the number of watched addresses.
func (w WatchList) Len() int {
	return len(w.entries)
}

// Addresses returns the watched addresses in lexical order.
func (w WatchList) Addresses() []string {
	return slices.Sorted(maps.Keys(w.entries))
}
