// Package itemstore aggregates scripts, scriptlets, agents, built-ins,
// apps, and windows into the single ranked item set the search engine
// operates on.
//
// A refresh reads everything fresh, builds a new slice, and swaps it in
// atomically rather than mutating a shared one in place, so a reader
// mid-scan never observes a half-built set.
package itemstore

import (
	"sync"

	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/kitscan"
	"github.com/nullstrike/launchkit/internal/winscan"
)

// BuiltIns is the static set of always-present built-in items (settings,
// quit, reload, and similar chrome) a concrete launcher front-end wires
// in. Kept as a plain slice so callers can build it however they like
// (a config file, a hardcoded list) without itemstore dictating shape.
var BuiltIns []*item.Item

// Store holds the current item snapshot plus a monotonic revision
// counter callers feed into list.CacheKey to memoize search results.
type Store struct {
	mu       sync.RWMutex
	items    []*item.Item
	revision uint64

	kitRoots []string
	winCache *winscan.Cache
}

// New builds a Store that scans kitRoots and, if winCache is non-nil,
// merges in its cached app/window items. Call Refresh to populate it.
func New(kitRoots []string, winCache *winscan.Cache) *Store {
	return &Store{kitRoots: kitRoots, winCache: winCache}
}

// Refresh rescans every source and swaps in the new item set. Safe to
// call from the filesystem watcher's refresh signal or a manual reload.
func (s *Store) Refresh() error {
	var items []*item.Item
	items = append(items, BuiltIns...)

	kits, err := kitscan.ScanRoots(s.kitRoots)
	if err != nil {
		return err
	}
	for _, kit := range kits {
		items = append(items, kit.Items...)
	}

	if s.winCache != nil {
		winItems, err := s.winCache.Items()
		if err != nil {
			return err
		}
		items = append(items, winItems...)
	}

	s.mu.Lock()
	s.items = items
	s.revision++
	s.mu.Unlock()
	return nil
}

// Items returns the current snapshot. Callers must not mutate it.
func (s *Store) Items() []*item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Revision returns the current snapshot's monotonic revision number.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
