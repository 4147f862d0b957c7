// Package shortcuts implements the global shortcut registration
// surface built-ins and scanned items bind through: first registration
// of a combo wins, and later duplicates are rejected so the caller can
// surface the conflict.
package shortcuts

import (
	"fmt"
	"sync"

	"github.com/nullstrike/launchkit/internal/keycombo"
	"github.com/nullstrike/launchkit/internal/launcherr"
)

// Registry maps normalized key combos to action ids.
type Registry struct {
	mu      sync.Mutex
	byCombo map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byCombo: make(map[string]string)}
}

// Register binds combo to actionID. The combo is normalized before
// lookup, so "Cmd+E" and "cmd+e" collide. A combo that is already
// bound returns a validation error naming the existing binding; the
// first registration stays in effect.
func (r *Registry) Register(combo, actionID string) error {
	norm := keycombo.NormalizeString(combo)
	if norm == "" {
		return launcherr.Validation("empty_shortcut", fmt.Errorf("combo %q normalizes to empty", combo))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byCombo[norm]; ok {
		return launcherr.Validation("shortcut_conflict", fmt.Errorf("%s is already bound to %s", norm, existing))
	}
	r.byCombo[norm] = actionID
	return nil
}

// Lookup resolves a combo to its bound action id.
func (r *Registry) Lookup(combo string) (actionID string, ok bool) {
	norm := keycombo.NormalizeString(combo)
	r.mu.Lock()
	defer r.mu.Unlock()
	actionID, ok = r.byCombo[norm]
	return actionID, ok
}

// Clear drops every binding, used before re-registering after an item
// rescan.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCombo = make(map[string]string)
}
