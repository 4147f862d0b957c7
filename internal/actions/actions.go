// Package actions implements the Actions Dialog state machine: a
// virtualized, filterable list of Actions with its own shortcut map,
// shared by every prompt type via the Focus Coordinator as one reusable
// overlay rather than a separate filter+cursor state machine per host.
package actions

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nullstrike/launchkit/internal/keycombo"
)

// Category groups an Action by which prompt kind it applies to.
type Category int

const (
	CategoryScriptContext Category = iota
	CategoryTerminal
	CategoryChat
	CategoryWebcam
	CategoryGeneral
)

// Action is one entry a dialog instance can present.
type Action struct {
	ID            string
	Title         string
	Description   string
	Shortcut      string // normalized keycombo string, e.g. "cmd+e"; empty if none
	Icon          string
	Section       string
	Category      Category
	HasAction     bool
	CloseOnSubmit bool
	Value         string

	titleLower       string
	descriptionLower string
	shortcutLower    string
}

func (a *Action) precompute() {
	a.titleLower = strings.ToLower(a.Title)
	a.descriptionLower = strings.ToLower(a.Description)
	a.shortcutLower = strings.ToLower(a.Shortcut)
}

// state is the dialog's closed state machine:
// Closed -> Open(filter="") -> Open(filter=q) -> Executing(action) -> Closed.
type state int

const (
	stateClosed state = iota
	stateOpen
	stateExecuting
)

// Dialog is one instance of the Actions overlay.
type Dialog struct {
	host    string
	state   state
	actions []Action
	filter  string

	filtered []int // indices into actions, in display order
	selected int   // index into filtered, or -1

	shortcuts map[string]string // normalized combo -> action id

	closePolicy bool // selectedCloseOnSubmit of the action currently executing
	executingID string
}

// Open constructs a Dialog for host with the given action set and
// returns (dialog, true). An empty action set refuses to open — ok is
// false and the returned Dialog is unusable.
func Open(host string, acts []Action) (*Dialog, bool) {
	if len(acts) == 0 {
		return nil, false
	}
	if !idsAndShortcutsUnique(acts) {
		return nil, false
	}

	d := &Dialog{
		host:      host,
		state:     stateOpen,
		actions:   make([]Action, len(acts)),
		shortcuts: make(map[string]string, len(acts)),
	}
	copy(d.actions, acts)
	for i := range d.actions {
		d.actions[i].precompute()
		if d.actions[i].Shortcut != "" {
			norm := keycombo.NormalizeString(d.actions[i].Shortcut)
			d.shortcuts[norm] = d.actions[i].ID
		}
	}
	d.refilter()
	return d, true
}

// idsAndShortcutsUnique enforces the per-dialog invariants: Action.id
// is unique within the instance, and any non-empty shortcut is unique
// within the instance too.
func idsAndShortcutsUnique(acts []Action) bool {
	ids := make(map[string]struct{}, len(acts))
	shortcuts := make(map[string]struct{}, len(acts))
	for _, a := range acts {
		if _, dup := ids[a.ID]; dup {
			return false
		}
		ids[a.ID] = struct{}{}
		if a.Shortcut == "" {
			continue
		}
		norm := keycombo.NormalizeString(a.Shortcut)
		if _, dup := shortcuts[norm]; dup {
			return false
		}
		shortcuts[norm] = struct{}{}
	}
	return true
}

// Host returns the identifier of the prompt that opened this dialog.
func (d *Dialog) Host() string { return d.host }

// IsOpen reports whether the dialog is currently showing (Open or
// Executing states both count as open for rendering purposes).
func (d *Dialog) IsOpen() bool { return d.state != stateClosed }

// Filter returns the current filter text.
func (d *Dialog) Filter() string { return d.filter }

// HandleChar appends c to the filter, re-scores, and resets selection to
// the first match.
func (d *Dialog) HandleChar(c rune) {
	d.filter += string(c)
	d.refilter()
}

// HandleBackspace removes the last rune of the filter, re-scores, and
// resets selection to the first match.
func (d *Dialog) HandleBackspace() {
	if d.filter == "" {
		return
	}
	r := []rune(d.filter)
	d.filter = string(r[:len(r)-1])
	d.refilter()
}

func (d *Dialog) refilter() {
	if d.filter == "" {
		d.filtered = make([]int, len(d.actions))
		for i := range d.actions {
			d.filtered[i] = i
		}
	} else {
		type scored struct {
			idx   int
			score int
		}
		var hits []scored
		ql := strings.ToLower(d.filter)
		for i, a := range d.actions {
			s := scoreAction(ql, &a)
			if s > 0 {
				hits = append(hits, scored{idx: i, score: s})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
		d.filtered = make([]int, len(hits))
		for i, h := range hits {
			d.filtered[i] = h.idx
		}
	}

	if len(d.filtered) == 0 {
		d.selected = -1
	} else {
		d.selected = 0
	}
}

// scoreAction mirrors the search engine's tier-1 substring scoring,
// applied to an Action's title/description/shortcut fields.
func scoreAction(queryLower string, a *Action) int {
	var score int
	switch {
	case strings.HasPrefix(a.titleLower, queryLower):
		score += 100
	case strings.Contains(a.titleLower, queryLower):
		score += 50
	}
	if a.descriptionLower != "" && strings.Contains(a.descriptionLower, queryLower) {
		score += 15
	}
	if a.shortcutLower != "" && strings.Contains(a.shortcutLower, queryLower) {
		score += 10
	}
	if score == 0 && len([]rune(queryLower)) >= 2 {
		matches := fuzzy.Find(queryLower, []string{a.titleLower})
		if len(matches) > 0 {
			score += 25
		}
	}
	return score
}

// MoveDown advances the selection to the next filtered row, clamping at
// the end.
func (d *Dialog) MoveDown() {
	if len(d.filtered) == 0 {
		return
	}
	if d.selected < len(d.filtered)-1 {
		d.selected++
	}
}

// MoveUp moves the selection to the previous filtered row, clamping at
// the start.
func (d *Dialog) MoveUp() {
	if len(d.filtered) == 0 {
		return
	}
	if d.selected > 0 {
		d.selected--
	}
}

// VisibleActions returns the currently filtered actions in display order.
func (d *Dialog) VisibleActions() []Action {
	out := make([]Action, len(d.filtered))
	for i, idx := range d.filtered {
		out[i] = d.actions[idx]
	}
	return out
}

// SelectedActionID returns the id of the selected row, or ("", false) if
// every action has been filtered out.
func (d *Dialog) SelectedActionID() (string, bool) {
	if d.selected < 0 || d.selected >= len(d.filtered) {
		return "", false
	}
	return d.actions[d.filtered[d.selected]].ID, true
}

// Submit executes the selected action (if any) via Enter. It returns the
// action id executed and whether the dialog should close as a result.
// A no-op (empty filtered set) returns ("", false, false).
func (d *Dialog) Submit() (actionID string, closeOnSubmit bool, executed bool) {
	id, ok := d.SelectedActionID()
	if !ok {
		return "", false, false
	}
	var close bool
	for _, a := range d.actions {
		if a.ID == id {
			close = a.CloseOnSubmit
			break
		}
	}
	d.state = stateExecuting
	d.executingID = id
	d.closePolicy = close
	if close {
		d.state = stateClosed
	} else {
		d.state = stateOpen
	}
	return id, close, true
}

// LookupShortcut resolves a normalized key combo to an action id, for
// the host's shortcut routing.
func (d *Dialog) LookupShortcut(combo string) (actionID string, ok bool) {
	id, ok := d.shortcuts[keycombo.NormalizeString(combo)]
	return id, ok
}

// ExecuteShortcut looks up combo and, if bound, behaves like Submit but
// against that specific action regardless of current selection/filter.
func (d *Dialog) ExecuteShortcut(combo string) (actionID string, closeOnSubmit bool, executed bool) {
	id, ok := d.LookupShortcut(combo)
	if !ok {
		return "", false, false
	}
	var close bool
	for _, a := range d.actions {
		if a.ID == id {
			close = a.CloseOnSubmit
			break
		}
	}
	if close {
		d.state = stateClosed
	}
	d.executingID = id
	d.closePolicy = close
	return id, close, true
}

// Close closes the dialog unconditionally. The first Escape while open
// closes the dialog; routing a second Escape to the host (rather than
// calling Close again) is the host's responsibility
func (d *Dialog) Close() {
	d.state = stateClosed
}
