// Package item defines the typed records the launcher searches, ranks,
// and runs: scripts, scriptlets, built-ins, apps, live windows, and the
// catch-all fallback entries a query can synthesize.
//
// Item is modeled as a closed discriminant (Kind) plus per-variant
// payload fields, dispatched with a switch rather than an interface
// hierarchy.
package item

import "fmt"

// Kind discriminates which payload fields on an Item are populated.
type Kind int

const (
	KindScript Kind = iota
	KindScriptlet
	KindBuiltIn
	KindApp
	KindWindow
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindScriptlet:
		return "scriptlet"
	case KindBuiltIn:
		return "builtin"
	case KindApp:
		return "app"
	case KindWindow:
		return "window"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// SourceOrder is the cross-source tie-break order:
// BuiltIn < App < Window < Script < Scriptlet < Agent < Fallback.
// ScriptKindAgent is a Script sub-kind (see ScriptSubKind), so "Agent"
// slots in between Scriptlet and Fallback at the Script source-order
// position plus one.
func (k Kind) SourceOrder() int {
	switch k {
	case KindBuiltIn:
		return 0
	case KindApp:
		return 1
	case KindWindow:
		return 2
	case KindScript:
		return 3
	case KindScriptlet:
		return 4
	case KindFallback:
		return 6
	default:
		return 5
	}
}

// ScriptSubKind further discriminates a Script item; agents and builtins
// implemented as scripts share the Script payload shape but run through
// different executors.
type ScriptSubKind int

const (
	ScriptKindScript ScriptSubKind = iota
	ScriptKindSnippet
	ScriptKindAgent
	ScriptKindBuiltIn
)

// Trigger is a declared automatic-execution mode for a Script.
type Trigger int

const (
	TriggerCron Trigger = iota
	TriggerBackground
	TriggerWatch
)

func (t Trigger) String() string {
	switch t {
	case TriggerCron:
		return "cron"
	case TriggerBackground:
		return "bg"
	case TriggerWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// ConfirmPolicy gates a BuiltIn behind a confirmation prompt.
type ConfirmPolicy int

const (
	ConfirmNone ConfirmPolicy = iota
	ConfirmRequired
	ConfirmDangerous
)

// Script is the payload for KindScript items.
type Script struct {
	Path        string
	SubKind     ScriptSubKind
	Tags        []string
	Author      string
	Kit         string
	Triggers    []Trigger
	CronExpr    string // set when Triggers contains TriggerCron
	Shortcut    string
	Alias       string
	ActionVerb  string
	Frontmatter map[string]string
}

// HasTrigger reports whether the script declares trigger t.
func (s *Script) HasTrigger(t Trigger) bool {
	for _, got := range s.Triggers {
		if got == t {
			return true
		}
	}
	return false
}

// HasTag reports a case-insensitive tag match.
func (s *Script) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if eqFold(t, tag) {
			return true
		}
	}
	return false
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Scriptlet is the payload for KindScriptlet items.
type Scriptlet struct {
	BundlePath     string
	Tool           string
	Inputs         []string
	DefinedActions []string
	Shortcut       string
	Alias          string
}

// BuiltIn is the payload for KindBuiltIn items.
type BuiltIn struct {
	ID       string
	Category string
	Shortcut string
	Confirm  ConfirmPolicy
}

// App is the payload for KindApp items.
type App struct {
	Path string
	Icon string
}

// Window is the payload for KindWindow items.
type Window struct {
	OSID  string
	App   string
	Title string
	PID   int
	X, Y  int
	W, H  int
}

// Fallback is the payload for KindFallback items: the single unified
// mechanism for "nothing else matched, but here's what the query could
// still do."
type Fallback struct {
	ID       string
	Label    string
	Priority int
	Query    string
}

// Item is the sum-type record the Search/Rank Engine and Grouping
// Builder operate on. Exactly one of Script/Scriptlet/BuiltIn/App/
// Window/Fallback is non-nil, selected by Kind.
type Item struct {
	Name string
	Path string
	Kind Kind

	Script    *Script
	Scriptlet *Scriptlet
	BuiltIn   *BuiltIn
	App       *App
	Window    *Window
	Fallback  *Fallback
}

// Validate enforces the Item invariants: non-empty name, non-empty
// path, and a discriminant whose payload is actually populated. The path
// is not checked for being absolute.
func (it *Item) Validate() error {
	if it.Name == "" {
		return fmt.Errorf("item: name must not be empty")
	}
	if it.Path == "" {
		return fmt.Errorf("item: path must not be empty")
	}
	switch it.Kind {
	case KindScript:
		if it.Script == nil {
			return fmt.Errorf("item %q: kind=script requires Script payload", it.Name)
		}
	case KindScriptlet:
		if it.Scriptlet == nil {
			return fmt.Errorf("item %q: kind=scriptlet requires Scriptlet payload", it.Name)
		}
	case KindBuiltIn:
		if it.BuiltIn == nil {
			return fmt.Errorf("item %q: kind=builtin requires BuiltIn payload", it.Name)
		}
	case KindApp:
		if it.App == nil {
			return fmt.Errorf("item %q: kind=app requires App payload", it.Name)
		}
	case KindWindow:
		if it.Window == nil {
			return fmt.Errorf("item %q: kind=window requires Window payload", it.Name)
		}
	case KindFallback:
		if it.Fallback == nil {
			return fmt.Errorf("item %q: kind=fallback requires Fallback payload", it.Name)
		}
	default:
		return fmt.Errorf("item %q: unknown kind %v", it.Name, it.Kind)
	}
	return nil
}

// IsAgent reports whether this item is a Script whose sub-kind is Agent
// — the Source-order tie-break places agents between
// Scriptlet and Fallback.
func (it *Item) IsAgent() bool {
	return it.Kind == KindScript && it.Script != nil && it.Script.SubKind == ScriptKindAgent
}

// sourceOrder returns the tie-break order, accounting for the Agent
// sub-kind carve-out.
func (it *Item) sourceOrder() int {
	if it.IsAgent() {
		return 5
	}
	return it.Kind.SourceOrder()
}

// SourceOrder is the exported tie-break key used by the Search Engine.
func (it *Item) SourceOrder() int { return it.sourceOrder() }

// Set is a loaded collection of items plus a monotonically increasing
// revision used as a cache key by the Search and Grouping layers.
type Set struct {
	Items    []*Item
	Revision uint64
}

// Key uniquely identifies a script or scriptlet item by (kind, path);
// ValidateSet enforces that the pair is unique across the loaded set.
type Key struct {
	Kind Kind
	Path string
}

// KeyOf returns the identity key for it.
func KeyOf(it *Item) Key { return Key{Kind: it.Kind, Path: it.Path} }

// ValidateSet checks the set-wide (kind, path) uniqueness invariant for
// scripts and scriptlets.
func ValidateSet(items []*Item) error {
	seen := make(map[Key]struct{}, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
		if it.Kind != KindScript && it.Kind != KindScriptlet {
			continue
		}
		k := KeyOf(it)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("item: duplicate (kind=%v, path=%s)", k.Kind, k.Path)
		}
		seen[k] = struct{}{}
	}
	return nil
}
