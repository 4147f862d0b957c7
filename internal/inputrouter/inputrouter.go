// Package inputrouter implements the single process-global keystroke
// interceptor: it consults the Focus Coordinator's top-of-stack and
// routes each keystroke to the Actions Dialog or to the current prompt
// view, without owning any UI state itself. It is a pure dispatcher
// over small interfaces the UI layer implements, returning an Outcome
// the caller acts on.
package inputrouter

import (
	"github.com/nullstrike/launchkit/internal/focus"
	"github.com/nullstrike/launchkit/internal/keycombo"
)

// SpecialKey enumerates the non-printable keys the router treats
// specially.
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyShiftTab
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Event is one keystroke, already decoded from the terminal/UI runtime
// into the shape the router needs to make a routing decision.
type Event struct {
	Special SpecialKey
	Rune    rune
	HasRune bool

	Cmd   bool
	Shift bool
	Ctrl  bool
	Alt   bool

	// TargetsSecondaryWindow is true when the keystroke was captured by
	// a window that owns its own handling (notes, AI, actions) rather
	// than the main launcher surface.
	TargetsSecondaryWindow bool
}

// combo renders ev as a normalized keycombo string, for shortcut-map
// lookups against an open Actions Dialog.
func (ev Event) combo() string {
	var mods []keycombo.Modifier
	if ev.Cmd {
		mods = append(mods, keycombo.Cmd)
	}
	if ev.Ctrl {
		mods = append(mods, keycombo.Ctrl)
	}
	if ev.Alt {
		mods = append(mods, keycombo.Alt)
	}
	if ev.Shift {
		mods = append(mods, keycombo.Shift)
	}
	base := specialBase(ev.Special)
	if base == "" && ev.HasRune {
		base = string(ev.Rune)
	}
	if base == "" {
		return ""
	}
	return keycombo.Normalize(keycombo.New(base, mods...))
}

func specialBase(k SpecialKey) string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyBackspace:
		return "backspace"
	case KeyTab:
		return "tab"
	case KeyShiftTab:
		return "tab"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyPageUp:
		return "pageup"
	case KeyPageDown:
		return "pagedown"
	default:
		return ""
	}
}

// DialogOwner is the subset of *actions.Dialog's behavior the router
// drives directly while it sits on top of the Focus Overlay Stack.
type DialogOwner interface {
	HandleChar(r rune)
	HandleBackspace()
	MoveUp()
	MoveDown()
	Submit() (actionID string, closeOnSubmit bool, executed bool)
	ExecuteShortcut(combo string) (actionID string, closeOnSubmit bool, executed bool)
	Close()
}

// ViewHandler is implemented by whatever owns the current prompt/view's
// keystroke handling (ScriptList, ArgPrompt, FilePicker, ...).
type ViewHandler interface {
	// HandleTab handles Tab/Shift+Tab: FilePicker
	// directory enter/exit, ScriptList-with-filter "Ask AI"/"Generate
	// script" delegation, or wizard traversal. Returns consumed.
	HandleTab(shift bool) bool
	// HandleListJump handles Home/End/PageUp/PageDown, skipping section
	// headers; views with no list (a bare text field) return false.
	HandleListJump(key SpecialKey) bool
	// HandleArrowUpAtTop is consulted only for an Up keystroke; it
	// reports whether the view's selection is already at the top row
	// and, if so, whether it consumed the key for input-history recall.
	// A view that isn't list-backed, or whose selection isn't at the
	// top, returns false so the router falls through to ordinary
	// selection-move handling.
	HandleArrowUpAtTop() bool
	// HandleSpecial is the catch-all for the remaining special keys
	// (Enter, Escape, Backspace, Up/Down once not at-top).
	HandleSpecial(key SpecialKey) bool
	// HandleRune handles one printable character typed into the view.
	HandleRune(r rune) bool
	// SupportsActions reports whether Cmd+K should toggle an Actions
	// Dialog for this view.
	SupportsActions() bool
}

// Outcome describes what a Dispatch call did, for the caller to react
// to (open a dialog, record a history entry, etc).
type Outcome struct {
	Consumed            bool
	OpenedActionsDialog bool
	AddShortcutInvoked  bool
	DialogActionID      string
	DialogClosed        bool
	HistoryRecall       bool
}

// Router is the stateless dispatcher: it owns no session state itself,
// only a reference to the Focus Coordinator it consults on every
// keystroke.
type Router struct {
	fc *focus.Coordinator
}

// New builds a Router over the given Focus Coordinator.
func New(fc *focus.Coordinator) *Router {
	return &Router{fc: fc}
}

// Dispatch routes one keystroke's five steps.
// onOpenActionsDialog and onAddShortcut are invoked when Cmd+K /
// Cmd+Shift+K should take effect for the current view; the router
// itself does not construct dialogs.
func (r *Router) Dispatch(ev Event, dialog DialogOwner, view ViewHandler, onOpenActionsDialog, onAddShortcut func()) Outcome {
	if ev.TargetsSecondaryWindow {
		return Outcome{}
	}

	top := r.fc.Top()
	dialogOnTop := top.Kind == "actions_dialog" && dialog != nil

	if ev.Cmd && ev.HasRune && (ev.Rune == 'k' || ev.Rune == 'K') {
		if ev.Shift {
			if onAddShortcut != nil {
				onAddShortcut()
			}
			return Outcome{Consumed: true, AddShortcutInvoked: true}
		}
		// Toggle: Cmd+K with the dialog already open closes it.
		if dialogOnTop {
			dialog.Close()
			return Outcome{Consumed: true, DialogClosed: true}
		}
		if view != nil && view.SupportsActions() {
			if onOpenActionsDialog != nil {
				onOpenActionsDialog()
			}
			return Outcome{Consumed: true, OpenedActionsDialog: true}
		}
		return Outcome{Consumed: true}
	}

	if dialogOnTop {
		return r.dispatchDialog(ev, dialog)
	}

	if view == nil {
		return Outcome{}
	}

	if ev.Special == KeyTab || ev.Special == KeyShiftTab {
		return Outcome{Consumed: view.HandleTab(ev.Special == KeyShiftTab)}
	}

	if ev.Special == KeyHome || ev.Special == KeyEnd || ev.Special == KeyPageUp || ev.Special == KeyPageDown {
		return Outcome{Consumed: view.HandleListJump(ev.Special)}
	}

	if ev.Special == KeyUp && view.HandleArrowUpAtTop() {
		return Outcome{Consumed: true, HistoryRecall: true}
	}

	if ev.HasRune {
		if view.HandleRune(ev.Rune) {
			return Outcome{Consumed: true}
		}
		// step 5: falls through to the focused text input, if any.
		return Outcome{}
	}

	return Outcome{Consumed: view.HandleSpecial(ev.Special)}
}

// dispatchDialog routes a keystroke to the open dialog: arrows, Enter,
// Escape, Backspace, and printable chars go to the dialog directly; any
// other keystroke is first checked against the dialog's shortcut map.
func (r *Router) dispatchDialog(ev Event, dialog DialogOwner) Outcome {
	switch ev.Special {
	case KeyUp:
		dialog.MoveUp()
		return Outcome{Consumed: true}
	case KeyDown:
		dialog.MoveDown()
		return Outcome{Consumed: true}
	case KeyEnter:
		id, closed, executed := dialog.Submit()
		return Outcome{Consumed: executed, DialogActionID: id, DialogClosed: closed}
	case KeyEscape:
		dialog.Close()
		return Outcome{Consumed: true, DialogClosed: true}
	case KeyBackspace:
		dialog.HandleBackspace()
		return Outcome{Consumed: true}
	}

	if ev.HasRune && !ev.Cmd && !ev.Ctrl && !ev.Alt {
		dialog.HandleChar(ev.Rune)
		return Outcome{Consumed: true}
	}

	if combo := ev.combo(); combo != "" {
		id, closed, executed := dialog.ExecuteShortcut(combo)
		if executed {
			return Outcome{Consumed: true, DialogActionID: id, DialogClosed: closed}
		}
	}

	return Outcome{}
}
