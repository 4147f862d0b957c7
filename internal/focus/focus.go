// Package focus implements a LIFO record of which logical surface owns
// the keyboard, so opening an overlay (Actions Dialog, Shortcut
// Recorder, Alias Input, ...) from any prompt deterministically
// restores the prior surface on close. Centralizing this into one real
// stack means nested overlays (Actions on top of an Arg prompt on top
// of the list) don't need every call site to thread its own
// "previous state" field.
package focus

import "github.com/google/uuid"

// Target identifies a logical surface that can own the keyboard.
type Target struct {
	Kind string // "main_filter", "arg_prompt", "chat_prompt", "actions_dialog", "shortcut_recorder", "alias_input", ...
	Host string // opaque identifier of the specific prompt/dialog instance, if any
}

// MainFilter is the base target: the root ScriptList's filter field.
var MainFilter = Target{Kind: "main_filter"}

// ActionsDialog builds a Target for an Actions Dialog overlay hosted by host.
func ActionsDialog(host string) Target { return Target{Kind: "actions_dialog", Host: host} }

// ShortcutRecorder is the overlay target used while capturing a new shortcut.
var ShortcutRecorder = Target{Kind: "shortcut_recorder"}

// AliasInput is the overlay target used while capturing a new alias.
var AliasInput = Target{Kind: "alias_input"}

// Token identifies one push/pop pair so pop can no-op on a stale call.
type Token string

type frame struct {
	token    Token
	target   Target
	isDialog bool
}

// Coordinator owns the overlay stack. It is not safe for concurrent
// use — all focus transitions happen on the single UI-owning goroutine.
type Coordinator struct {
	base  Target // the current base view's natural focus, e.g. MainFilter
	stack []frame
}

// New creates a Coordinator whose base (bottom-of-stack) focus is base.
func New(base Target) *Coordinator {
	return &Coordinator{base: base}
}

// SetBase updates the base view's natural focus target, used when the
// underlying prompt view changes entirely (e.g. ScriptList -> ArgPrompt)
// rather than via an overlay push.
func (c *Coordinator) SetBase(base Target) {
	c.base = base
}

// Top returns the current owner of the keyboard: the top of the overlay
// stack, or the base target if the stack is empty.
func (c *Coordinator) Top() Target {
	if len(c.stack) == 0 {
		return c.base
	}
	return c.stack[len(c.stack)-1].target
}

// Push pushes a new overlay on top, returning a token that must be
// passed to Pop to close it. Only one ActionsDialog overlay may be on
// the stack at a time; pushing another ActionsDialog target while one
// is present is a no-op that returns the existing token.
func (c *Coordinator) Push(target Target) Token {
	if target.Kind == "actions_dialog" {
		for _, f := range c.stack {
			if f.target.Kind == "actions_dialog" {
				return f.token
			}
		}
	}
	tok := Token(uuid.NewString())
	c.stack = append(c.stack, frame{
		token:    tok,
		target:   target,
		isDialog: target.Kind == "actions_dialog",
	})
	return tok
}

// Pop removes the top frame, restoring whatever sits beneath it (the
// next overlay down, or the base target). If the stack's top frame does
// not match token, Pop is a no-op — this guards against double-close
// races rather than panicking or corrupting the stack.
func (c *Coordinator) Pop(token Token) {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top.token != token {
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
}

// ForceRestoreMainFilter pops every overlay, used on unexpected state
// recovery.
func (c *Coordinator) ForceRestoreMainFilter() {
	c.stack = nil
	c.base = MainFilter
}

// HasActionsDialog reports whether an Actions Dialog overlay is
// currently on the stack, anywhere (not just at the top).
func (c *Coordinator) HasActionsDialog() bool {
	for _, f := range c.stack {
		if f.isDialog {
			return true
		}
	}
	return false
}

// Depth returns the number of overlays currently pushed.
func (c *Coordinator) Depth() int {
	return len(c.stack)
}
