package inputrouter

import (
	"testing"

	"github.com/nullstrike/launchkit/internal/focus"
)

type fakeDialog struct {
	chars        []rune
	backspaces   int
	ups, downs   int
	submitted    bool
	submitID     string
	submitClose  bool
	submitExec   bool
	shortcutHit  string
	closedCalled bool
}

func (f *fakeDialog) HandleChar(r rune)  { f.chars = append(f.chars, r) }
func (f *fakeDialog) HandleBackspace()   { f.backspaces++ }
func (f *fakeDialog) MoveUp()            { f.ups++ }
func (f *fakeDialog) MoveDown()          { f.downs++ }
func (f *fakeDialog) Close()             { f.closedCalled = true }
func (f *fakeDialog) Submit() (string, bool, bool) {
	f.submitted = true
	return f.submitID, f.submitClose, f.submitExec
}
func (f *fakeDialog) ExecuteShortcut(combo string) (string, bool, bool) {
	f.shortcutHit = combo
	return "shortcut-action", true, true
}

type fakeView struct {
	tabShift        *bool
	listJumpKey     *SpecialKey
	atTop           bool
	consumedSpecial bool
	consumedRune    bool
	lastRune        rune
	supportsActions bool
}

func (f *fakeView) HandleTab(shift bool) bool {
	f.tabShift = &shift
	return true
}
func (f *fakeView) HandleListJump(key SpecialKey) bool {
	f.listJumpKey = &key
	return true
}
func (f *fakeView) HandleArrowUpAtTop() bool { return f.atTop }
func (f *fakeView) HandleSpecial(key SpecialKey) bool { return f.consumedSpecial }
func (f *fakeView) HandleRune(r rune) bool {
	f.lastRune = r
	return f.consumedRune
}
func (f *fakeView) SupportsActions() bool { return f.supportsActions }

func TestDispatchSkipsSecondaryWindowTarget(t *testing.T) {
	r := New(focus.New(focus.MainFilter))
	out := r.Dispatch(Event{TargetsSecondaryWindow: true, HasRune: true, Rune: 'x'}, nil, &fakeView{}, nil, nil)
	if out.Consumed {
		t.Fatalf("expected no consumption for secondary-window target")
	}
}

func TestDispatchRoutesToDialogWhenOnTop(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	fc.Push(focus.ActionsDialog("host"))
	r := New(fc)
	d := &fakeDialog{}

	out := r.Dispatch(Event{HasRune: true, Rune: 'a'}, d, &fakeView{}, nil, nil)
	if !out.Consumed || len(d.chars) != 1 || d.chars[0] != 'a' {
		t.Fatalf("expected dialog to receive char, got %+v, dialog=%+v", out, d)
	}
}

func TestDispatchEscapeClosesDialog(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	fc.Push(focus.ActionsDialog("host"))
	r := New(fc)
	d := &fakeDialog{}

	out := r.Dispatch(Event{Special: KeyEscape}, d, &fakeView{}, nil, nil)
	if !out.Consumed || !out.DialogClosed || !d.closedCalled {
		t.Fatalf("expected dialog closed, got %+v", out)
	}
}

func TestDispatchCmdKOpensDialogWhenViewSupportsActions(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{supportsActions: true}
	opened := false

	out := r.Dispatch(Event{Cmd: true, HasRune: true, Rune: 'k'}, nil, v, func() { opened = true }, nil)
	if !out.Consumed || !out.OpenedActionsDialog || !opened {
		t.Fatalf("expected Cmd+K to open dialog, got %+v", out)
	}
}

func TestDispatchCmdKNoopWhenViewHasNoActions(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{supportsActions: false}
	opened := false

	out := r.Dispatch(Event{Cmd: true, HasRune: true, Rune: 'k'}, nil, v, func() { opened = true }, nil)
	if !out.Consumed || out.OpenedActionsDialog || opened {
		t.Fatalf("expected noop Cmd+K, got %+v", out)
	}
}

func TestDispatchCmdKTogglesOpenDialogClosed(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	fc.Push(focus.ActionsDialog("host"))
	r := New(fc)
	d := &fakeDialog{}

	out := r.Dispatch(Event{Cmd: true, HasRune: true, Rune: 'k'}, d, &fakeView{supportsActions: true}, nil, nil)
	if !out.Consumed || !out.DialogClosed || !d.closedCalled {
		t.Fatalf("expected Cmd+K to close the open dialog, got %+v dialog=%+v", out, d)
	}
	if out.OpenedActionsDialog {
		t.Fatalf("expected toggle, not a re-open, got %+v", out)
	}
}

func TestDispatchCmdShiftKInvokesAddShortcutBypassingDialog(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{supportsActions: true}
	invoked := false

	out := r.Dispatch(Event{Cmd: true, Shift: true, HasRune: true, Rune: 'k'}, nil, v, nil, func() { invoked = true })
	if !out.Consumed || !out.AddShortcutInvoked || !invoked {
		t.Fatalf("expected Cmd+Shift+K to invoke add-shortcut, got %+v", out)
	}
}

func TestDispatchArrowUpAtTopConsultsHistory(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{atTop: true}

	out := r.Dispatch(Event{Special: KeyUp}, nil, v, nil, nil)
	if !out.Consumed || !out.HistoryRecall {
		t.Fatalf("expected history recall, got %+v", out)
	}
}

func TestDispatchArrowUpNotAtTopFallsThroughToSpecial(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{atTop: false, consumedSpecial: true}

	out := r.Dispatch(Event{Special: KeyUp}, nil, v, nil, nil)
	if !out.Consumed || out.HistoryRecall {
		t.Fatalf("expected plain selection move, got %+v", out)
	}
}

func TestDispatchHomeEndDelegatesToListJump(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{}

	out := r.Dispatch(Event{Special: KeyHome}, nil, v, nil, nil)
	if !out.Consumed || v.listJumpKey == nil || *v.listJumpKey != KeyHome {
		t.Fatalf("expected Home delegated to HandleListJump, got %+v", out)
	}
}

func TestDispatchUnconsumedRuneFlowsToTextInput(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	r := New(fc)
	v := &fakeView{consumedRune: false}

	out := r.Dispatch(Event{HasRune: true, Rune: 'z'}, nil, v, nil, nil)
	if out.Consumed {
		t.Fatalf("expected unconsumed rune to flow through, got %+v", out)
	}
	if v.lastRune != 'z' {
		t.Fatalf("expected view to have seen the rune, got %q", v.lastRune)
	}
}

func TestDispatchDialogShortcutLookupForModifiedKey(t *testing.T) {
	fc := focus.New(focus.MainFilter)
	fc.Push(focus.ActionsDialog("host"))
	r := New(fc)
	d := &fakeDialog{}

	out := r.Dispatch(Event{Cmd: true, HasRune: true, Rune: 'e'}, d, &fakeView{}, nil, nil)
	if !out.Consumed || out.DialogActionID != "shortcut-action" || d.shortcutHit != "cmd+e" {
		t.Fatalf("expected shortcut lookup for cmd+e, got %+v dialog=%+v", out, d)
	}
}
