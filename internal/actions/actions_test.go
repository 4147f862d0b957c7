package actions

import "testing"

func sampleActions() []Action {
	return []Action{
		{ID: "edit", Title: "Edit Script", Shortcut: "cmd+e", CloseOnSubmit: true, HasAction: true},
		{ID: "duplicate", Title: "Duplicate Script", CloseOnSubmit: true, HasAction: true},
		{ID: "copy_path", Title: "Copy Path", Description: "Copies the file path", CloseOnSubmit: true, HasAction: true},
	}
}

func TestOpenRefusesEmptyActionSet(t *testing.T) {
	_, ok := Open("host", nil)
	if ok {
		t.Fatalf("expected Open to refuse an empty action set")
	}
}

func TestOpenRefusesDuplicateIDs(t *testing.T) {
	acts := []Action{{ID: "x", Title: "A"}, {ID: "x", Title: "B"}}
	_, ok := Open("host", acts)
	if ok {
		t.Fatalf("expected Open to refuse duplicate action ids")
	}
}

func TestFilterNarrowsAndResetsSelection(t *testing.T) {
	d, ok := Open("host", sampleActions())
	if !ok {
		t.Fatalf("expected Open to succeed")
	}
	for _, c := range "dup" {
		d.HandleChar(c)
	}
	visible := d.VisibleActions()
	if len(visible) != 1 || visible[0].ID != "duplicate" {
		t.Fatalf("expected only 'duplicate' to match 'dup', got %+v", visible)
	}
	id, ok := d.SelectedActionID()
	if !ok || id != "duplicate" {
		t.Fatalf("expected selection reset to the sole match, got %q ok=%v", id, ok)
	}
}

// A registered shortcut executes its action directly.
func TestShortcutExecutesAndClosesByDefault(t *testing.T) {
	d, ok := Open("host", sampleActions())
	if !ok {
		t.Fatalf("expected Open to succeed")
	}
	id, closed, executed := d.ExecuteShortcut("Cmd+E")
	if !executed || id != "edit" || !closed {
		t.Fatalf("expected cmd+e to execute 'edit' and close, got id=%q closed=%v executed=%v", id, closed, executed)
	}
	if d.IsOpen() {
		t.Fatalf("expected dialog closed after default-policy submit")
	}
}

func TestSubmitOnEmptyFilterResultIsNoop(t *testing.T) {
	d, ok := Open("host", sampleActions())
	if !ok {
		t.Fatalf("expected Open to succeed")
	}
	for _, c := range "zzzznomatch" {
		d.HandleChar(c)
	}
	if len(d.VisibleActions()) != 0 {
		t.Fatalf("expected no matches for a nonsense filter")
	}
	id, closed, executed := d.Submit()
	if executed || id != "" || closed {
		t.Fatalf("expected Submit to no-op when nothing is visible, got id=%q closed=%v executed=%v", id, closed, executed)
	}
}

func TestBackspaceRestoresWiderMatchSet(t *testing.T) {
	d, ok := Open("host", sampleActions())
	if !ok {
		t.Fatalf("expected Open to succeed")
	}
	for _, c := range "copy" {
		d.HandleChar(c)
	}
	if len(d.VisibleActions()) != 1 {
		t.Fatalf("expected narrowed match set")
	}
	d.HandleBackspace()
	d.HandleBackspace()
	d.HandleBackspace()
	d.HandleBackspace()
	if len(d.VisibleActions()) != 3 {
		t.Fatalf("expected all actions visible again after clearing filter, got %d", len(d.VisibleActions()))
	}
}

func TestCloseOnSubmitFalseKeepsDialogOpen(t *testing.T) {
	acts := []Action{{ID: "toggle", Title: "Toggle Model", CloseOnSubmit: false}}
	d, ok := Open("host", acts)
	if !ok {
		t.Fatalf("expected Open to succeed")
	}
	id, closed, executed := d.Submit()
	if !executed || id != "toggle" || closed {
		t.Fatalf("expected toggle submit to execute without closing, got id=%q closed=%v executed=%v", id, closed, executed)
	}
	if !d.IsOpen() {
		t.Fatalf("expected dialog to remain open")
	}
}
