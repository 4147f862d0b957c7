package prompt

import (
	"encoding/json"
	"testing"

	"github.com/nullstrike/launchkit/internal/protocol"
)

func TestDecodeViewArg(t *testing.T) {
	v, err := DecodeView(protocol.SetPromptPayload{
		View: "arg",
		Spec: json.RawMessage(`{"placeholder":"name?","text":"","hint":"enter a name"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ViewArg || v.Arg == nil || v.Arg.Placeholder != "name?" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestDecodeViewConfirmDefaultsToConfirm(t *testing.T) {
	v, err := DecodeView(protocol.SetPromptPayload{
		View: "confirm",
		Spec: json.RawMessage(`{"title":"Delete?","body":"This cannot be undone."}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Confirm == nil || v.Confirm.Default != ConfirmDefaultConfirm {
		t.Fatalf("expected default Confirm, got %+v", v.Confirm)
	}
}

func TestDecodeViewConfirmExplicitCancel(t *testing.T) {
	v, err := DecodeView(protocol.SetPromptPayload{
		View: "confirm",
		Spec: json.RawMessage(`{"title":"Delete?","body":"...","default":"cancel"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Confirm.Default != ConfirmDefaultCancel {
		t.Fatalf("expected Cancel default, got %v", v.Confirm.Default)
	}
}

func TestDecodeViewUnknownKindErrors(t *testing.T) {
	_, err := DecodeView(protocol.SetPromptPayload{View: "bogus", Spec: json.RawMessage(`{}`)})
	if err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestDecodeViewFormFocusIndex(t *testing.T) {
	v, err := DecodeView(protocol.SetPromptPayload{
		View: "form",
		Spec: json.RawMessage(`{"fields":[{"name":"a","label":"A","type":"text"},{"name":"b","label":"B","type":"text"}],"focus_index":1}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Form == nil || len(v.Form.Fields) != 2 || v.Form.FocusIndex != 1 {
		t.Fatalf("unexpected form: %+v", v.Form)
	}
}

func TestScriptListViewHasNoPayload(t *testing.T) {
	v := ScriptListView()
	if v.Kind != ViewScriptList || v.Arg != nil || v.Chat != nil {
		t.Fatalf("expected empty ScriptList view, got %+v", v)
	}
}
