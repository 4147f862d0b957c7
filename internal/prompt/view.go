// Package prompt implements the Prompt Session state machine: a typed
// view enum driven entirely by the child script's SET_PROMPT messages,
// plus the at-most-one-active-session rule.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/nullstrike/launchkit/internal/protocol"
)

// ViewKind discriminates the active prompt view. Exactly one of the
// pointer fields on View is populated, selected by Kind — the same sum
// type shape as item.Item.
type ViewKind int

const (
	ViewScriptList ViewKind = iota
	ViewArg
	ViewForm
	ViewChat
	ViewTerm
	ViewEditor
	ViewFilePicker
	ViewWebcam
	ViewConfirm
	ViewNaming
)

// wireView maps the "view" string a child sends over SET_PROMPT to a
// ViewKind.
var wireView = map[string]ViewKind{
	"list":        ViewScriptList,
	"arg":         ViewArg,
	"form":        ViewForm,
	"chat":        ViewChat,
	"term":        ViewTerm,
	"editor":      ViewEditor,
	"filepicker":  ViewFilePicker,
	"webcam":      ViewWebcam,
	"confirm":     ViewConfirm,
	"naming":      ViewNaming,
}

func (k ViewKind) String() string {
	for s, vk := range wireView {
		if vk == k {
			return s
		}
	}
	return "list"
}

// Choice is one selectable entry offered alongside an ArgPrompt's text
// field.
type Choice struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ArgPrompt is a single-field input with an optional choice list.
type ArgPrompt struct {
	Placeholder    string   `json:"placeholder"`
	Text           string   `json:"text"`
	Choices        []Choice `json:"choices,omitempty"`
	SelectedChoice string   `json:"selected_choice,omitempty"`
	Hint           string   `json:"hint,omitempty"`
}

// Field is one entry in a FormPrompt.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"` // "text" | "password" | "select" | "checkbox" | ...
	Value       string `json:"value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// FormPrompt is a multi-field form with one focused field at a time.
type FormPrompt struct {
	Fields     []Field `json:"fields"`
	FocusIndex int     `json:"focus_index"`
}

// ChatMessage is one turn in a ChatPrompt transcript.
type ChatMessage struct {
	Role string `json:"role"` // "user" | "assistant" | "system"
	Text string `json:"text"`
}

// ChatPrompt drives a conversational view fed by STREAM_CHUNK messages.
type ChatPrompt struct {
	Messages       []ChatMessage `json:"messages"`
	Model          string        `json:"model"`
	Models         []string      `json:"models,omitempty"`
	StreamingState string        `json:"streaming_state,omitempty"` // "idle" | "streaming" | "done"
}

// TermPrompt hosts an interactive PTY session owned by the child.
type TermPrompt struct {
	PTYSession string `json:"pty_session"`
}

// EditorPrompt is a free-text buffer with optional syntax awareness.
type EditorPrompt struct {
	Buffer   string `json:"buffer"`
	Language string `json:"language,omitempty"`
}

// FilePicker browses a directory tree starting at Cwd.
type FilePicker struct {
	Cwd           string `json:"cwd"`
	Filter        string `json:"filter,omitempty"`
	SelectedIndex int    `json:"selected_index"`
}

// WebcamView captures a still frame from Device.
type WebcamView struct {
	Device   string `json:"device"`
	Captured bool   `json:"captured,omitempty"`
}

// ConfirmDefault is which action a ConfirmPrompt highlights by default.
type ConfirmDefault int

const (
	ConfirmDefaultConfirm ConfirmDefault = iota
	ConfirmDefaultCancel
)

// ConfirmPrompt is a yes/no gate before a destructive or irreversible
// action.
type ConfirmPrompt struct {
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Default ConfirmDefault `json:"default"`
}

// UnmarshalJSON accepts the wire strings "confirm"/"cancel" for Default.
func (c *ConfirmPrompt) UnmarshalJSON(data []byte) error {
	type alias struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		Default string `json:"default"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.Title = a.Title
	c.Body = a.Body
	if a.Default == "cancel" {
		c.Default = ConfirmDefaultCancel
	} else {
		c.Default = ConfirmDefaultConfirm
	}
	return nil
}

// NamingPrompt asks for a single validated name (e.g. "save as").
type NamingPrompt struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	Validator string `json:"validator,omitempty"`
}

// View is the currently active prompt. Kind selects which pointer field
// is populated; ScriptList has none.
type View struct {
	Kind ViewKind

	Arg        *ArgPrompt
	Form       *FormPrompt
	Chat       *ChatPrompt
	Term       *TermPrompt
	Editor     *EditorPrompt
	FilePicker *FilePicker
	Webcam     *WebcamView
	Confirm    *ConfirmPrompt
	Naming     *NamingPrompt
}

// ScriptListView is the zero-value launcher-root view.
func ScriptListView() View { return View{Kind: ViewScriptList} }

// DecodeView turns a child's SET_PROMPT payload into a View, or an
// error if the view name is unrecognized or the spec doesn't match its
// declared shape.
func DecodeView(p protocol.SetPromptPayload) (View, error) {
	kind, ok := wireView[p.View]
	if !ok {
		return View{}, fmt.Errorf("prompt: unknown view %q", p.View)
	}

	v := View{Kind: kind}
	var err error
	switch kind {
	case ViewScriptList:
		// no payload
	case ViewArg:
		v.Arg = new(ArgPrompt)
		err = json.Unmarshal(p.Spec, v.Arg)
	case ViewForm:
		v.Form = new(FormPrompt)
		err = json.Unmarshal(p.Spec, v.Form)
	case ViewChat:
		v.Chat = new(ChatPrompt)
		err = json.Unmarshal(p.Spec, v.Chat)
	case ViewTerm:
		v.Term = new(TermPrompt)
		err = json.Unmarshal(p.Spec, v.Term)
	case ViewEditor:
		v.Editor = new(EditorPrompt)
		err = json.Unmarshal(p.Spec, v.Editor)
	case ViewFilePicker:
		v.FilePicker = new(FilePicker)
		err = json.Unmarshal(p.Spec, v.FilePicker)
	case ViewWebcam:
		v.Webcam = new(WebcamView)
		err = json.Unmarshal(p.Spec, v.Webcam)
	case ViewConfirm:
		v.Confirm = new(ConfirmPrompt)
		err = json.Unmarshal(p.Spec, v.Confirm)
	case ViewNaming:
		v.Naming = new(NamingPrompt)
		err = json.Unmarshal(p.Spec, v.Naming)
	}
	if err != nil {
		return View{}, fmt.Errorf("prompt: decode %q spec: %w", p.View, err)
	}
	return v, nil
}
