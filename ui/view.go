package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nullstrike/launchkit/internal/cronspec"
	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/list"
	"github.com/nullstrike/launchkit/internal/prompt"
)

// maxNameWidth bounds how many display columns an item row's name gets
// before it's truncated, so a long script name can't push a row's
// shortcut hint off the edge of the terminal.
const maxNameWidth = 48

// View renders the launcher's current surface: the ranked ScriptList,
// or whichever Prompt Session view is active, with the Actions Dialog
// overlaid on top when open.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.active != nil {
		body = m.renderPromptView()
	} else {
		body = m.renderScriptList()
	}

	if m.dialog != nil {
		body = m.renderActionsDialog(body)
	}

	return body + "\n" + m.renderFooter()
}

func (m *Model) renderScriptList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(AppName))
	b.WriteString("\n")
	b.WriteString(searchBoxStyle.Render(m.filterInput.Value() + "█"))
	b.WriteString("\n")

	visible := m.rows
	if len(visible) > MaxVisibleRows {
		visible = visible[:MaxVisibleRows]
	}
	for i, row := range visible {
		if row.IsHeader {
			b.WriteString(sectionHeaderStyle.Render(row.Header))
			b.WriteString("\n")
			continue
		}
		line := renderItemRow(m.results[row.Index].Item)
		if i == m.cursor {
			line = listSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("no matches"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderItemRow formats one ranked item the way a launcher row is
// conventionally shown: a kind tag, the name, and a trailing shortcut
// hint when the item declares one.
func renderItemRow(it *item.Item) string {
	tag := strings.ToUpper(it.Kind.String())
	shortcut := declaredShortcut(it)
	line := fmt.Sprintf(" %-8s %s", tag, list.Truncate(it.Name, maxNameWidth))
	if hint := cronNextFireHint(it); hint != "" {
		line += "  " + dimStyle.Render(hint)
	}
	if shortcut != "" {
		line += "  " + shortcutStyle.Render(shortcut)
	}
	return line
}

// cronNextFireHint renders "next <time>" next to a script declaring
// is:cron, using the kit scanner's already-validated CronExpr (kitscan
// drops Triggers' TriggerCron entry and blanks CronExpr on a malformed
// expression, so Next is only ever called on a known-valid schedule).
func cronNextFireHint(it *item.Item) string {
	if it.Kind != item.KindScript || it.Script == nil {
		return ""
	}
	s := it.Script
	if !s.HasTrigger(item.TriggerCron) || s.CronExpr == "" {
		return ""
	}
	next := cronspec.Next(s.CronExpr, time.Now())
	if next.IsZero() {
		return ""
	}
	return "next " + next.Format("Jan 2 15:04")
}

// renderPromptView dispatches on the active Prompt Session's view kind
//; each branch renders just the fields that view carries.
func (m *Model) renderPromptView() string {
	v := m.view
	var content string
	switch v.Kind {
	case prompt.ViewArg:
		content = m.renderArgPrompt(v.Arg)
	case prompt.ViewForm:
		content = renderFormPrompt(v.Form)
	case prompt.ViewChat:
		content = renderChatPrompt(v.Chat)
	case prompt.ViewTerm:
		content = fmt.Sprintf("terminal session %s", v.Term.PTYSession)
	case prompt.ViewEditor:
		content = v.Editor.Buffer
	case prompt.ViewFilePicker:
		content = fmt.Sprintf("%s\nfilter: %s", v.FilePicker.Cwd, v.FilePicker.Filter)
	case prompt.ViewWebcam:
		content = fmt.Sprintf("webcam: %s", v.Webcam.Device)
	case prompt.ViewConfirm:
		content = renderConfirmPrompt(v.Confirm)
	case prompt.ViewNaming:
		content = m.renderNamingPrompt(v.Naming)
	default:
		content = ""
	}
	return promptStyle.Render(content)
}

func (m *Model) renderArgPrompt(a *prompt.ArgPrompt) string {
	var b strings.Builder
	if a.Hint != "" {
		b.WriteString(dimStyle.Render(a.Hint))
		b.WriteString("\n")
	}
	b.WriteString(a.Placeholder)
	b.WriteString(": ")
	b.WriteString(m.formInput.Value())
	b.WriteString("█")
	for _, c := range a.Choices {
		b.WriteString("\n  ")
		if c.ID == a.SelectedChoice {
			b.WriteString(listSelectedStyle.Render(c.Title))
		} else {
			b.WriteString(c.Title)
		}
	}
	return b.String()
}

func renderFormPrompt(f *prompt.FormPrompt) string {
	var b strings.Builder
	for i, field := range f.Fields {
		marker := "  "
		if i == f.FocusIndex {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%s: %s\n", marker, field.Label, field.Value)
	}
	return b.String()
}

func renderChatPrompt(c *prompt.ChatPrompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "model: %s\n", c.Model)
	for _, msg := range c.Messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Text)
	}
	if c.StreamingState == "streaming" {
		b.WriteString(dimStyle.Render("..."))
	}
	return b.String()
}

func renderConfirmPrompt(c *prompt.ConfirmPrompt) string {
	confirmLabel, cancelLabel := "Confirm", "Cancel"
	if c.Default == prompt.ConfirmDefaultConfirm {
		confirmLabel = listSelectedStyle.Render(confirmLabel)
	} else {
		cancelLabel = listSelectedStyle.Render(cancelLabel)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s   %s", c.Title, c.Body, confirmLabel, cancelLabel)
}

func (m *Model) renderNamingPrompt(n *prompt.NamingPrompt) string {
	return fmt.Sprintf("%s: %s█", n.Label, m.formInput.Value())
}

// renderActionsDialog overlays the filterable action list on top of
// whatever the host surface rendered.
func (m *Model) renderActionsDialog(background string) string {
	var b strings.Builder
	b.WriteString(searchBoxStyle.Render(m.dialog.Filter() + "█"))
	b.WriteString("\n")
	selectedID, _ := m.dialog.SelectedActionID()
	for _, a := range m.dialog.VisibleActions() {
		line := "  " + a.Title
		if a.Shortcut != "" {
			line += "  " + shortcutStyle.Render(a.Shortcut)
		}
		if a.ID == selectedID {
			line = listSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	dialog := dialogStyle.Render(b.String())
	return background + "\n" + dialog
}

func (m *Model) renderFooter() string {
	var parts []string
	if m.hud != "" {
		parts = append(parts, helpStyle.Render(m.hud))
	}
	if m.lastLog != "" {
		parts = append(parts, dimStyle.Render(m.lastLog))
	}
	if len(parts) == 0 {
		return helpStyle.Render("↑/↓ navigate · enter run · cmd+k actions · esc cancel")
	}
	return strings.Join(parts, "  ")
}
