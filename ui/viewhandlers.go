package ui

import (
	"unicode"

	"github.com/nullstrike/launchkit/internal/inputrouter"
	"github.com/nullstrike/launchkit/internal/prompt"
)

// currentViewHandler returns the inputrouter.ViewHandler for whatever is
// currently on top: the ranked ScriptList while no child is running, or
// a generic prompt-view handler once a Prompt Session has taken over.
func (m *Model) currentViewHandler() inputrouter.ViewHandler {
	if m.active != nil {
		return promptViewHandler{m: m}
	}
	return scriptListHandler{m: m}
}

// scriptListHandler drives the ranked list: typing narrows the filter,
// arrows move the selection, Enter launches the selected item.
type scriptListHandler struct{ m *Model }

func (h scriptListHandler) HandleTab(shift bool) bool { return false }

func (h scriptListHandler) HandleListJump(key inputrouter.SpecialKey) bool {
	m := h.m
	switch key {
	case inputrouter.KeyHome:
		m.cursor = firstItemRow(m.rows)
	case inputrouter.KeyEnd:
		m.cursor = lastItemRow(m.rows)
	case inputrouter.KeyPageUp:
		m.moveCursor(-MaxVisibleRows)
	case inputrouter.KeyPageDown:
		m.moveCursor(MaxVisibleRows)
	default:
		return false
	}
	return true
}

func (h scriptListHandler) HandleArrowUpAtTop() bool {
	return h.m.cursor == firstItemRow(h.m.rows) && h.m.filterInput.Value() == ""
}

func (h scriptListHandler) HandleSpecial(key inputrouter.SpecialKey) bool {
	m := h.m
	switch key {
	case inputrouter.KeyUp:
		m.moveCursor(-1)
		return true
	case inputrouter.KeyDown:
		m.moveCursor(1)
		return true
	case inputrouter.KeyBackspace:
		v := []rune(m.filterInput.Value())
		if len(v) == 0 {
			return false
		}
		m.filterInput.SetValue(string(v[:len(v)-1]))
		return true
	case inputrouter.KeyEnter:
		if m.selectedItem() != nil {
			m.pendingCmd = m.runActionCmd("run")
		}
		return true
	case inputrouter.KeyEscape:
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			return true
		}
		return false
	}
	return false
}

func (h scriptListHandler) HandleRune(r rune) bool {
	if !unicode.IsGraphic(r) {
		return false
	}
	h.m.filterInput.SetValue(h.m.filterInput.Value() + string(r))
	h.m.histCursor = nil
	return true
}

func (h scriptListHandler) SupportsActions() bool { return h.m.selectedItem() != nil }

func (m *Model) moveCursor(delta int) {
	target := m.cursor + delta
	if coerced, ok := listCoerce(m.rows, target); ok {
		m.cursor = coerced
	}
}

// promptViewHandler drives the active Prompt Session's current view:
// typed characters and Enter/Escape feed RESPONSE/CANCEL back to the
// child.
type promptViewHandler struct{ m *Model }

func (h promptViewHandler) HandleTab(shift bool) bool { return false }

func (h promptViewHandler) HandleListJump(key inputrouter.SpecialKey) bool { return false }

func (h promptViewHandler) HandleArrowUpAtTop() bool { return false }

func (h promptViewHandler) HandleSpecial(key inputrouter.SpecialKey) bool {
	m := h.m
	if m.active == nil {
		return false
	}
	switch key {
	case inputrouter.KeyEnter:
		h.submit()
		return true
	case inputrouter.KeyEscape:
		m.pendingCmd = m.cancelActiveCmd()
		return true
	case inputrouter.KeyBackspace:
		v := []rune(m.formInput.Value())
		if len(v) == 0 {
			return false
		}
		m.formInput.SetValue(string(v[:len(v)-1]))
		return true
	}
	return false
}

func (h promptViewHandler) HandleRune(r rune) bool {
	if !unicode.IsGraphic(r) {
		return false
	}
	h.m.formInput.SetValue(h.m.formInput.Value() + string(r))
	return true
}

func (h promptViewHandler) SupportsActions() bool { return false }

func (h promptViewHandler) submit() {
	m := h.m
	if m.active == nil {
		return
	}
	seq := m.active.LastSeq()
	switch m.view.Kind {
	case prompt.ViewConfirm:
		m.active.Respond(seq, true)
	default:
		m.active.Respond(seq, m.formInput.Value())
	}
	m.formInput.SetValue("")
}

func firstItemRow(rows []listRow) int {
	for i, r := range rows {
		if !r.IsHeader {
			return i
		}
	}
	return 0
}

func lastItemRow(rows []listRow) int {
	for i := len(rows) - 1; i >= 0; i-- {
		if !rows[i].IsHeader {
			return i
		}
	}
	return 0
}
