package ui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nullstrike/launchkit/internal/actions"
	"github.com/nullstrike/launchkit/internal/agentexec"
	"github.com/nullstrike/launchkit/internal/config"
	"github.com/nullstrike/launchkit/internal/focus"
	"github.com/nullstrike/launchkit/internal/frecency"
	"github.com/nullstrike/launchkit/internal/history"
	"github.com/nullstrike/launchkit/internal/inputrouter"
	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/itemstore"
	"github.com/nullstrike/launchkit/internal/list"
	"github.com/nullstrike/launchkit/internal/logging"
	"github.com/nullstrike/launchkit/internal/prompt"
	"github.com/nullstrike/launchkit/internal/protocol"
	"github.com/nullstrike/launchkit/internal/search"
	"github.com/nullstrike/launchkit/internal/shortcuts"
	"github.com/nullstrike/launchkit/internal/watch"
	"github.com/nullstrike/launchkit/internal/winscan"
)

// Version info
const (
	AppName    = "launchkit"
	AppVersion = "0.1.0"
)

// Layout constants
const (
	WindowWidth    = 72
	MaxVisibleRows = 14
)

// viewMsg/doneMsg/refreshMsg/hudMsg carry prompt-session and filesystem
// watcher events into the bubbletea Update loop. A running child
// session drives these from its own goroutine (internal/prompt), so
// they arrive as ordinary tea.Msg values rather than being polled.
type viewMsg struct{ view prompt.View }
type doneMsg struct{ info protocol.ExitInfo }
type hudMsg struct{ payload protocol.HUDPayload }
type logMsg struct{ line string }
type refreshMsg struct{}
type sessionStartedMsg struct{ session *prompt.Session }
type setActionsMsg struct{ specs []protocol.ActionSpec }

// Model is the launcher's top-level bubbletea model. It owns the item
// universe, the ranked/filtered list, the input router, and whichever
// overlay (Actions Dialog or an active prompt Session) currently has
// focus.
type Model struct {
	cfg    *config.Config
	logger *zap.Logger

	store    *itemstore.Store
	frecency *frecency.Store
	hist     *history.Log
	watcher  *watch.Watcher

	focusCoord *focus.Coordinator
	router     *inputrouter.Router
	registry   *shortcuts.Registry

	filterInput textinput.Model
	rows        []list.Row
	results     []search.Result
	cursor      int

	dialog      *actions.Dialog
	dialogToken focus.Token
	pendingActs []actions.Action

	sessions  *prompt.Manager
	active    *prompt.Session
	view      prompt.View
	formInput textinput.Model

	histCursor *history.Cursor
	pendingCmd tea.Cmd

	hud      string
	lastLog  string
	quitting bool
	width    int
	height   int
}

// NewModel wires every component package into a runnable launcher
// model from an already loaded config and logger: the item store,
// frecency, history, the window cache, the filesystem watcher, and the
// Prompt Session manager, before the first Update call.
func NewModel(cfg *config.Config, logger *zap.Logger) (*Model, error) {
	if cfg.Frecency.HalfLife > 0 {
		frecency.HalfLife = cfg.Frecency.HalfLife
	}
	frecencyStore, err := frecency.New(cfg.Frecency.Path,
		frecency.WithDebounce(cfg.Frecency.DebounceDelay))
	if err != nil {
		return nil, fmt.Errorf("open frecency store: %w", err)
	}

	histLog, err := history.New(historyPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}

	// A cache that won't open degrades to a kit-only item set rather
	// than failing startup.
	winCache, err := winscan.Open(cfg.Cache.WindowDB)
	if err != nil {
		logger.Warn("window cache unavailable", zap.Error(err))
		winCache = nil
	}

	store := itemstore.New(cfg.Kits.Roots, winCache)
	if err := store.Refresh(); err != nil {
		logger.Warn("initial item scan failed", zap.Error(err))
	}

	watcher, err := watch.New(cfg.Kits.Roots, cfg.Watch.Debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}

	fc := focus.New(focus.Target{Kind: "script_list"})

	fi := textinput.New()
	fi.Placeholder = "search scripts, apps, windows..."
	fi.Focus()

	fmInput := textinput.New()

	m := &Model{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		frecency:    frecencyStore,
		hist:        histLog,
		watcher:     watcher,
		focusCoord:  fc,
		router:      inputrouter.New(fc),
		filterInput: fi,
		formInput:   fmInput,
		sessions:    prompt.NewManager(cfg.Session.Policy()),
		registry:    shortcuts.NewRegistry(),
		view:        prompt.ScriptListView(),
	}
	m.registerDeclaredShortcuts()
	m.refreshResults()
	return m, nil
}

// registerDeclaredShortcuts rebinds every scanned item's declared
// shortcut. First registration wins; a later duplicate is reported and
// dropped.
func (m *Model) registerDeclaredShortcuts() {
	m.registry.Clear()
	for _, it := range m.store.Items() {
		combo := declaredShortcut(it)
		if combo == "" {
			continue
		}
		if err := m.registry.Register(combo, it.Path); err != nil {
			m.logger.Warn("shortcut registration rejected",
				zap.String("item", it.Name), zap.String("combo", combo), zap.Error(err))
			m.hud = fmt.Sprintf("shortcut %s already taken (%s)", combo, it.Name)
		}
	}
}

func declaredShortcut(it *item.Item) string {
	switch it.Kind {
	case item.KindScript:
		if it.Script != nil {
			return it.Script.Shortcut
		}
	case item.KindScriptlet:
		if it.Scriptlet != nil {
			return it.Scriptlet.Shortcut
		}
	case item.KindBuiltIn:
		if it.BuiltIn != nil {
			return it.BuiltIn.Shortcut
		}
	}
	return ""
}

func historyPath(cfg *config.Config) string {
	return cfg.Frecency.Path + ".history"
}

func (m *Model) Init() tea.Cmd {
	go m.watcher.Run(context.Background())
	return m.awaitRefresh()
}

// awaitRefresh blocks on the watcher's coalesced refresh signal and is
// re-issued from Update after each refreshMsg, so exactly one listener
// is outstanding at a time.
func (m *Model) awaitRefresh() tea.Cmd {
	return func() tea.Msg {
		<-m.watcher.Refresh
		return refreshMsg{}
	}
}

// refreshResults reruns the Search/Rank Engine and Grouping Builder
// against the current filter text and item snapshot.
func (m *Model) refreshResults() {
	if m.store == nil {
		return
	}
	query := m.filterInput.Value()
	items := m.store.Items()
	flat := make([]*item.Item, len(items))
	copy(flat, items)

	m.results = search.Search(query, flat)
	recent := list.RecentPathsForSnapshot(m.frecency, timeNow())
	m.rows = list.Build(query, m.results, list.StyleHeaders, recent)
	if coerced, ok := list.CoerceSelection(m.rows, m.cursor); ok {
		m.cursor = coerced
	} else {
		m.cursor = 0
	}
}

func timeNow() time.Time { return time.Now() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case refreshMsg:
		if err := m.store.Refresh(); err != nil {
			m.logger.Warn("item refresh failed", zap.Error(err))
		}
		m.registerDeclaredShortcuts()
		m.refreshResults()
		return m, m.awaitRefresh()
	case viewMsg:
		m.view = msg.view
		if msg.view.Kind == prompt.ViewScriptList {
			m.active = nil
			m.refreshResults()
		}
		return m, nil
	case hudMsg:
		m.hud = msg.payload.Text
		return m, nil
	case logMsg:
		m.lastLog = msg.line
		return m, nil
	case doneMsg:
		m.active = nil
		m.view = prompt.ScriptListView()
		m.hud = doneHUD(msg.info)
		m.refreshResults()
		return m, nil
	case sessionStartedMsg:
		m.active = msg.session
		return m, nil
	case setActionsMsg:
		m.pendingActs = convertActionSpecs(msg.specs)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// doneHUD renders a short status line for the fallback HUD shown when a
// child exits without setting its own HUD: exit code and summary, if any.
func doneHUD(info protocol.ExitInfo) string {
	if info.ForceKilled {
		return "script force-terminated"
	}
	if info.Summary != "" {
		return info.Summary
	}
	if info.ExitCode != 0 {
		return fmt.Sprintf("script exited %d", info.ExitCode)
	}
	return ""
}

// convertActionSpecs turns a child's SET_ACTIONS payload into the
// Actions Dialog's internal representation.
func convertActionSpecs(specs []protocol.ActionSpec) []actions.Action {
	out := make([]actions.Action, 0, len(specs))
	for _, s := range specs {
		closeOnSubmit := true
		if s.Close != nil {
			closeOnSubmit = *s.Close
		}
		out = append(out, actions.Action{
			ID:            s.ID,
			Title:         s.Title,
			Description:   s.Description,
			Shortcut:      s.Shortcut,
			Icon:          s.Icon,
			Section:       s.Section,
			Category:      actions.CategoryScriptContext,
			HasAction:     true,
			CloseOnSubmit: closeOnSubmit,
		})
	}
	return out
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		if m.frecency != nil {
			_ = m.frecency.Flush()
		}
		if m.hist != nil {
			_ = m.hist.Flush()
		}
		return m, tea.Quit
	}

	ev := translateKey(msg)

	var dialogOwner inputrouter.DialogOwner
	if m.dialog != nil {
		dialogOwner = m.dialog
	}
	viewHandler := m.currentViewHandler()

	outcome := m.router.Dispatch(ev, dialogOwner, viewHandler,
		m.openActionsDialog, m.openAddShortcut)

	if outcome.DialogClosed {
		m.dialog = nil
		m.focusCoord.Pop(m.dialogToken)
		m.dialogToken = ""
	}
	if outcome.HistoryRecall {
		if text, ok := m.historyCursor().Prev(); ok {
			m.filterInput.SetValue(text)
			m.refreshResults()
		}
	}
	if outcome.DialogActionID != "" {
		return m, m.runActionCmd(outcome.DialogActionID)
	}
	if outcome.Consumed {
		m.refreshResults()
		cmd := m.pendingCmd
		m.pendingCmd = nil
		return m, cmd
	}
	return m, nil
}

// historyCursor lazily starts an Arrow-Up recall walk; typing a fresh
// character resets it (see scriptListHandler.HandleRune) so the next
// recall starts from the newest entry again.
func (m *Model) historyCursor() *history.Cursor {
	if m.histCursor == nil && m.hist != nil {
		m.histCursor = m.hist.NewCursor()
	}
	if m.histCursor == nil {
		return &history.Cursor{}
	}
	return m.histCursor
}

func (m *Model) dialogHost() string {
	if m.active != nil {
		return "prompt_session"
	}
	return "script_list"
}

func (m *Model) openActionsDialog() {
	host := m.dialogHost()
	acts := m.actionsForSelection()
	if len(acts) == 0 {
		return
	}
	dlg, ok := actions.Open(host, acts)
	if !ok {
		return
	}
	m.dialog = dlg
	m.dialogToken = m.focusCoord.Push(focus.ActionsDialog(host))
}

func (m *Model) openAddShortcut() {
	// Reserved for a future shortcut-binding dialog; no-op until that
	// overlay exists.
}

// actionsForSelection returns the Action set for whichever surface is
// current: the running script's own SET_ACTIONS set while a Prompt
// Session is active, otherwise the built-in Run/Pin actions for the
// selected ScriptList item.
func (m *Model) actionsForSelection() []actions.Action {
	if m.active != nil {
		return m.pendingActs
	}
	it := m.selectedItem()
	if it == nil {
		return nil
	}
	pinLabel := "Pin to Recent"
	if it.Kind == item.KindScript || it.Kind == item.KindScriptlet {
		return []actions.Action{
			{ID: "run", Title: "Run", Category: actions.CategoryGeneral, HasAction: true, CloseOnSubmit: true},
			{ID: "pin", Title: pinLabel, Category: actions.CategoryGeneral, HasAction: true, CloseOnSubmit: true},
		}
	}
	return []actions.Action{
		{ID: "run", Title: "Open", Category: actions.CategoryGeneral, HasAction: true, CloseOnSubmit: true},
	}
}

func (m *Model) selectedItem() *item.Item {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	row := m.rows[m.cursor]
	if row.IsHeader || row.Index >= len(m.results) {
		return nil
	}
	return m.results[row.Index].Item
}

// runActionCmd executes a submitted Action: script-driven actions
// (selected while a Prompt Session owns the dialog) answer the child's
// current prompt with the action id as its RESPONSE value; ScriptList built-ins act on the selected item directly.
func (m *Model) runActionCmd(actionID string) tea.Cmd {
	if m.active != nil {
		m.active.Respond(m.active.LastSeq(), actionID)
		return nil
	}
	it := m.selectedItem()
	if it == nil {
		return nil
	}
	switch actionID {
	case "pin":
		m.frecency.SetPinned(it.Path, true)
		return nil
	case "run":
		return m.launchCmd(it)
	}
	return nil
}

// launchCmd runs the selected item when it is a Script; for any other
// kind it does nothing and returns nil. Agent sub-kind scripts
// go through the Agent Executor's validated external-command path
// instead of the Script Protocol, since the launcher never speaks the
// stdio protocol to an agent directly. Every other script becomes a
// Prompt Session.
func (m *Model) launchCmd(it *item.Item) tea.Cmd {
	if it.Kind != item.KindScript || it.Script == nil {
		return nil
	}
	m.frecency.RecordAccess(it.Path, timeNow())
	m.hist.Append(it.Name)

	if it.IsAgent() {
		return m.runAgentCmd(it)
	}
	return m.runScriptCmd(it)
}

// runScriptCmd launches it.Script.Path as a Prompt Session child and
// wires its lifecycle hooks to bubbletea messages so the Update loop
// (running on the single UI goroutine) is the only place session state
// is ever mutated.
func (m *Model) runScriptCmd(it *item.Item) tea.Cmd {
	logFn := logging.ChildLogFunc(m.logger, it.Script.Path)
	hooks := prompt.Hooks{
		OnView:    func(v prompt.View) { programSendMsg(viewMsg{view: v}) },
		OnActions: func(specs []protocol.ActionSpec) { programSendMsg(setActionsMsg{specs: specs}) },
		OnHUD:     func(p protocol.HUDPayload) { programSendMsg(hudMsg{payload: p}) },
		OnLog:     func(p protocol.LogPayload) { programSendMsg(logMsg{line: p.Text}) },
		OnDone:    func(info protocol.ExitInfo) { programSendMsg(doneMsg{info: info}) },
	}

	return func() tea.Msg {
		s, err := m.sessions.Launch(context.Background(), it.Script.Path, nil, logFn, hooks, m.cfg.Session.CancelGrace)
		if err != nil {
			m.logger.Warn("launch refused", zap.Error(err))
			return hudMsg{payload: protocol.HUDPayload{Level: "warn", Text: err.Error()}}
		}
		return sessionStartedMsg{session: s}
	}
}

// cancelActiveCmd tears down the active session off the UI goroutine:
// CANCEL is sent immediately, and if the child doesn't exit within the
// configured grace its process group is killed. The resulting doneMsg
// transitions the view back to ScriptList.
func (m *Model) cancelActiveCmd() tea.Cmd {
	s := m.active
	if s == nil {
		return nil
	}
	grace := m.cfg.Session.CancelGrace
	return func() tea.Msg {
		info := s.Cancel(bgCtx(), grace)
		return doneMsg{info: info}
	}
}

// runAgentCmd validates and spawns an external agent run via
// internal/agentexec, reporting its outcome as a HUD rather than
// driving a Prompt Session.
func (m *Model) runAgentCmd(it *item.Item) tea.Cmd {
	kitRoot := m.cfg.AgentRunner.KitRoot
	binary := m.cfg.AgentRunner.Binary

	canonical, err := agentexec.Validate(kitRoot, it.Script.Path)
	if err != nil {
		m.logger.Warn("agent path rejected", zap.Error(err))
		return func() tea.Msg {
			return hudMsg{payload: protocol.HUDPayload{Level: "error", Text: err.Error()}}
		}
	}

	cmdSpec, dropped, err := agentexec.Build(binary, canonical, agentexec.ModeUICapture, nil, nil, os.Environ(), it.Script.Frontmatter)
	if err != nil {
		m.logger.Warn("agent command build failed", zap.Error(err))
		return func() tea.Msg {
			return hudMsg{payload: protocol.HUDPayload{Level: "error", Text: err.Error()}}
		}
	}
	for _, d := range dropped {
		m.logger.Warn("agent env override dropped", zap.String("key", d))
	}

	return func() tea.Msg {
		cmd := exec.Command(cmdSpec.Runner, cmdSpec.Args...)
		cmd.Env = cmdSpec.Env
		out, err := cmd.CombinedOutput()
		if err != nil {
			return hudMsg{payload: protocol.HUDPayload{Level: "error", Text: fmt.Sprintf("agent run failed: %v", err)}}
		}
		return hudMsg{payload: protocol.HUDPayload{Level: "info", Text: strings.TrimSpace(string(out))}}
	}
}

// programSendMsg is overwritten by main() with the running
// tea.Program's Send method so goroutine-driven prompt hooks can
// deliver tea.Msg values into the Update loop.
var programSendMsg = func(tea.Msg) {}

// BindProgram wires p.Send as the delivery path for prompt-session
// lifecycle hooks, which run on their own goroutine and
// must never mutate Model state directly.
func (m *Model) BindProgram(p *tea.Program) {
	programSendMsg = p.Send
}

func translateKey(msg tea.KeyMsg) inputrouter.Event {
	ev := inputrouter.Event{}
	switch msg.Type {
	case tea.KeyEnter:
		ev.Special = inputrouter.KeyEnter
	case tea.KeyEsc:
		ev.Special = inputrouter.KeyEscape
	case tea.KeyBackspace:
		ev.Special = inputrouter.KeyBackspace
	case tea.KeyTab:
		ev.Special = inputrouter.KeyTab
	case tea.KeyShiftTab:
		ev.Special = inputrouter.KeyShiftTab
	case tea.KeyUp:
		ev.Special = inputrouter.KeyUp
	case tea.KeyDown:
		ev.Special = inputrouter.KeyDown
	case tea.KeyHome:
		ev.Special = inputrouter.KeyHome
	case tea.KeyEnd:
		ev.Special = inputrouter.KeyEnd
	case tea.KeyPgUp:
		ev.Special = inputrouter.KeyPageUp
	case tea.KeyPgDown:
		ev.Special = inputrouter.KeyPageDown
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			ev.Rune = msg.Runes[0]
			ev.HasRune = true
		}
	case tea.KeyCtrlK:
		// Terminals rarely forward a distinct Cmd modifier, so Cmd+K
		// is bound to Ctrl+K here instead.
		ev.Cmd = true
		ev.Rune = 'k'
		ev.HasRune = true
	}
	if msg.Alt {
		ev.Alt = true
	}
	return ev
}
