package prompt

import (
	"context"
	"sync"
	"time"

	"github.com/nullstrike/launchkit/internal/launcherr"
	"github.com/nullstrike/launchkit/internal/protocol"
)

// Policy decides what happens when a new script is launched while a
// session is already active.
type Policy int

const (
	PolicyRefuse Policy = iota
	PolicyCancelOld
)

// Hooks lets a caller (the UI layer) observe a Session's lifecycle
// without the prompt package importing any rendering code.
type Hooks struct {
	OnView        func(View)
	OnActions     func([]protocol.ActionSpec)
	OnHUD         func(protocol.HUDPayload)
	OnLog         func(protocol.LogPayload)
	OnStreamChunk func(protocol.StreamChunkPayload)
	OnDone        func(protocol.ExitInfo)
}

// Session is one running child script plus its current prompt View.
type Session struct {
	underlying *protocol.Session

	mu      sync.RWMutex
	view    View
	lastSeq uint64
}

// View returns the session's current prompt view.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// LastSeq returns the seq of the most recent SET_PROMPT, the value a
// caller should pass to Respond when answering the current view.
func (s *Session) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeq
}

// Respond sends RESPONSE(value) answering the prompt currently awaiting
// input.
func (s *Session) Respond(seqRef uint64, value any) error {
	return s.underlying.RespondTo(seqRef, value)
}

// Cancel sends CANCEL and waits up to grace before killing the child's
// process group.
func (s *Session) Cancel(ctx context.Context, grace time.Duration) protocol.ExitInfo {
	return s.underlying.Cancel(ctx, grace)
}

// run drains the underlying session's message stream, updating the
// session's View and firing hooks, until the child exits.
func (s *Session) run(hooks Hooks) {
	for msg := range s.underlying.Messages {
		switch msg.Type {
		case protocol.TypeSetPrompt:
			view, err := DecodeView(*msg.SetPrompt)
			if err != nil {
				if hooks.OnLog != nil {
					hooks.OnLog(protocol.LogPayload{Level: "error", Text: err.Error()})
				}
				continue
			}
			s.mu.Lock()
			s.view = view
			s.lastSeq = msg.Seq
			s.mu.Unlock()
			if hooks.OnView != nil {
				hooks.OnView(view)
			}
		case protocol.TypeSetActions:
			if hooks.OnActions != nil {
				hooks.OnActions(msg.SetActions)
			}
		case protocol.TypeHUD:
			if hooks.OnHUD != nil {
				hooks.OnHUD(*msg.HUD)
			}
		case protocol.TypeLog:
			if hooks.OnLog != nil {
				hooks.OnLog(*msg.Log)
			}
		case protocol.TypeStreamChunk:
			if hooks.OnStreamChunk != nil {
				hooks.OnStreamChunk(*msg.StreamChunk)
			}
		case protocol.TypeDone:
			s.mu.Lock()
			s.view = ScriptListView()
			s.mu.Unlock()
			if hooks.OnView != nil {
				hooks.OnView(ScriptListView())
			}
		}
	}
}

// Manager enforces the at-most-one-active-session rule across however
// many scripts get launched over the launcher's lifetime.
type Manager struct {
	policy Policy

	mu     sync.Mutex
	active *Session
}

// NewManager builds a Manager with the given at-most-one policy.
func NewManager(policy Policy) *Manager {
	return &Manager{policy: policy}
}

// Active returns the currently running session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Launch spawns scriptPath as a new child and installs it as the active
// session, honoring the at-most-one policy: PolicyRefuse rejects the
// request outright while a session is active; PolicyCancelOld cancels
// the running session first and waits for it to fully exit.
func (m *Manager) Launch(ctx context.Context, scriptPath string, args []string, log protocol.LogFunc, hooks Hooks, cancelGrace time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if m.policy == PolicyRefuse {
			return nil, launcherr.Resource("session_already_active", nil)
		}
		m.active.Cancel(ctx, cancelGrace)
		m.active = nil
	}

	underlying, err := protocol.Spawn(scriptPath, args, log)
	if err != nil {
		return nil, launcherr.Transport("spawn_failed", err)
	}

	s := &Session{underlying: underlying, view: ScriptListView()}
	m.active = s

	go func() {
		s.run(hooks)
		exitInfo := s.underlying.Wait()
		m.mu.Lock()
		if m.active == s {
			m.active = nil
		}
		m.mu.Unlock()
		if hooks.OnDone != nil {
			hooks.OnDone(exitInfo)
		}
	}()

	return s, nil
}
