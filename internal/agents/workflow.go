package agents

import (
	"fmt"
	"sync"
)

// State is a step in the document-selection → agent workflow.
type State string

const (
	StateNoSelection       State = "no_selection"
	StateDocumentsSelected State = "documents_selected"
	StateConfigDrafted     State = "config_drafted"
	StateAgentSaved        State = "agent_saved"
	StateAgentActive       State = "agent_active"
)

// Session tracks one user's progress through the workflow. It is an
// explicit object handed to the HTTP handlers rather than shared
// module state.
type Session struct {
	mu       sync.Mutex
	state    State
	selected []string
	draft    *Draft
	activeID string
}

// NewSession starts a session with nothing selected.
func NewSession() *Session {
	return &Session{state: StateNoSelection}
}

// State returns the current workflow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectedDocuments returns the current document selection.
func (s *Session) SelectedDocuments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// ActiveAgent returns the id of the active agent, or "" when none is.
func (s *Session) ActiveAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SelectDocuments records a non-empty document selection and moves to
// DocumentsSelected. Reselecting restarts the workflow from there.
func (s *Session) SelectDocuments(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: select at least one document", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make([]string, len(ids))
	copy(s.selected, ids)
	s.draft = nil
	s.state = StateDocumentsSelected
	return nil
}

// DraftConfig attaches a validated configuration draft to the current
// selection. A rejected draft leaves the state unchanged.
func (s *Session) DraftConfig(draft Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateNoSelection {
		return fmt.Errorf("%w: no documents selected", ErrValidation)
	}
	if err := draft.validate(); err != nil {
		return err
	}

	s.draft = &draft
	s.state = StateConfigDrafted
	return nil
}

// Draft returns a copy of the pending configuration draft, or nil.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return nil
	}
	d := *s.draft
	d.Docs = append([]DocRef(nil), s.draft.Docs...)
	return &d
}

// MarkSaved records a successful registry save of the drafted config.
func (s *Session) MarkSaved() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConfigDrafted {
		return fmt.Errorf("%w: no drafted configuration to save", ErrValidation)
	}
	s.activeID = ""
	s.draft = nil
	s.state = StateAgentSaved
	return nil
}

// Activate binds a resolved agent to the session. Any previously saved
// agent may be activated from any state, but only if resolution yielded
// at least one usable index.
func (s *Session) Activate(resolved *Resolved) error {
	if resolved == nil {
		return fmt.Errorf("%w: agent not found", ErrValidation)
	}
	if !resolved.Usable() {
		return fmt.Errorf("%w: agent has no usable documents", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = resolved.ID
	s.state = StateAgentActive
	return nil
}
