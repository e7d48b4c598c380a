package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/llm"
)

// EventRecorder receives a notification per answered chat message.
// The activity log satisfies this; nil disables recording.
type EventRecorder interface {
	Record(action, scope, scopeID, summary string)
}

// Service resolves agents on demand and runs chat sessions over them.
type Service struct {
	agents      *agents.Registry
	lib         *library.Registry
	opener      agents.IndexOpener
	provider    llm.Provider
	transcripts *TranscriptStore
	events      EventRecorder
}

// NewService wires the chat dependencies together.
func NewService(reg *agents.Registry, lib *library.Registry, opener agents.IndexOpener, provider llm.Provider, transcripts *TranscriptStore, events EventRecorder) *Service {
	return &Service{
		agents:      reg,
		lib:         lib,
		opener:      opener,
		provider:    provider,
		transcripts: transcripts,
		events:      events,
	}
}

// SessionFor resolves the agent and returns a chat session for it, or
// nil when the agent does not exist.
func (s *Service) SessionFor(agentID string) *Session {
	resolved := s.agents.Resolve(agentID, s.lib, s.opener)
	if resolved == nil {
		return nil
	}
	return NewSession(resolved, s.provider, s.transcripts)
}

// RegisterRoutes mounts the chat API routes.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Get("/ws", svc.handleWebSocket)
		r.Get("/{agentID}/messages", svc.handleHistory)
		r.Post("/{agentID}/messages", svc.handleAsk)
	})
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	if s.agents.Get(agentID) == nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	history := s.transcripts.Load(agentID)
	if history == nil {
		history = []Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (s *Service) handleAsk(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		http.Error(w, `{"error":"content is required"}`, http.StatusBadRequest)
		return
	}

	session := s.SessionFor(agentID)
	if session == nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	reply, err := session.Ask(r.Context(), body.Content)
	if err != nil {
		http.Error(w, `{"error":`+strconv.Quote(err.Error())+`}`, http.StatusInternalServerError)
		return
	}
	if s.events != nil {
		s.events.Record("chat_message", "agent", agentID, "")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}
