package agents

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/libroteca/libroteca/internal/library"
)

// EventRecorder receives a notification for agent lifecycle changes.
// The activity log satisfies this; nil disables recording.
type EventRecorder interface {
	Record(action, scope, scopeID, summary string)
}

// RegisterRoutes mounts the agent and workflow-session API routes.
func RegisterRoutes(r chi.Router, reg *Registry, lib *library.Registry, session *Session, opener IndexOpener, events EventRecorder) {
	r.Route("/api/agents", func(r chi.Router) {
		r.Get("/", handleList(reg))
		r.Post("/", handleCreate(reg, lib, session, events))
		r.Delete("/{id}", handleDelete(reg, events))
		r.Post("/{id}/activate", handleActivate(reg, lib, session, opener))
	})
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", handleSession(session))
		r.Post("/select", handleSelect(lib, session))
	})
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	if errors.Is(err, ErrValidation) {
		status = http.StatusBadRequest
	}
	http.Error(w, `{"error":`+strconv.Quote(err.Error())+`}`, status)
}

func handleList(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents := reg.List()
		if agents == nil {
			agents = []Config{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agents)
	}
}

// handleCreate drafts and saves an agent over the session's current
// document selection.
func handleCreate(reg *Registry, lib *library.Registry, session *Session, events EventRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body Draft
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		// The document references come from the session selection, not
		// from the client body.
		var refs []DocRef
		for _, id := range session.SelectedDocuments() {
			if rec := lib.Get(id); rec != nil {
				refs = append(refs, DocRef{Title: rec.Title, ID: rec.ID})
			}
		}
		body.Docs = refs

		if err := session.DraftConfig(body); err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		cfg, err := reg.Save(body)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		if err := session.MarkSaved(); err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		if events != nil {
			events.Record("agent_created", "agent", cfg.ID, cfg.Name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(cfg)
	}
}

func handleDelete(reg *Registry, events EventRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		removed, err := reg.Delete(id)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		if !removed {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if events != nil {
			events.Record("agent_deleted", "agent", id, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleActivate(reg *Registry, lib *library.Registry, session *Session, opener IndexOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		resolved := reg.Resolve(id, lib, opener)
		if resolved == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if !resolved.Usable() {
			http.Error(w, `{"error":"agent has no usable documents"}`, http.StatusConflict)
			return
		}
		if err := session.Activate(resolved); err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"agent":     resolved.Config,
			"documents": len(resolved.Sources),
		})
	}
}

func handleSelect(lib *library.Registry, session *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DocumentIDs []string `json:"document_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		// Unknown ids are dropped; the selection must keep at least one.
		var known []string
		for _, id := range body.DocumentIDs {
			if lib.Get(id) != nil {
				known = append(known, id)
			}
		}
		if err := session.SelectDocuments(known); err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"state":    session.State(),
			"selected": known,
		})
	}
}

func handleSession(session *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected := session.SelectedDocuments()
		if selected == nil {
			selected = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"state":        session.State(),
			"selected":     selected,
			"active_agent": session.ActiveAgent(),
		})
	}
}
