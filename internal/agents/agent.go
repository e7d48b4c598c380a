// Package agents stores saved chat-assistant configurations and the
// document-selection workflow that produces them. An agent binds a
// persona to a subset of library documents; at load time the stored
// document references are resolved back into live index handles.
package agents

import (
	"errors"
	"fmt"
)

// ErrValidation marks rejected agent input (empty name, no documents).
var ErrValidation = errors.New("invalid agent configuration")

// DocRef is a stored back-reference to a library document. Title is
// denormalized for display; the hash is authoritative.
type DocRef struct {
	Title string `json:"title"`
	ID    string `json:"hash"`
}

// Config is a persisted agent: persona parameters plus document
// references. Live index handles are never persisted.
type Config struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Style         string   `json:"style"`
	DetailLevel   string   `json:"detail_level"`
	Temperature   float64  `json:"temperature"`
	MaxTokens     int      `json:"max_tokens"`
	ContextWindow int      `json:"context_window"`
	Docs          []DocRef `json:"docs"`
	CreatedAt     string   `json:"created_at"`
}

// Draft is the user-supplied agent configuration before saving.
type Draft struct {
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Style         string   `json:"style"`
	DetailLevel   string   `json:"detail_level"`
	Temperature   float64  `json:"temperature"`
	MaxTokens     int      `json:"max_tokens"`
	ContextWindow int      `json:"context_window"`
	Docs          []DocRef `json:"docs"`
}

// validate applies the save guards shared by the registry and the
// workflow: a name and at least one document reference.
func (d Draft) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(d.Docs) == 0 {
		return fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	return nil
}
