// Package chat answers user questions through a resolved agent:
// retrieval over the agent's document indexes, delegation to the LLM
// provider, and a durable per-agent transcript.
package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Message is one transcript entry.
type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// TranscriptStore persists one JSON array of messages per agent under
// chat_history/. Appends rewrite the whole file; a mutex serializes
// concurrent appends to the same directory.
type TranscriptStore struct {
	mu  sync.Mutex
	dir string
}

// NewTranscriptStore creates the store rooted at dir.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating transcript directory: %w", err)
	}
	return &TranscriptStore{dir: dir}, nil
}

func (s *TranscriptStore) path(agentID string) string {
	return filepath.Join(s.dir, agentID+".json")
}

// Load returns the transcript for an agent in chronological order. A
// missing file is an empty transcript; a corrupt one is reset (logged).
func (s *TranscriptStore) Load(agentID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(agentID)
}

func (s *TranscriptStore) load(agentID string) []Message {
	data, err := os.ReadFile(s.path(agentID))
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Printf("chat: transcript for %s is corrupt (%v), starting empty", agentID, err)
		return nil
	}
	return messages
}

// Append adds messages to the agent's transcript and rewrites the file.
func (s *TranscriptStore) Append(agentID string, messages ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.load(agentID), messages...)
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling transcript: %w", err)
	}
	if err := os.WriteFile(s.path(agentID), data, 0o644); err != nil {
		return fmt.Errorf("writing transcript for %s: %w", agentID, err)
	}
	return nil
}

// now formats the current time the way transcripts store it.
func now() string {
	return time.Now().Format(time.RFC3339)
}
