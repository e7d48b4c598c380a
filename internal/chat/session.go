package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/llm"
	"github.com/libroteca/libroteca/internal/vectordb"
)

// defaultContextWindow is the retrieved-chunks-per-index fallback when
// an agent config carries no value.
const defaultContextWindow = 4

// Session answers questions for one resolved agent, persisting every
// exchange to the transcript store.
type Session struct {
	agent       *agents.Resolved
	provider    llm.Provider
	transcripts *TranscriptStore
}

// NewSession binds a resolved agent to an LLM provider and transcript store.
func NewSession(agent *agents.Resolved, provider llm.Provider, transcripts *TranscriptStore) *Session {
	return &Session{agent: agent, provider: provider, transcripts: transcripts}
}

// History returns the persisted transcript for this session's agent.
func (s *Session) History() []Message {
	return s.transcripts.Load(s.agent.ID)
}

// Ask retrieves context for the question from every document index,
// asks the provider for an answer in the agent's persona, and appends
// both sides of the exchange to the transcript.
func (s *Session) Ask(ctx context.Context, question string) (*Message, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if !s.agent.Usable() {
		return nil, fmt.Errorf("agent %s has no usable documents", s.agent.ID)
	}

	chunks := s.retrieve(ctx, question)

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: s.personaPrompt(chunks)},
			{Role: llm.RoleUser, Content: question},
		},
		MaxTokens:   s.agent.MaxTokens,
		Temperature: s.agent.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("completing chat: %w", err)
	}

	userMsg := Message{Role: "user", Content: question, Timestamp: now()}
	assistantMsg := Message{Role: "assistant", Content: resp.Content, Timestamp: now()}
	if err := s.transcripts.Append(s.agent.ID, userMsg, assistantMsg); err != nil {
		return nil, err
	}

	return &assistantMsg, nil
}

// retrieve asks each index for its top contextWindow chunks and
// deduplicates results by exact content across indexes.
func (s *Session) retrieve(ctx context.Context, query string) []vectordb.Retrieved {
	window := s.agent.ContextWindow
	if window <= 0 {
		window = defaultContextWindow
	}

	seen := map[string]bool{}
	var merged []vectordb.Retrieved
	for _, src := range s.agent.Sources {
		results, err := src.Index.Retrieve(ctx, query, window)
		if err != nil {
			log.Printf("chat: retrieving from %q: %v", src.Record.Title, err)
			continue
		}
		for _, r := range results {
			if seen[r.Content] {
				continue
			}
			seen[r.Content] = true
			merged = append(merged, r)
		}
	}
	return merged
}

// personaPrompt builds the system prompt from the agent's persona
// parameters and the retrieved context.
func (s *Session) personaPrompt(chunks []vectordb.Retrieved) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.", s.agent.Name)
	if s.agent.Role != "" {
		fmt.Fprintf(&b, " Your role: %s.", s.agent.Role)
	}
	if s.agent.Style != "" {
		fmt.Fprintf(&b, " Answer in a %s style.", s.agent.Style)
	}
	if s.agent.DetailLevel != "" {
		fmt.Fprintf(&b, " Detail level: %s.", s.agent.DetailLevel)
	}

	b.WriteString("\n\nAnswer using only the document excerpts below. If they do not contain the answer, say so.\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", c.Metadata.Title, c.Content)
	}
	return b.String()
}
